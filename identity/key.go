// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package identity

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const PrivateKeyLength = 32

// PrivateKey is a secp256k1 scalar in big-endian byte order.
type PrivateKey [PrivateKeyLength]byte

// Deriver turns mnemonics into private keys along a fixed path.
type Deriver struct {
	Path       string
	Passphrase string
}

// DefaultDeriver derives the account at DefaultPath without passphrase.
var DefaultDeriver = Deriver{Path: DefaultPath}

// DeriveKeyFromMnemonic returns the private key at DefaultPath. The same
// phrase always yields the same key.
func DeriveKeyFromMnemonic(m Mnemonic) (PrivateKey, error) {
	return DefaultDeriver.Derive(m)
}

func (d Deriver) Derive(m Mnemonic) (PrivateKey, error) {
	if len(m) != MnemonicWords {
		log.Debugf("derive: mnemonic has %d words", len(m))
		return PrivateKey{}, fmt.Errorf("%w: have %d words", ErrInvalidMnemonicLength, len(m))
	}
	path := d.Path
	if path == "" {
		path = DefaultPath
	}
	p, err := ParsePath(path)
	if err != nil {
		return PrivateKey{}, err
	}
	seed, err := m.Seed(d.Passphrase)
	if err != nil {
		log.Debugf("derive: %v", err)
		return PrivateKey{}, err
	}
	key, err := p.DeriveKey(seed)
	if err != nil {
		log.Debugf("derive %s: %v", p, err)
		return PrivateKey{}, err
	}
	return key, nil
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// ParsePrivateKey decodes a hex scalar with or without 0x prefix.
func ParsePrivateKey(s string) (PrivateKey, error) {
	if !has0xPrefix(s) {
		s = "0x" + s
	}
	buf, err := hexutil.Decode(s)
	if err != nil {
		return PrivateKey{}, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	if len(buf) != PrivateKeyLength {
		return PrivateKey{}, fmt.Errorf("%w: have %d bytes, want %d", ErrInvalidPrivateKey, len(buf), PrivateKeyLength)
	}
	var k PrivateKey
	copy(k[:], buf)
	if !k.IsValid() {
		return PrivateKey{}, fmt.Errorf("%w: scalar out of range", ErrInvalidPrivateKey)
	}
	return k, nil
}

// IsValid reports whether k is in [1, N-1] for the curve order N.
func (k PrivateKey) IsValid() bool {
	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(k[:]); overflow {
		return false
	}
	return !s.IsZero()
}

// PublicKey returns the 65 byte uncompressed curve point for k.
func (k PrivateKey) PublicKey() ([]byte, error) {
	if !k.IsValid() {
		return nil, ErrInvalidPrivateKey
	}
	priv := secp256k1.PrivKeyFromBytes(k[:])
	defer priv.Zero()
	return priv.PubKey().SerializeUncompressed(), nil
}

func (k PrivateKey) Address() (Address, error) {
	pub, err := k.PublicKey()
	if err != nil {
		return Address{}, err
	}
	return AddressFromPublicKey(pub)
}

func (k PrivateKey) Bytes() []byte {
	buf := make([]byte, PrivateKeyLength)
	copy(buf, k[:])
	return buf
}

func (k PrivateKey) String() string {
	return "0x" + hex.EncodeToString(k[:])
}

func (k PrivateKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PrivateKey) UnmarshalText(data []byte) error {
	key, err := ParsePrivateKey(string(data))
	if err != nil {
		return err
	}
	*k = key
	return nil
}
