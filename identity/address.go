// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package identity

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

const AddressLength = common.AddressLength

// Address is a 20 byte account address. It prints in EIP-55 mixed case.
type Address common.Address

// DeriveAddressFromKey parses a hex private key (0x prefix optional) and
// returns its address.
func DeriveAddressFromKey(s string) (Address, error) {
	k, err := ParsePrivateKey(s)
	if err != nil {
		log.Debugf("address: %v", err)
		return Address{}, err
	}
	return k.Address()
}

// AddressFromPublicKey hashes a 65 byte uncompressed secp256k1 point.
func AddressFromPublicKey(pub []byte) (Address, error) {
	if len(pub) != 65 || pub[0] != 4 {
		return Address{}, fmt.Errorf("identity: malformed public key (%d bytes)", len(pub))
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(pub[1:])
	return Address(common.BytesToAddress(h.Sum(nil)[12:])), nil
}

// ParseAddress decodes a hex address with or without 0x prefix. Mixed case
// input must carry a valid EIP-55 checksum.
func ParseAddress(s string) (Address, error) {
	if !common.IsHexAddress(s) {
		return Address{}, fmt.Errorf("%w %q", ErrInvalidAddress, s)
	}
	a := Address(common.HexToAddress(s))
	raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if raw != strings.ToLower(raw) && raw != strings.ToUpper(raw) {
		if want := a.String()[2:]; raw != want {
			return Address{}, fmt.Errorf("%w %q: checksum mismatch", ErrInvalidAddress, s)
		}
	}
	return a, nil
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) Equal(b Address) bool {
	return bytes.Equal(a[:], b[:])
}

func (a Address) Common() common.Address {
	return common.Address(a)
}

func (a Address) Bytes() []byte {
	return common.Address(a).Bytes()
}

func (a Address) String() string {
	return common.Address(a).Hex()
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(data []byte) error {
	addr, err := ParseAddress(string(data))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
