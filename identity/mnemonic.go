// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package identity

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

const (
	// MnemonicWords is the only supported phrase length (128 bit entropy).
	MnemonicWords = 12

	mnemonicEntropyBits = 128
)

// Mnemonic is an ordered list of BIP-39 english words.
type Mnemonic []string

// GenerateMnemonic returns a fresh 12 word phrase carrying 128 bits of
// entropy from the operating system's secure random source.
func GenerateMnemonic() Mnemonic {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		// crypto/rand only fails when the platform is broken
		panic(fmt.Errorf("identity: reading entropy: %v", err))
	}
	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		panic(fmt.Errorf("identity: encoding entropy: %v", err))
	}
	return Mnemonic(strings.Split(phrase, " "))
}

// ParseMnemonic checks that v is a sequence of exactly MnemonicWords
// strings and returns it as Mnemonic. It does not check the wordlist or
// checksum, see Mnemonic.Validate for that.
func ParseMnemonic(v any) (Mnemonic, error) {
	var m Mnemonic
	switch val := v.(type) {
	case Mnemonic:
		m = make(Mnemonic, len(val))
		copy(m, val)
	case []string:
		m = make(Mnemonic, len(val))
		copy(m, val)
	case []any:
		m = make(Mnemonic, len(val))
		for i, w := range val {
			s, ok := w.(string)
			if !ok {
				log.Debugf("mnemonic word %d has type %T", i, w)
				return nil, ErrInvalidMnemonicShape
			}
			m[i] = s
		}
	default:
		log.Debugf("mnemonic input has type %T", v)
		return nil, ErrInvalidMnemonicShape
	}
	if len(m) != MnemonicWords {
		log.Debugf("mnemonic has %d words", len(m))
		return nil, fmt.Errorf("%w: have %d words", ErrInvalidMnemonicLength, len(m))
	}
	return m, nil
}

// ParseMnemonicString splits a space separated phrase into words.
func ParseMnemonicString(s string) (Mnemonic, error) {
	return ParseMnemonic(strings.Fields(s))
}

func (m Mnemonic) IsValid() bool {
	return m.Validate() == nil
}

// Validate checks length, wordlist membership and the BIP-39 checksum.
func (m Mnemonic) Validate() error {
	if len(m) != MnemonicWords {
		return fmt.Errorf("%w: have %d words", ErrInvalidMnemonicLength, len(m))
	}
	for i, w := range m {
		if _, ok := bip39.GetWordIndex(w); !ok {
			return fmt.Errorf("%w: word %d not in wordlist", ErrInvalidMnemonicChecksum, i+1)
		}
	}
	if _, err := bip39.EntropyFromMnemonic(m.String()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMnemonicChecksum, err)
	}
	return nil
}

// Seed returns the 64 byte BIP-39 seed for the phrase and passphrase.
// The phrase must be valid.
func (m Mnemonic) Seed(passphrase string) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return bip39.NewSeed(m.String(), passphrase), nil
}

func (m Mnemonic) String() string {
	return strings.Join(m, " ")
}

func (m *Mnemonic) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	mm, err := ParseMnemonic(v)
	if err != nil {
		return err
	}
	*m = mm
	return nil
}
