// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package identity

import (
	"errors"
)

var (
	// ErrInvalidMnemonicShape describes an error where derivation input
	// is not a sequence of words.
	ErrInvalidMnemonicShape = errors.New("mnemonic must be a list of words")

	// ErrInvalidMnemonicLength describes an error where a word list does
	// not contain exactly MnemonicWords words.
	ErrInvalidMnemonicLength = errors.New("mnemonic must be a 12-word phrase")

	// ErrInvalidMnemonicChecksum describes an error where a well-formed
	// word list contains unknown words or fails the BIP-39 checksum.
	ErrInvalidMnemonicChecksum = errors.New("invalid mnemonic checksum")

	// ErrInvalidPrivateKey describes an error where a private key is not
	// a well-formed 32 byte secp256k1 scalar.
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrInvalidAddress describes an error where an address string is not
	// 20 bytes of hex or fails its EIP-55 checksum.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidPath describes an error where a hierarchical derivation
	// path cannot be parsed.
	ErrInvalidPath = errors.New("invalid derivation path")
)
