// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package schema

import (
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// UID computes the registry identifier of a schema as
// keccak256(schema || resolver || revocable) over the packed encoding,
// i.e. raw UTF-8 schema bytes, 20 address bytes and a single bool byte.
func UID(schema string, resolver common.Address, revocable bool) common.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(schema))
	h.Write(resolver.Bytes())
	if revocable {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	return common.BytesToHash(h.Sum(nil))
}

// UID returns the registry identifier of d's raw schema string.
func (d *Descriptor) UID(resolver common.Address, revocable bool) common.Hash {
	return UID(d.raw, resolver, revocable)
}
