// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package identity

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/accounts"
)

// DefaultPath selects the first external account of the Ethereum coin type.
const DefaultPath = "m/44'/60'/0'/0/0"

// AccountPath returns the Ethereum BIP-44 path for account index i.
func AccountPath(i uint32) string {
	return fmt.Sprintf("m/44'/60'/0'/0/%d", i)
}

// Path is a parsed hierarchical derivation path.
type Path []uint32

func ParsePath(s string) (Path, error) {
	p, err := accounts.ParseDerivationPath(s)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPath, s, err)
	}
	return Path(p), nil
}

func (p Path) String() string {
	return accounts.DerivationPath(p).String()
}

// DeriveKey walks the path from the BIP-32 master key of seed and returns
// the private key at its end.
func (p Path) DeriveKey(seed []byte) (PrivateKey, error) {
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return PrivateKey{}, fmt.Errorf("identity: master key: %w", err)
	}
	for _, idx := range p {
		child, err := key.Derive(idx)
		key.Zero()
		if err != nil {
			return PrivateKey{}, fmt.Errorf("identity: deriving child %d: %w", idx, err)
		}
		key = child
	}
	defer key.Zero()
	ec, err := key.ECPrivKey()
	if err != nil {
		return PrivateKey{}, fmt.Errorf("identity: %w", err)
	}
	var pk PrivateKey
	copy(pk[:], ec.Serialize())
	ec.Zero()
	return pk, nil
}
