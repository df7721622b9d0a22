// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package identity

// Account bundles the three related identity artifacts.
type Account struct {
	Mnemonic   Mnemonic   `json:"mnemonic"`
	PrivateKey PrivateKey `json:"private_key"`
	Address    Address    `json:"address"`
}

// NewAccount generates a fresh phrase and derives the account at
// DefaultPath from it.
func NewAccount() (Account, error) {
	return NewAccountWith(DefaultDeriver)
}

func NewAccountWith(d Deriver) (Account, error) {
	m := GenerateMnemonic()
	return d.Account(m)
}

// Account derives key and address for m.
func (d Deriver) Account(m Mnemonic) (Account, error) {
	key, err := d.Derive(m)
	if err != nil {
		return Account{}, err
	}
	addr, err := key.Address()
	if err != nil {
		return Account{}, err
	}
	return Account{
		Mnemonic:   m,
		PrivateKey: key,
		Address:    addr,
	}, nil
}
