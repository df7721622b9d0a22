// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package rpc

import (
	"math/big"
	"strings"
)

const EtherDecimals = 18

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(EtherDecimals), nil)

// FormatEther renders a wei amount as a decimal ether string with at least
// one fractional digit and no trailing zeros, e.g. "1.0" or "0.5".
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0.0"
	}
	var sign string
	v := new(big.Int).Set(wei)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	whole, frac := new(big.Int).QuoRem(v, weiPerEther, new(big.Int))
	fs := frac.String()
	fs = strings.Repeat("0", EtherDecimals-len(fs)) + fs
	fs = strings.TrimRight(fs, "0")
	if fs == "" {
		fs = "0"
	}
	return sign + whole.String() + "." + fs
}
