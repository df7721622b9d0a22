// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package rpc

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// BlockTag selects the state a query runs against.
type BlockTag string

const (
	Latest   BlockTag = "latest"
	Pending  BlockTag = "pending"
	Earliest BlockTag = "earliest"
)

// BlockAt returns the tag for a block height.
func BlockAt(height uint64) BlockTag {
	return BlockTag(hexutil.EncodeUint64(height))
}

func (c *Client) ChainId(ctx context.Context) (*big.Int, error) {
	var id hexutil.Big
	if err := c.Call(ctx, "eth_chainId", &id); err != nil {
		return nil, err
	}
	return id.ToInt(), nil
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var n hexutil.Uint64
	if err := c.Call(ctx, "eth_blockNumber", &n); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// GetBalance returns the balance of addr in wei. An empty tag means Latest.
func (c *Client) GetBalance(ctx context.Context, addr common.Address, block BlockTag) (*big.Int, error) {
	if block == "" {
		block = Latest
	}
	var bal hexutil.Big
	if err := c.Call(ctx, "eth_getBalance", &bal, addr, block); err != nil {
		return nil, err
	}
	log.Debugf("rpc: balance %s at %s = %s", addr, block, bal.ToInt())
	return bal.ToInt(), nil
}
