// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"blockwatch.cc/easkit/identity"
	"blockwatch.cc/easkit/rpc"
)

func init() {
	register(AccountRequest{})
}

var _ RESTful = (*AccountRequest)(nil)

type AccountRequest struct{}

func (t AccountRequest) RESTPrefix() string {
	return "/accounts"
}

func (t AccountRequest) RegisterDirectRoutes(r *mux.Router) error {
	return nil
}

func (t AccountRequest) RegisterRoutes(r *mux.Router) error {
	r.HandleFunc("/{address}/balance", C(GetBalance)).Methods("GET")
	return nil
}

type BalanceRequest struct {
	Block string `schema:"block"` // latest, pending, earliest or a height
}

func (a BalanceRequest) Tag() rpc.BlockTag {
	switch a.Block {
	case "", string(rpc.Latest), string(rpc.Pending), string(rpc.Earliest):
		return rpc.BlockTag(a.Block)
	}
	height, err := strconv.ParseUint(a.Block, 10, 64)
	if err != nil {
		panic(EBadRequest(EC_PARAM_INVALID, fmt.Sprintf("invalid block %q", a.Block), err))
	}
	return rpc.BlockAt(height)
}

type BalanceResponse struct {
	Address identity.Address `json:"address"`
	Block   string           `json:"block"`
	Wei     string           `json:"wei"`
	Ether   string           `json:"ether"`
}

func GetBalance(ctx *Context) (interface{}, int) {
	args := &BalanceRequest{}
	ctx.ParseRequestArgs(args)
	addr, err := identity.ParseAddress(mux.Vars(ctx.Request)["address"])
	if err != nil {
		panic(EBadRequest(EC_PARAM_INVALID, err.Error(), err))
	}
	if ctx.Client == nil {
		panic(EServiceUnavailable(EC_UNAVAILABLE, "ledger node not configured", nil))
	}
	tag := args.Tag()
	wei, err := ctx.Client.GetBalance(ctx, addr.Common(), tag)
	if err != nil {
		panic(EBadGateway(EC_RPC, "balance query failed", err))
	}
	if tag == "" {
		tag = rpc.Latest
	}
	return &BalanceResponse{
		Address: addr,
		Block:   string(tag),
		Wei:     wei.String(),
		Ether:   rpc.FormatEther(wei),
	}, http.StatusOK
}
