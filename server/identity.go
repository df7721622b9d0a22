// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"blockwatch.cc/easkit/identity"
)

func init() {
	register(IdentityRequest{})
}

var _ RESTful = (*IdentityRequest)(nil)

type IdentityRequest struct{}

func (t IdentityRequest) RESTPrefix() string {
	return "/identity"
}

func (t IdentityRequest) RegisterDirectRoutes(r *mux.Router) error {
	return nil
}

func (t IdentityRequest) RegisterRoutes(r *mux.Router) error {
	r.HandleFunc("/mnemonic", C(NewMnemonic)).Methods("POST")
	r.HandleFunc("/key", C(DeriveKey)).Methods("POST")
	r.HandleFunc("/address", C(DeriveAddress)).Methods("POST")
	return nil
}

type DeriveKeyRequest struct {
	// raw so that shape errors surface as identity errors
	Mnemonic   json.RawMessage `json:"mnemonic"   schema:"-"`
	Passphrase string          `json:"passphrase" schema:"-"`
	Index      *uint32         `json:"index"      schema:"index"`
	Path       string          `json:"path"       schema:"path"`
}

type DeriveKeyResponse struct {
	PrivateKey identity.PrivateKey `json:"private_key"`
	Address    identity.Address    `json:"address"`
	Path       string              `json:"path"`
}

type DeriveAddressRequest struct {
	PrivateKey string `json:"private_key" schema:"private_key"`
}

type DeriveAddressResponse struct {
	Address identity.Address `json:"address"`
}

func (args DeriveKeyRequest) Deriver() identity.Deriver {
	d := identity.Deriver{
		Path:       args.Path,
		Passphrase: args.Passphrase,
	}
	if args.Index != nil {
		if args.Path != "" {
			panic(EBadRequest(EC_PARAM_NOTEXPECTED, "use either index or path", nil))
		}
		d.Path = identity.AccountPath(*args.Index)
	}
	if d.Path == "" {
		d.Path = identity.DefaultPath
	}
	return d
}

func NewMnemonic(ctx *Context) (interface{}, int) {
	acc, err := identity.NewAccount()
	if err != nil {
		panic(EInternal(EC_SERVER, "account derivation failed", err))
	}
	return acc, http.StatusCreated
}

func DeriveKey(ctx *Context) (interface{}, int) {
	args := &DeriveKeyRequest{}
	ctx.ParseRequestArgs(args)
	d := args.Deriver()

	var raw any
	if len(args.Mnemonic) > 0 {
		if err := json.Unmarshal(args.Mnemonic, &raw); err != nil {
			panic(EBadRequest(EC_DEMARSHAL_FAILED, err.Error(), err))
		}
	}
	m, err := identity.ParseMnemonic(raw)
	if err != nil {
		panic(EBadRequest(EC_PARAM_INVALID, err.Error(), err))
	}
	key, err := d.Derive(m)
	if err != nil {
		panic(EBadRequest(EC_PARAM_INVALID, err.Error(), err))
	}
	addr, err := key.Address()
	if err != nil {
		panic(EInternal(EC_SERVER, "address derivation failed", err))
	}
	return &DeriveKeyResponse{
		PrivateKey: key,
		Address:    addr,
		Path:       d.Path,
	}, http.StatusOK
}

func DeriveAddress(ctx *Context) (interface{}, int) {
	args := &DeriveAddressRequest{}
	ctx.ParseRequestArgs(args)
	addr, err := identity.DeriveAddressFromKey(args.PrivateKey)
	if err != nil {
		panic(EBadRequest(EC_PARAM_INVALID, err.Error(), err))
	}
	return &DeriveAddressResponse{Address: addr}, http.StatusOK
}
