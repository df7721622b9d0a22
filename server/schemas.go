// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"
	bolt "go.etcd.io/bbolt"

	"blockwatch.cc/easkit/catalog"
	"blockwatch.cc/easkit/schema"
)

func init() {
	register(SchemaRequest{})
}

var _ RESTful = (*SchemaRequest)(nil)

type SchemaRequest struct{}

func (t SchemaRequest) RESTPrefix() string {
	return "/schemas"
}

func (t SchemaRequest) RegisterDirectRoutes(r *mux.Router) error {
	r.HandleFunc(t.RESTPrefix(), C(ListSchemas)).Methods("GET")
	r.HandleFunc(t.RESTPrefix(), C(RegisterSchema)).Methods("PUT")
	return nil
}

func (t SchemaRequest) RegisterRoutes(r *mux.Router) error {
	r.HandleFunc("/parse", C(ParseSchema)).Methods("POST")
	r.HandleFunc("/validate", C(ValidateRecord)).Methods("POST")
	r.HandleFunc("/cast", C(CastRecord)).Methods("POST")
	r.HandleFunc("/items", C(RecordItems)).Methods("POST")
	r.HandleFunc("/uid", C(SchemaUID)).Methods("POST")
	r.HandleFunc("/jsonschema", C(ExportJSONSchema)).Methods("POST")
	r.HandleFunc("/{uid}", C(GetSchema)).Methods("GET")
	return nil
}

// SchemaArgs carries a schema string and an optional data record.
type SchemaArgs struct {
	Schema    string          `json:"schema"    schema:"schema"`
	Data      json.RawMessage `json:"data"      schema:"-"`
	Resolver  string          `json:"resolver"  schema:"resolver"`
	Revocable *bool           `json:"revocable" schema:"revocable"`
}

func (a SchemaArgs) descriptor(ctx *Context) *schema.Descriptor {
	if a.Schema == "" {
		panic(EBadRequest(EC_PARAM_REQUIRED, "missing schema", nil))
	}
	d, err := ctx.Schemas.Parse(a.Schema)
	if err != nil {
		panic(EBadRequest(EC_SCHEMA_MALFORMED, err.Error(), err))
	}
	return d
}

func (a SchemaArgs) record() schema.Record {
	if len(a.Data) == 0 {
		panic(EBadRequest(EC_PARAM_REQUIRED, "missing data", nil))
	}
	rec, err := schema.RecordFromJSON(a.Data)
	if err != nil {
		panic(EBadRequest(EC_RECORD_INVALID, err.Error(), err))
	}
	return rec
}

func (a SchemaArgs) resolver() common.Address {
	if a.Resolver == "" {
		return common.Address{}
	}
	if !common.IsHexAddress(a.Resolver) {
		panic(EBadRequest(EC_PARAM_INVALID, fmt.Sprintf("invalid resolver address %q", a.Resolver), nil))
	}
	return common.HexToAddress(a.Resolver)
}

func (a SchemaArgs) revocable() bool {
	return a.Revocable == nil || *a.Revocable
}

type CastResponse struct {
	Data schema.Record `json:"data"`
}

type UIDResponse struct {
	UID       common.Hash    `json:"uid"`
	Schema    string         `json:"schema"`
	Resolver  common.Address `json:"resolver"`
	Revocable bool           `json:"revocable"`
}

// SchemaRecord wraps catalog entries so clients may cache them.
type SchemaRecord struct {
	catalog.SchemaRecord
}

func (r SchemaRecord) LastModified() time.Time {
	return r.RegisteredAt
}

func (r SchemaRecord) Expires() time.Time {
	return time.Time{}
}

func ParseSchema(ctx *Context) (interface{}, int) {
	args := &SchemaArgs{}
	ctx.ParseRequestArgs(args)
	return args.descriptor(ctx), http.StatusOK
}

func ValidateRecord(ctx *Context) (interface{}, int) {
	args := &SchemaArgs{}
	ctx.ParseRequestArgs(args)
	d := args.descriptor(ctx)
	return schema.Validate(d, args.record()), http.StatusOK
}

func CastRecord(ctx *Context) (interface{}, int) {
	args := &SchemaArgs{}
	ctx.ParseRequestArgs(args)
	d := args.descriptor(ctx)
	return &CastResponse{Data: schema.Cast(d, args.record())}, http.StatusOK
}

func RecordItems(ctx *Context) (interface{}, int) {
	args := &SchemaArgs{}
	ctx.ParseRequestArgs(args)
	d := args.descriptor(ctx)
	items, err := schema.Items(d, args.record())
	if err != nil {
		panic(EBadRequest(EC_SCHEMA_VALIDATION_FAILED, err.Error(), err))
	}
	return items, http.StatusOK
}

func SchemaUID(ctx *Context) (interface{}, int) {
	args := &SchemaArgs{}
	ctx.ParseRequestArgs(args)
	d := args.descriptor(ctx)
	resolver, revocable := args.resolver(), args.revocable()
	return &UIDResponse{
		UID:       d.UID(resolver, revocable),
		Schema:    d.Raw(),
		Resolver:  resolver,
		Revocable: revocable,
	}, http.StatusOK
}

func ExportJSONSchema(ctx *Context) (interface{}, int) {
	args := &SchemaArgs{}
	ctx.ParseRequestArgs(args)
	buf, err := schema.JSONSchema(args.descriptor(ctx))
	if err != nil {
		panic(EInternal(EC_MARSHAL_FAILED, "json schema export failed", err))
	}
	return json.RawMessage(buf), http.StatusOK
}

type ListRequest struct {
	Limit  uint `schema:"limit"`
	Offset uint `schema:"offset"`
}

func ListSchemas(ctx *Context) (interface{}, int) {
	args := &ListRequest{}
	ctx.ParseRequestArgs(args)
	cat := requireCatalog(ctx)
	list, err := cat.List()
	if err != nil {
		panic(EInternal(EC_DATABASE, "listing schemas failed", err))
	}
	limit := ctx.Cfg.ClampList(args.Limit)
	if args.Offset >= uint(len(list)) {
		return []catalog.SchemaRecord{}, http.StatusOK
	}
	list = list[args.Offset:]
	if uint(len(list)) > limit {
		list = list[:limit]
	}
	return list, http.StatusOK
}

func RegisterSchema(ctx *Context) (interface{}, int) {
	args := &SchemaArgs{}
	ctx.ParseRequestArgs(args)
	cat := requireCatalog(ctx)
	d := args.descriptor(ctx)
	rec, err := cat.Register(d.Raw(), args.resolver(), args.revocable())
	switch {
	case err == nil:
	case errors.Is(err, catalog.ErrExists):
		panic(EConflict(EC_RESOURCE_EXISTS, err.Error(), err))
	case errors.Is(err, bolt.ErrDatabaseReadOnly):
		panic(EForbidden(EC_ACCESS_READONLY, "catalog is read-only", err))
	default:
		panic(EInternal(EC_DATABASE, "registering schema failed", err))
	}
	return SchemaRecord{rec}, http.StatusCreated
}

func GetSchema(ctx *Context) (interface{}, int) {
	id := mux.Vars(ctx.Request)["uid"]
	buf, err := hexutil.Decode(id)
	if err != nil || len(buf) != common.HashLength {
		panic(EBadRequest(EC_RESOURCE_ID_MALFORMED, fmt.Sprintf("invalid schema uid %q", id), err))
	}
	cat := requireCatalog(ctx)
	rec, err := cat.Get(common.BytesToHash(buf))
	switch {
	case err == nil:
	case errors.Is(err, catalog.ErrNotFound):
		panic(ENotFound(EC_RESOURCE_NOTFOUND, err.Error(), err))
	default:
		panic(EInternal(EC_DATABASE, "reading schema failed", err))
	}
	return SchemaRecord{rec}, http.StatusOK
}

func requireCatalog(ctx *Context) *catalog.Catalog {
	if ctx.Catalog == nil {
		panic(EServiceUnavailable(EC_UNAVAILABLE, "schema catalog disabled", nil))
	}
	return ctx.Catalog
}
