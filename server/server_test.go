// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockwatch.cc/easkit/catalog"
	"blockwatch.cc/easkit/rpc"
)

const (
	testPhrase  = "tribe arm stock armed bridge useful tray shield scatter begin shiver mystery"
	testKey     = "0xf7ac167c96b9cfd930448e8078254bf1e7dd54b31935ae2cbb488a4f584fa97d"
	testAddress = "0x157FB2D82Cbb6EF9911a78496671a9AC3589d383"
	voteSchema  = "uint256 eventId, string[] weights, string comment"
	voteUID     = "0x6123441ae23c2a9ef6c0dfa07ac6ad5bb9a7950c4759e4b5989acb05eb87554e"
)

type testEnv struct {
	t   *testing.T
	url string
}

func newTestEnv(t *testing.T, node http.Handler) *testEnv {
	t.Helper()
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })

	cfg := &Config{Catalog: cat, Http: NewHttpConfig()}
	if node != nil {
		ns := httptest.NewServer(node)
		t.Cleanup(ns.Close)
		cfg.Client, err = rpc.NewClient(ns.URL, ns.Client())
		require.NoError(t, err)
	}

	s, err := New(cfg)
	require.NoError(t, err)
	s.dispatcher.Run()
	t.Cleanup(s.dispatcher.Stop)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{t: t, url: ts.URL}
}

func (e *testEnv) do(method, path string, body any) *http.Response {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, e.url+path, r)
	require.NoError(e.t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// call expects status and decodes a successful reply into v.
func (e *testEnv) call(method, path string, body any, status int, v any) {
	e.t.Helper()
	resp := e.do(method, path, body)
	if !assert.Equal(e.t, status, resp.StatusCode, "%s %s", method, path) {
		buf, _ := io.ReadAll(resp.Body)
		e.t.Logf("body: %s", buf)
		e.t.FailNow()
	}
	if v != nil {
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(v))
	}
}

// fail expects an error reply and returns it.
func (e *testEnv) fail(method, path string, body any, status int) *Error {
	e.t.Helper()
	resp := e.do(method, path, body)
	require.Equal(e.t, status, resp.StatusCode, "%s %s", method, path)
	err := ParseErrorFromStream(resp.Body, resp.StatusCode)
	var apiErr *Error
	require.True(e.t, errors.As(err, &apiErr))
	return apiErr
}

func TestPing(t *testing.T) {
	env := newTestEnv(t, nil)
	var p Pinger
	env.call("GET", "/ping?sequence=5&client_time=7", nil, http.StatusOK, &p)
	assert.Equal(t, int64(5), p.Sequence)
	assert.Equal(t, int64(7), p.RequestAt)
	assert.NotZero(t, p.ResponseAt)
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	e := env.fail("GET", "/nope", nil, http.StatusNotFound)
	assert.Equal(t, EC_NO_ROUTE, e.Code)
	assert.NotEmpty(t, e.RequestId)
}

func TestIdentityRoutes(t *testing.T) {
	env := newTestEnv(t, nil)
	words := strings.Fields(testPhrase)

	var key DeriveKeyResponse
	env.call("POST", "/identity/key", map[string]any{"mnemonic": words}, http.StatusOK, &key)
	assert.Equal(t, testKey, key.PrivateKey.String())
	assert.Equal(t, testAddress, key.Address.String())
	assert.Equal(t, "m/44'/60'/0'/0/0", key.Path)

	env.call("POST", "/identity/key", map[string]any{"mnemonic": words, "index": 1}, http.StatusOK, &key)
	assert.Equal(t, "0x3D1760030CC071dD5Cb32C3Ae302D94b0741E581", key.Address.String())

	var addr DeriveAddressResponse
	env.call("POST", "/identity/address", map[string]any{"private_key": testKey}, http.StatusOK, &addr)
	assert.Equal(t, testAddress, addr.Address.String())

	var acc struct {
		Mnemonic   []string `json:"mnemonic"`
		PrivateKey string   `json:"private_key"`
		Address    string   `json:"address"`
	}
	env.call("POST", "/identity/mnemonic", nil, http.StatusCreated, &acc)
	assert.Len(t, acc.Mnemonic, 12)
	assert.Len(t, acc.PrivateKey, 66)
	assert.Len(t, acc.Address, 42)
}

func TestIdentityErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, body := range []map[string]any{
		{"mnemonic": testPhrase},
		{"mnemonic": []string{"word1", "word2", "word3"}},
		{},
		{"mnemonic": strings.Fields(strings.Replace(testPhrase, "tribe", "junk", 1))},
		{"mnemonic": strings.Fields(testPhrase), "path": "m/bad"},
	} {
		e := env.fail("POST", "/identity/key", body, http.StatusBadRequest)
		assert.Equal(t, EC_PARAM_INVALID, e.Code, "%v", body)
	}
	e := env.fail("POST", "/identity/key", map[string]any{"mnemonic": strings.Fields(testPhrase), "path": "m/0", "index": 1}, http.StatusBadRequest)
	assert.Equal(t, EC_PARAM_NOTEXPECTED, e.Code)

	e = env.fail("POST", "/identity/address", map[string]any{"private_key": "invalidPrivateKey"}, http.StatusBadRequest)
	assert.Equal(t, EC_PARAM_INVALID, e.Code)
}

func TestSchemaRoutes(t *testing.T) {
	env := newTestEnv(t, nil)

	var parsed struct {
		Keys  []string          `json:"keys"`
		Types map[string]string `json:"types"`
	}
	env.call("POST", "/schemas/parse", map[string]any{"schema": voteSchema}, http.StatusOK, &parsed)
	assert.Equal(t, []string{"eventId", "weights", "comment"}, parsed.Keys)
	assert.Equal(t, "string[]", parsed.Types["weights"])

	e := env.fail("POST", "/schemas/parse", map[string]any{"schema": "uint256"}, http.StatusBadRequest)
	assert.Equal(t, EC_SCHEMA_MALFORMED, e.Code)
	e = env.fail("POST", "/schemas/parse", map[string]any{}, http.StatusBadRequest)
	assert.Equal(t, EC_PARAM_REQUIRED, e.Code)

	var res struct {
		Status      bool     `json:"status"`
		MissingKeys []string `json:"missingKeys"`
	}
	env.call("POST", "/schemas/validate", map[string]any{
		"schema": voteSchema,
		"data":   map[string]any{"eventId": 1, "weights": []string{"1"}},
	}, http.StatusOK, &res)
	assert.False(t, res.Status)
	assert.Equal(t, []string{"comment"}, res.MissingKeys)

	var cast struct {
		Data map[string]any `json:"data"`
	}
	env.call("POST", "/schemas/cast", map[string]any{
		"schema": "int eventId, int[] weights, string comment",
		"data":   map[string]any{"eventId": "42", "weights": []any{"1", "x"}, "comment": "7"},
	}, http.StatusOK, &cast)
	assert.Equal(t, float64(42), cast.Data["eventId"])
	assert.Equal(t, []any{float64(1), nil}, cast.Data["weights"])
	assert.Equal(t, "7", cast.Data["comment"])

	var items []map[string]any
	env.call("POST", "/schemas/items", map[string]any{
		"schema": voteSchema,
		"data":   map[string]any{"comment": "c", "weights": []string{}, "eventId": 1},
	}, http.StatusOK, &items)
	require.Len(t, items, 3)
	assert.Equal(t, "eventId", items[0]["name"])
	assert.Equal(t, "uint256", items[0]["type"])

	e = env.fail("POST", "/schemas/items", map[string]any{
		"schema": voteSchema,
		"data":   map[string]any{"eventId": 1},
	}, http.StatusBadRequest)
	assert.Equal(t, EC_SCHEMA_VALIDATION_FAILED, e.Code)

	var uid UIDResponse
	env.call("POST", "/schemas/uid", map[string]any{"schema": voteSchema}, http.StatusOK, &uid)
	assert.Equal(t, voteUID, uid.UID.Hex())
	assert.True(t, uid.Revocable)

	var doc map[string]any
	env.call("POST", "/schemas/jsonschema", map[string]any{"schema": voteSchema}, http.StatusOK, &doc)
	assert.Equal(t, "object", doc["type"])
}

func TestCatalogRoutes(t *testing.T) {
	env := newTestEnv(t, nil)

	var rec catalog.SchemaRecord
	env.call("PUT", "/schemas", map[string]any{"schema": voteSchema}, http.StatusCreated, &rec)
	assert.Equal(t, voteUID, rec.UID.Hex())

	e := env.fail("PUT", "/schemas", map[string]any{"schema": voteSchema}, http.StatusConflict)
	assert.Equal(t, EC_RESOURCE_EXISTS, e.Code)

	var got catalog.SchemaRecord
	env.call("GET", "/schemas/"+voteUID, nil, http.StatusOK, &got)
	assert.Equal(t, voteSchema, got.Schema)

	env.call("PUT", "/schemas", map[string]any{"schema": "string userID"}, http.StatusCreated, nil)

	var list []catalog.SchemaRecord
	env.call("GET", "/schemas", nil, http.StatusOK, &list)
	assert.Len(t, list, 2)
	env.call("GET", "/schemas?limit=1&offset=1", nil, http.StatusOK, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "string userID", list[0].Schema)

	e = env.fail("GET", "/schemas/0x1234", nil, http.StatusBadRequest)
	assert.Equal(t, EC_RESOURCE_ID_MALFORMED, e.Code)
	e = env.fail("GET", "/schemas/0x"+strings.Repeat("00", 32), nil, http.StatusNotFound)
	assert.Equal(t, EC_RESOURCE_NOTFOUND, e.Code)
}

func TestBalanceRoute(t *testing.T) {
	node := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64 `json:"id"`
			Method string `json:"method"`
			Params []any  `json:"params"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		if req.Method != "eth_getBalance" || req.Params[1] == "pending" {
			w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"unsupported"}}`))
			return
		}
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"0x6f05b59d3b20000"}`))
	})
	env := newTestEnv(t, node)

	var bal BalanceResponse
	env.call("GET", "/accounts/"+testAddress+"/balance", nil, http.StatusOK, &bal)
	assert.Equal(t, testAddress, bal.Address.String())
	assert.Equal(t, "500000000000000000", bal.Wei)
	assert.Equal(t, "0.5", bal.Ether)
	assert.Equal(t, "latest", bal.Block)

	env.call("GET", "/accounts/"+testAddress+"/balance?block=16", nil, http.StatusOK, &bal)
	assert.Equal(t, "0x10", bal.Block)

	e := env.fail("GET", "/accounts/"+testAddress+"/balance?block=pending", nil, http.StatusBadGateway)
	assert.Equal(t, EC_RPC, e.Code)

	e = env.fail("GET", "/accounts/0x1234/balance", nil, http.StatusBadRequest)
	assert.Equal(t, EC_PARAM_INVALID, e.Code)
}

func TestBalanceWithoutNode(t *testing.T) {
	env := newTestEnv(t, nil)
	e := env.fail("GET", "/accounts/"+testAddress+"/balance", nil, http.StatusServiceUnavailable)
	assert.Equal(t, EC_UNAVAILABLE, e.Code)
}

func TestSystemRoutes(t *testing.T) {
	env := newTestEnv(t, nil)
	env.call("POST", "/schemas/parse", map[string]any{"schema": voteSchema}, http.StatusOK, nil)
	env.call("POST", "/schemas/parse", map[string]any{"schema": voteSchema}, http.StatusOK, nil)

	var stats map[string]map[string]int64
	env.call("GET", "/system/caches", nil, http.StatusOK, &stats)
	assert.Equal(t, int64(1), stats["schema"]["hits"])
	assert.Equal(t, int64(1), stats["schema"]["size"])

	env.call("PUT", "/system/caches/purge", nil, http.StatusNoContent, nil)
	env.call("GET", "/system/caches", nil, http.StatusOK, &stats)
	assert.Equal(t, int64(0), stats["schema"]["size"])

	var sys SysStat
	env.call("GET", "/system/sysstat", nil, http.StatusOK, &sys)
	assert.NotZero(t, sys.NumCpu)

	env.call("PUT", "/system/log/schema/debug", nil, http.StatusNoContent, nil)
	e := env.fail("PUT", "/system/log/schema/loud", nil, http.StatusBadRequest)
	assert.Equal(t, EC_PARAM_INVALID, e.Code)
	e = env.fail("PUT", "/system/log/nope/debug", nil, http.StatusBadRequest)
	assert.Equal(t, EC_PARAM_INVALID, e.Code)
}

func TestDispatcherQueueFull(t *testing.T) {
	d := NewDispatcher(1, 1)
	assert.True(t, d.Schedule(&Context{}))
	assert.False(t, d.Schedule(&Context{}))
}

func TestServersKeepOwnState(t *testing.T) {
	a := newTestEnv(t, nil)
	b := newTestEnv(t, nil)

	a.call("PUT", "/schemas", map[string]any{"schema": voteSchema}, http.StatusCreated, nil)

	var list []catalog.SchemaRecord
	a.call("GET", "/schemas", nil, http.StatusOK, &list)
	assert.Len(t, list, 1)
	b.call("GET", "/schemas", nil, http.StatusOK, &list)
	assert.Len(t, list, 0)

	// the same schema registers fresh on the other catalog
	b.call("PUT", "/schemas", map[string]any{"schema": voteSchema}, http.StatusCreated, nil)
}

func TestDispatcherStopAnswersQueued(t *testing.T) {
	s, err := New(&Config{Http: NewHttpConfig()})
	require.NoError(t, err)

	// workers are not running so the request stays queued
	req := httptest.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()
	api := NewContext(req.Context(), req, w, Ping, s)
	require.True(t, s.dispatcher.Schedule(api))

	s.dispatcher.Stop()
	select {
	case <-api.done:
	case <-time.After(time.Second):
		t.Fatal("queued request was not answered")
	}
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.True(t, s.dispatcher.IsStopped())
	assert.False(t, s.dispatcher.Schedule(api))
	s.dispatcher.Stop()
}

func TestErrorResponseRoundTrip(t *testing.T) {
	assert.Equal(t, 1300, EC_RESOURCE_ID_MALFORMED)
	assert.Equal(t, 1201, EC_ACCESS_READONLY)

	e := EConflict(EC_RESOURCE_EXISTS, "schema exists", nil).(*Error)
	got := ParseErrorFromStream(bytes.NewReader(e.Marshal()), http.StatusConflict)
	var re *Error
	require.True(t, errors.As(got, &re))
	assert.Equal(t, EC_RESOURCE_EXISTS, re.Code)
	assert.Equal(t, http.StatusConflict, re.Status)

	got = ParseErrorFromStream(strings.NewReader(`{"errors":[]}`), http.StatusBadGateway)
	require.True(t, errors.As(got, &re))
	assert.Equal(t, EC_DEMARSHAL_FAILED, re.Code)
}
