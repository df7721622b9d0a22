// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"sync/atomic"
)

const (
	libraryVersion = "v1"
	userAgent      = "easkit/" + libraryVersion
	mediaType      = "application/json"
	jsonrpcVersion = "2.0"
)

// Client manages communication with an Ethereum JSON-RPC node.
type Client struct {
	// HTTP client used to communicate with the node.
	client *http.Client
	// Endpoint URL for all requests.
	BaseURL *url.URL
	// User agent name for client.
	UserAgent string
	// Optional API key for protected endpoints
	ApiKey string

	seq uint64
}

// NewClient returns a new JSON-RPC client. A missing scheme defaults to
// http. An X-Api-Key query parameter is moved into a request header.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if !strings.HasPrefix(baseURL, "http") {
		baseURL = "http://" + baseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	key := q.Get("X-Api-Key")
	if key != "" {
		q.Del("X-Api-Key")
		u.RawQuery = q.Encode()
	}
	c := &Client{
		client:    httpClient,
		BaseURL:   u,
		UserAgent: userAgent,
		ApiKey:    key,
	}
	return c, nil
}

type request struct {
	Version string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	Version string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *GenericError   `json:"error"`
}

// Call invokes method with positional params and decodes the result into
// result, which may be nil to discard it. A JSON-RPC error object is
// returned as RPCError, a non-2xx reply as HTTPError.
func (c *Client) Call(ctx context.Context, method string, result any, params ...any) error {
	if params == nil {
		params = []any{}
	}
	body := request{
		Version: jsonrpcVersion,
		ID:      atomic.AddUint64(&c.seq, 1),
		Method:  method,
		Params:  params,
	}
	req, err := c.NewRequest(ctx, http.MethodPost, body)
	if err != nil {
		return err
	}
	var resp response
	if err := c.Do(req, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return &rpcError{
			httpError: &httpError{
				request:    method,
				status:     "200 OK",
				statusCode: http.StatusOK,
			},
			err: resp.Error,
		}
	}
	if result == nil || len(resp.Result) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Result, result)
}

// NewRequest creates a JSON-RPC request.
func (c *Client) NewRequest(ctx context.Context, method string, body any) (*http.Request, error) {
	buf := new(bytes.Buffer)
	if body != nil {
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL.String(), buf)
	if err != nil {
		return nil, err
	}

	req.Header.Add("Content-Type", mediaType)
	req.Header.Add("Accept", mediaType)
	req.Header.Add("User-Agent", c.UserAgent)
	if c.ApiKey != "" {
		req.Header.Add("X-Api-Key", c.ApiKey)
	}

	log.Debug(newLogClosure(func() string {
		d, _ := httputil.DumpRequest(req, true)
		return string(d)
	}))

	return req, nil
}

// Do sends req and decodes a 2xx JSON reply into v.
func (c *Client) Do(req *http.Request, v any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	log.Trace(newLogClosure(func() string {
		d, _ := httputil.DumpResponse(resp, true)
		return string(d)
	}))

	if resp.StatusCode/100 == 2 {
		if v == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(v)
	}

	return handleError(resp)
}

func handleError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	httpErr := httpError{
		request:    resp.Request.Method + " " + resp.Request.URL.RequestURI(),
		status:     resp.Status,
		statusCode: resp.StatusCode,
		body:       bytes.ReplaceAll(body, []byte("\n"), []byte{}),
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		// unknown body format, usually a human readable string
		return &httpErr
	}

	// some nodes reply with a JSON-RPC error object and a non-2xx status
	var r response
	if err := json.Unmarshal(body, &r); err != nil || r.Error == nil {
		return &httpErr
	}

	return &rpcError{
		httpError: &httpErr,
		err:       r.Error,
	}
}
