// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorStatus returns the HTTP status carried by err or 0.
func ErrorStatus(err error) int {
	var e HTTPError
	if errors.As(err, &e) {
		return e.StatusCode()
	}
	return 0
}

// GenericError is a JSON-RPC 2.0 error object.
type GenericError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *GenericError) Error() string {
	return fmt.Sprintf("rpc: code = %d, message = %q", e.Code, e.Message)
}

// HTTPStatus interface represents an unprocessed HTTP reply
type HTTPStatus interface {
	Request() string // e.g. POST /
	Status() string  // e.g. "200 OK"
	StatusCode() int // e.g. 200
	Body() []byte
}

// HTTPError retains HTTP status
type HTTPError interface {
	error
	HTTPStatus
}

// RPCError is an error object returned by the node.
type RPCError interface {
	HTTPError
	Code() int
	Message() string
	Data() json.RawMessage
}

type httpError struct {
	request    string
	status     string
	statusCode int
	body       []byte
}

func (e *httpError) Error() string {
	return fmt.Sprintf("rpc: %s status %d (%v)", e.request, e.statusCode, string(e.body))
}

func (e *httpError) Request() string {
	return e.request
}

func (e *httpError) Status() string {
	return e.status
}

func (e *httpError) StatusCode() int {
	return e.statusCode
}

func (e *httpError) Body() []byte {
	return e.body
}

type rpcError struct {
	*httpError
	err *GenericError
}

func (e *rpcError) Error() string {
	return e.err.Error()
}

func (e *rpcError) Code() int {
	return e.err.Code
}

func (e *rpcError) Message() string {
	return e.err.Message
}

func (e *rpcError) Data() json.RawMessage {
	return e.err.Data
}

var (
	_ HTTPError = &httpError{}
	_ RPCError  = &rpcError{}
)
