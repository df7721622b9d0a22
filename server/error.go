// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Error Codes

// 10xx - HTTP errors
const (
	EC_NO_ROUTE = 1000 + iota
	EC_MARSHAL_FAILED
	EC_DEMARSHAL_FAILED
	EC_BAD_URL_QUERY
	EC_PARAM_REQUIRED
	EC_PARAM_INVALID
	EC_PARAM_NOTEXPECTED
)

// 11xx - internal server error codes
const (
	EC_DATABASE = 1100 + iota
	EC_SERVER
	EC_RPC
	EC_NETWORK
	EC_UNAVAILABLE
)

// 12xx - Access errors
const (
	EC_ACCESS_RATE_LIMITED = 1200 + iota
	EC_ACCESS_READONLY
)

// 13xx - Resource errors
const (
	EC_RESOURCE_ID_MALFORMED = 1300 + iota
	EC_RESOURCE_NOTFOUND
	EC_RESOURCE_EXISTS
)

// 14xx - Domain errors
const (
	EC_SCHEMA_MALFORMED = 1400 + iota
	EC_SCHEMA_VALIDATION_FAILED
	EC_RECORD_INVALID
)

type Error struct {
	Code      int    `json:"code"`
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Scope     string `json:"scope"`
	Detail    string `json:"detail"`
	RequestId string `json:"request_id,omitempty"`
	Cause     error  `json:"-"`
	Reason    string `json:"reason,omitempty"`
}

type ErrorResponse struct {
	Errors []*Error `json:"errors"`
}

type ErrorWrapper func(code int, detail string, err error) error

func NewWrappedError(status int, msg string) ErrorWrapper {
	e := &Error{Status: status, Message: msg}
	return e.Complete
}

func (e *Error) Complete(code int, detail string, err error) error {
	x := &Error{
		Code:    code,
		Status:  e.Status,
		Message: e.Message,
		Scope:   e.Scope,
		Detail:  detail,
		Cause:   err,
	}
	if err != nil {
		x.Reason = err.Error()
	}
	return x
}

func (e *Error) String() string {
	return fmt.Sprintf("%s %s: %s", e.Scope, e.Message, e.Detail)
}

func (e *Error) Error() string {
	s := make([]string, 0)
	if e.Status != 0 {
		s = append(s, strings.Join([]string{"status", strconv.Itoa(e.Status)}, "="))
	}
	if e.Code != 0 {
		s = append(s, strings.Join([]string{"code", strconv.Itoa(e.Code)}, "="))
	}
	if e.Scope != "" {
		s = append(s, strings.Join([]string{"scope", e.Scope}, "="))
	}
	s = append(s, strings.Join([]string{"message", e.Message}, "="))
	if e.Detail != "" {
		s = append(s, strings.Join([]string{"detail", e.Detail}, "="))
	}
	if e.RequestId != "" {
		s = append(s, strings.Join([]string{"request-id", e.RequestId}, "="))
	}
	if e.Cause != nil {
		s = append(s, strings.Join([]string{"cause", e.Cause.Error()}, "="))
	}
	return strings.Join(s, " ")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) SetScope(s string) *Error {
	if e.Scope != "" {
		e.Scope = strings.Join([]string{s, e.Scope}, ": ")
	} else {
		e.Scope = s
	}
	return e
}

func (e *Error) MarshalIndent() []byte {
	errResp := ErrorResponse{
		Errors: []*Error{e},
	}
	b, _ := json.MarshalIndent(errResp, "", "  ")
	return b
}

func (e *Error) Marshal() []byte {
	errResp := ErrorResponse{
		Errors: []*Error{e},
	}
	b, _ := json.Marshal(errResp)
	return b
}

// ParseErrorFromStream decodes the first error of an error response body.
func ParseErrorFromStream(i io.Reader, status int) error {
	var response ErrorResponse
	if err := json.NewDecoder(i).Decode(&response); err != nil || len(response.Errors) == 0 {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return &Error{
			Status:  status,
			Code:    EC_DEMARSHAL_FAILED,
			Message: "parsing error response failed",
			Scope:   "ParseErrorFromStream",
			Cause:   err,
		}
	}
	return response.Errors[0]
}

// Server Error Reasons
var (
	EBadRequest         = NewWrappedError(http.StatusBadRequest, "incorrect request syntax")
	EForbidden          = NewWrappedError(http.StatusForbidden, "access forbidden")
	ENotFound           = NewWrappedError(http.StatusNotFound, "resource not found")
	EConflict           = NewWrappedError(http.StatusConflict, "resource state conflict")
	EInternal           = NewWrappedError(http.StatusInternalServerError, "internal server error")
	ETooManyRequests    = NewWrappedError(http.StatusTooManyRequests, "request limit exceeded")
	EServiceUnavailable = NewWrappedError(http.StatusServiceUnavailable, "service temporarily unavailable")
	EBadGateway         = NewWrappedError(http.StatusBadGateway, "upstream node failed")
	EConnectionClosed   = NewWrappedError(499, "connection closed")
)
