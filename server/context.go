// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package server

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"reflect"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	logpkg "github.com/echa/log"

	"blockwatch.cc/easkit/catalog"
	"blockwatch.cc/easkit/rpc"
	"blockwatch.cc/easkit/schema"
)

const (
	jsonContentType = "application/json; charset=utf-8"
	headerVersion   = "X-Api-Version"
	headerRuntime   = "X-Runtime"
)

type ApiCall func(*Context) (interface{}, int)

type Context struct {
	context.Context
	// request data
	Request        *http.Request
	ResponseWriter http.ResponseWriter
	RemoteIP       net.IP
	Cfg            *Config
	Server         *RestServer
	Catalog        *catalog.Catalog
	Client         *rpc.Client
	Schemas        *schema.Cache

	// QoS and Debugging
	RequestID string
	Log       logpkg.Logger

	// Statistics
	Now         time.Time
	Performance *PerformanceCounter

	// input
	name string
	f    ApiCall

	// output
	status int
	result interface{}
	err    *Error
	done   chan *Error
}

func NewContext(ctx context.Context, r *http.Request, w http.ResponseWriter, f ApiCall, srv *RestServer) *Context {
	now := time.Now().UTC()

	// extract name from func to use in fail method
	name := getCallName(f)

	// get real IP behind Docker Interface X-Real-IP or X-Forwarded-For
	host := r.Header.Get("X-Real-Ip")
	if host == "" {
		host = r.Header.Get("X-Forwarded-For")
	}
	if host == "" {
		host, _, _ = net.SplitHostPort(r.RemoteAddr)
	}
	requestId := r.Header.Get("X-Request-ID")
	if requestId == "" {
		requestId = "EK-" + <-idStream
	}

	return &Context{
		Context:        ctx,
		Now:            now,
		RequestID:      requestId,
		Cfg:            srv.cfg,
		Server:         srv,
		Catalog:        srv.cfg.Catalog,
		Client:         srv.cfg.Client,
		Schemas:        srv.cfg.Schemas,
		Request:        r,
		ResponseWriter: w,
		RemoteIP:       net.ParseIP(host),
		Performance:    NewPerformanceCounter(now),
		status:         http.StatusOK,
		done:           make(chan *Error, 1),
		f:              f,
		name:           name,
		Log:            log.Clone().WithTag(requestId),
	}
}

// ParseRequestArgs decodes URL query arguments and, for requests with a
// body, JSON arguments which take precedence. Panics on error.
func (api *Context) ParseRequestArgs(args interface{}) {
	r := api.Request

	if err := schemaDecoder.Decode(args, r.URL.Query()); err != nil {
		panic(EBadRequest(EC_BAD_URL_QUERY, err.Error(), nil))
	}
	if r.Method == http.MethodGet {
		return
	}

	// POST, PUT, PATCH, DELETE
	if err := json.NewDecoder(r.Body).Decode(args); err != nil {
		// ignore empty body errors
		if err != io.EOF {
			panic(EBadRequest(EC_DEMARSHAL_FAILED, err.Error(), nil))
		}
	}
}

// this is executed in a goroutine per call, panics on error
func (api *Context) serve() {
	defer api.complete()
	var status int
	api.result, status = api.f(api)
	if status > 0 {
		api.status = status
	}
}

func (api *Context) complete() {
	// only execute on panic
	if e := recover(); e != nil {
		if debugHttp {
			d, _ := httputil.DumpRequest(api.Request, false)
			api.Log.Trace(string(d))
		}

		// e might not be error type, e.g. when panic is thrown by Go Std Library
		// (e.g. from reflect package)
		switch err := e.(type) {
		case error:
			api.handleError(err)
		default:
			api.handleError(fmt.Errorf("%v", e))
		}
	}
}

func (api *Context) handleError(e error) {
	var (
		re    *Error
		opErr *net.OpError
	)
	switch {
	case errors.As(e, &re):
	case errors.As(e, &opErr):
		re = EConnectionClosed(EC_NETWORK, "connection closed", e).(*Error)
	case errors.Is(e, context.DeadlineExceeded):
		dl, _ := api.Context.Deadline()
		re = EServiceUnavailable(
			EC_SERVER,
			fmt.Sprintf("request timeout: took=%v max=%v", time.Since(api.Now), dl),
			e).(*Error)
	case errors.Is(e, context.Canceled):
		re = EConnectionClosed(EC_NETWORK, "context canceled", e).(*Error)
	case errors.Is(e, syscall.EPIPE):
		re = EConnectionClosed(EC_NETWORK, "connection closed", e).(*Error)
	default:
		re = EInternal(EC_SERVER, "uncaught exception", e).(*Error)
		if b, _ := api.jsonStack(); len(b) > 0 {
			api.Log.Error(string(b))
		}
	}
	re.SetScope(api.name)
	re.RequestId = api.RequestID
	re.Reason = "" // clear internal error
	api.err = re
	api.status = re.Status
}

func (api *Context) jsonStack() ([]byte, error) {
	trace := debug.Stack()
	api.Log.Debugf("%s", string(trace))
	lines := make([]string, 0, bytes.Count(trace, []byte("\n"))+1)
	for _, v := range bytes.Split(trace, []byte("\n")) {
		if len(v) == 0 {
			continue
		}
		lines = append(lines, string(v))
	}
	js := struct {
		Stack []string `json:"stack"`
	}{
		Stack: lines,
	}
	return json.Marshal(js)
}

func (api *Context) sendResponse() {
	if api.err == nil {
		// make sure to set response headers before writing body
		api.writeResponseHeaders("")

		// marshal JSON response into HTTP body
		api.writeResponseBody()
		return
	}

	path := strings.Join([]string{
		api.Request.Method,
		api.Request.RequestURI,
		api.Request.Proto,
	}, " ")

	err := api.err
	if err.Cause != nil {
		api.Log.Errorf("%d (%d) %s - %s failed (%s): %v", api.status, err.Code, path, err.Scope, err.Detail, err.Cause)
	} else {
		api.Log.Errorf("%d (%d) %s - %s failed (%s)", api.status, err.Code, path, err.Scope, err.Detail)
	}

	// return error response when connection is still alive
	if err.Cause == nil || !errors.Is(err.Cause, context.Canceled) {
		api.writeResponseHeaders("")
		api.ResponseWriter.Write(err.MarshalIndent())
	}
}

func (api *Context) writeResponseHeaders(contentType string) {
	w := api.ResponseWriter
	h := w.Header()

	// add request id header
	h.Set("Server", UserAgent)
	h.Set(headerVersion, ApiVersion)
	h.Set("X-Request-Id", api.RequestID)

	// set content type if not already set by request handler function
	if h.Get("Content-Type") == "" && api.status != http.StatusNoContent {
		if contentType == "" {
			contentType = jsonContentType
		}
		h.Set("Content-Type", contentType)
	}

	// response creation time
	now := api.Now

	// set CORS header if enabled
	if api.Cfg.Http.CorsEnable {
		if api.Cfg.Http.CorsOrigin == "*" {
			h.Set("Access-Control-Allow-Origin", api.Request.Header.Get("Origin"))
		} else {
			h.Set("Access-Control-Allow-Origin", api.Cfg.Http.CorsOrigin)
		}
		h.Set("Access-Control-Allow-Headers", api.Cfg.Http.CorsAllowHeaders)
		h.Set("Access-Control-Expose-Headers", api.Cfg.Http.CorsExposeHeaders)
		h.Set("Access-Control-Allow-Methods", api.Cfg.Http.CorsMethods)
		h.Set("Access-Control-Allow-Credentials", api.Cfg.Http.CorsCredentials)
		h.Set("Access-Control-Max-Age", api.Cfg.Http.CorsMaxAge)
	}

	// Set cache headers only when caching is enabled, the call succeeded
	// and the result is a Resource.
	var expires time.Duration
	res, isResource := api.result.(Resource)
	if api.Cfg.Http.CacheEnable && isResource && api.status >= 200 && api.status <= 299 {
		h.Set("Last-Modified", res.LastModified().Format(http.TimeFormat))
		exptime := res.Expires()
		if exptime.IsZero() {
			// immutable resources like registered schemas
			expires = api.Cfg.Http.CacheMaxExpires
		} else {
			expires = exptime.Sub(now)
			if expires < 0 {
				expires = 0
			}
		}
		h.Set("Date", now.Format(http.TimeFormat))
		h.Set("Expires", now.Add(expires).Format(http.TimeFormat))
		h.Set("Cache-Control", api.Cfg.Http.CacheControl+",max-age="+strconv.FormatInt(int64(expires/time.Second), 10))
	} else {
		h.Set("Cache-Control", "max-age=0, no-cache, no-store, must-revalidate")
		h.Set("Pragma", "no-cache")
		h.Set("Date", now.Format(http.TimeFormat))
		h.Set("Expires", now.Format(http.TimeFormat))
	}

	// add performance header
	api.Performance.WriteResponseHeader(w)

	w.WriteHeader(api.status)
}

func (api *Context) writeResponseBody() {
	if api.result == nil || api.status == http.StatusNoContent {
		return
	}
	switch t := api.result.(type) {
	case string:
		api.ResponseWriter.Write([]byte(t))
	case []byte:
		api.ResponseWriter.Write(t)
	default:
		// marshal and write the result to the HTTP body
		b, err := json.MarshalIndent(api.result, "", "  ")
		if err != nil {
			api.Log.Errorf("Error sending response: %v in struct %#v", err, api.result)
			e := EInternal(EC_MARSHAL_FAILED, "cannot marshal response", err).(*Error)
			e.SetScope(api.name)
			api.ResponseWriter.Write(e.MarshalIndent())
			return
		}
		api.ResponseWriter.Write(append(b, '\n'))
	}
}

var (
	callNames = make(map[uintptr]string)
	mu        sync.RWMutex
	idStream  chan string
)

func getCallName(f ApiCall) string {
	p := reflect.ValueOf(f).Pointer()
	mu.RLock()
	n, ok := callNames[p]
	mu.RUnlock()
	if ok {
		return n
	}
	name := runtime.FuncForPC(p).Name()
	if idx := strings.LastIndex(name, "."); idx > -1 {
		name = name[idx+1:]
	}
	mu.Lock()
	callNames[p] = name
	mu.Unlock()
	return name
}

func init() {
	// start asynchronous ID generator
	idStream = make(chan string, 100)
	go func(ch chan string) {
		h := sha1.New()
		c := []byte(time.Now().String())
		for {
			h.Write(c)
			ch <- fmt.Sprintf("%x", h.Sum(nil))
		}
	}(idStream)
}
