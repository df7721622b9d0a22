// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	logpkg "github.com/echa/log"
	"github.com/gorilla/mux"

	"blockwatch.cc/easkit/schema"
)

type RestServer struct {
	router     *mux.Router
	srv        *http.Server
	dispatcher *Dispatcher
	cfg        *Config
	shutdown   atomic.Bool
}

var (
	UserAgent  = "Blockwatch-EASKit/1.0"
	ApiVersion string
	debugHttp  bool
)

// serverKey carries the owning *RestServer in request contexts.
type serverKey struct{}

func New(cfg *Config) (*RestServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server config required")
	}

	if err := cfg.Http.Check(); err != nil {
		return nil, err
	}

	if cfg.Schemas == nil {
		cfg.Schemas = schema.NewCache(cfg.Http.SchemaCacheSize)
	}

	debugHttp = log.Level() == logpkg.LevelTrace

	// setup router
	r := NewRouter()
	r.NotFoundHandler = http.HandlerFunc(C(NotFound))

	// setup HTTP/2 server to support HTTP/1.1 and HTTP/2.0
	h2s := &http2.Server{
		MaxHandlers: cfg.Http.MaxWorkers,
		IdleTimeout: cfg.Http.KeepAlive,
	}

	// configure the server, allowing non-TLS HTTP/2.0 a.k.a h2c conns
	// make timeout a bit longer to have headroom for returning 504 errors
	s := &RestServer{
		cfg:        cfg,
		router:     r,
		dispatcher: NewDispatcher(cfg.Http.MaxWorkers, cfg.Http.MaxQueue),
	}
	s.srv = &http.Server{
		Addr:              cfg.Http.Address(),
		Handler:           h2c.NewHandler(s.bind(r), h2s),
		ReadHeaderTimeout: cfg.Http.HeaderTimeout,
		ReadTimeout:       cfg.Http.ReadTimeout,
		WriteTimeout:      cfg.Http.WriteTimeout + time.Second,
		IdleTimeout:       cfg.Http.KeepAlive,
		ErrorLog:          log.Logger(),
	}
	return s, nil
}

// bind attaches s to every request so handlers registered through C
// always run against the server that received the request.
func (s *RestServer) bind(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), serverKey{}, s)))
	})
}

func (s *RestServer) IsShutdown() bool {
	return s.shutdown.Load()
}

// Handler returns the root HTTP handler.
func (s *RestServer) Handler() http.Handler {
	return s.srv.Handler
}

func (s *RestServer) Start() {
	// run the server dispatcher
	s.dispatcher.Run()

	go func() {
		log.Info("Starting HTTP server at ", s.cfg.Http.Address())
		if err := s.srv.ListenAndServe(); err != nil {
			if !s.IsShutdown() {
				log.Fatal(err)
			}
		}
	}()
}

func (s *RestServer) Stop() {
	log.Info("Stopping HTTP server.")
	s.shutdown.Store(true)
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Http.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		log.Error(err)
	}
	s.dispatcher.Stop()
}

func NotFound(ctx *Context) (interface{}, int) {
	r := ctx.Request
	s := fmt.Sprintf("Unrecognized request URL (%s: %s).", r.Method, r.URL.Path)
	panic(ENotFound(EC_NO_ROUTE, s, nil))
}

// StateOptions answers OPTIONS requests. Headers are set by the wrapper.
func StateOptions(ctx *Context) (interface{}, int) {
	return nil, http.StatusOK
}

func C(f ApiCall) func(http.ResponseWriter, *http.Request) {
	return wrapper(f)
}

func wrapper(f ApiCall) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			ctx    context.Context
			cancel context.CancelFunc
		)

		srv, ok := r.Context().Value(serverKey{}).(*RestServer)
		if !ok {
			http.Error(w, "handler not bound to a server", http.StatusInternalServerError)
			return
		}

		// use configured request timeout as default
		timeout := srv.cfg.Http.WriteTimeout

		// skip timeout on internal routes /debug and /system
		if strings.HasPrefix(r.URL.Path, "/") {
			switch strings.Split(r.URL.Path, "/")[1] {
			case "system", "debug":
				timeout = 0
			}
		}

		if timeout > 0 {
			ctx, cancel = context.WithTimeout(r.Context(), timeout)
		} else {
			ctx, cancel = context.WithCancel(r.Context())
		}
		defer cancel()

		api := NewContext(ctx, r, w, f, srv)

		// schedule call processing, will return 429 on full queue
		if !srv.dispatcher.Schedule(api) {
			if srv.dispatcher.IsStopped() {
				api.handleError(EServiceUnavailable(EC_SERVER, "server shutting down", nil))
			} else {
				api.handleError(ETooManyRequests(EC_ACCESS_RATE_LIMITED, "too many concurrent requests", nil))
			}
			api.sendResponse()
			return
		}
		// wait until request is finished, otherwise go's http handler returns 200 OK
		<-api.done
	}
}
