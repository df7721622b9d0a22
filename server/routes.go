// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package server

import (
	"expvar"
	"net/http/pprof"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
)

var (
	schemaDecoder = schema.NewDecoder()
)

// Resource is implemented by results that may be cached by clients.
type Resource interface {
	LastModified() time.Time
	Expires() time.Time
}

type RESTful interface {
	RESTPrefix() string
	RegisterRoutes(r *mux.Router) error
	RegisterDirectRoutes(r *mux.Router) error
}

var models = map[string]RESTful{}

func register(model RESTful) {
	models[model.RESTPrefix()] = model
}

// NewRouter generates a new API router with support for HTTP OPTIONS.
func NewRouter() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)

	router.PathPrefix("/").HandlerFunc(C(StateOptions)).Methods("OPTIONS")

	// stable registration order
	prefixes := make([]string, 0, len(models))
	for k := range models {
		prefixes = append(prefixes, k)
	}
	sort.Strings(prefixes)

	for _, p := range prefixes {
		m := models[p]
		if err := m.RegisterDirectRoutes(router); err != nil {
			log.Fatalf("API cannot register %s route: %v", p, err)
		}
		if err := m.RegisterRoutes(router.PathPrefix(p).Subrouter()); err != nil {
			log.Fatalf("API cannot register %s subroutes: %v", p, err)
		}
	}

	// register debug routes directly (i.e. without going through dispatcher)
	log.Debugf("Registering debug routes")
	router.HandleFunc("/debug/pprof/", pprof.Index)
	router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	router.HandleFunc("/debug/pprof/profile", pprof.Profile)
	router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	router.HandleFunc("/debug/pprof/trace", pprof.Trace)
	router.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	router.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	router.Handle("/debug/pprof/allocs", pprof.Handler("allocs"))
	router.PathPrefix("/debug/vars").Handler(expvar.Handler())

	router.PathPrefix("/").HandlerFunc(C(NotFound))

	// configure schema (URL parameter) decoding
	schemaDecoder.IgnoreUnknownKeys(true)
	schemaDecoder.ZeroEmpty(true)

	return router
}
