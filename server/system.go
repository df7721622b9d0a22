// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package server

import (
	"fmt"
	"net/http"

	"github.com/echa/config"
	logpkg "github.com/echa/log"
	"github.com/gorilla/mux"

	"blockwatch.cc/easkit/schema"
)

// LoggerMap holds subsystem loggers by tag and is set at startup.
var LoggerMap map[string]logpkg.Logger

// subsystem name to logger tag
var subsystems = map[string]string{
	"main":     "MAIN",
	"identity": "IDEN",
	"schema":   "SCHM",
	"database": "DATA",
	"rpc":      "JRPC",
	"server":   "SRVR",
}

func init() {
	register(SystemRequest{})
}

var _ RESTful = (*SystemRequest)(nil)

type SystemRequest struct{}

func (t SystemRequest) RESTPrefix() string {
	return "/system"
}

func (t SystemRequest) RegisterDirectRoutes(r *mux.Router) error {
	return nil
}

func (t SystemRequest) RegisterRoutes(r *mux.Router) error {
	r.HandleFunc("/config", C(GetConfig)).Methods("GET")
	r.HandleFunc("/caches", C(GetCacheStats)).Methods("GET")
	r.HandleFunc("/sysstat", C(GetSysStats)).Methods("GET")
	r.HandleFunc("/caches/purge", C(PurgeCaches)).Methods("PUT")
	r.HandleFunc("/log/{subsystem}/{level}", C(UpdateLog)).Methods("PUT")
	return nil
}

func GetConfig(ctx *Context) (interface{}, int) {
	return config.All(), http.StatusOK
}

func GetCacheStats(ctx *Context) (interface{}, int) {
	return map[string]schema.Stats{
		ctx.Schemas.Name(): ctx.Schemas.Stats(),
	}, http.StatusOK
}

func PurgeCaches(ctx *Context) (interface{}, int) {
	ctx.Schemas.Purge()
	return nil, http.StatusNoContent
}

func UpdateLog(ctx *Context) (interface{}, int) {
	sub := mux.Vars(ctx.Request)["subsystem"]
	level := mux.Vars(ctx.Request)["level"]
	lvl := logpkg.ParseLevel(level)
	if lvl == logpkg.LevelInvalid {
		panic(EBadRequest(EC_PARAM_INVALID, fmt.Sprintf("undefined log level '%s'", level), nil))
	}
	key, ok := subsystems[sub]
	if !ok {
		panic(EBadRequest(EC_PARAM_INVALID, fmt.Sprintf("undefined subsystem '%s'", sub), nil))
	}
	if logger, ok := LoggerMap[key]; ok {
		logger.SetLevel(lvl)
	}
	return nil, http.StatusNoContent
}
