// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package cmd

import (
	"time"

	"blockwatch.cc/easkit/identity"
	"blockwatch.cc/easkit/schema"
	"github.com/echa/config"
)

func init() {
	// schema catalog
	config.SetDefault("catalog.path", "./easkit.db")
	config.SetDefault("catalog.nosync", false)
	config.SetDefault("catalog.nogrowsync", true)
	config.SetDefault("catalog.timeout", time.Second)

	// identity
	config.SetDefault("identity.path", identity.DefaultPath)

	// schema pipeline
	config.SetDefault("schema.cache_size", schema.DefaultCacheSize)

	// HTTP API server
	config.SetDefault("server.addr", "127.0.0.1")
	config.SetDefault("server.port", 8000)
	config.SetDefault("server.scheme", "http")
	config.SetDefault("server.host", "127.0.0.1")
	config.SetDefault("server.workers", 50)
	config.SetDefault("server.queue", 200)
	config.SetDefault("server.read_timeout", 5*time.Second)
	config.SetDefault("server.header_timeout", 2*time.Second)
	config.SetDefault("server.write_timeout", 15*time.Second)
	config.SetDefault("server.keepalive", 90*time.Second)
	config.SetDefault("server.shutdown_timeout", 15*time.Second)
	config.SetDefault("server.max_list_count", 1000)
	config.SetDefault("server.default_list_count", 100)
	config.SetDefault("server.cors_enable", false)
	config.SetDefault("server.cors_origin", "*")
	config.SetDefault("server.cors_allow_headers", "Authorization, Accept, Content-Type, X-Api-Key, X-Requested-With")
	config.SetDefault("server.cors_expose_headers", "Date, X-Runtime, X-Request-Id, X-Api-Version")
	config.SetDefault("server.cors_methods", "GET, PUT, POST, OPTIONS")
	config.SetDefault("server.cors_maxage", "86400")
	config.SetDefault("server.cors_credentials", "true")
	config.SetDefault("server.cache_enable", false)
	config.SetDefault("server.cache_control", "public")
	config.SetDefault("server.cache_expires", 30*time.Second)
	config.SetDefault("server.cache_max", 24*time.Hour)

	// logging
	config.SetDefault("logging.backend", "stderr")
	config.SetDefault("logging.flags", "date,time,micro,utc")
	config.SetDefault("logging.level", "info")
	config.SetDefault("logging.identity", "info")
	config.SetDefault("logging.schema", "info")
	config.SetDefault("logging.database", "info")
	config.SetDefault("logging.rpc", "info")
	config.SetDefault("logging.server", "info")

	// JSON-RPC client
	config.SetDefault("rpc.url", "")
	config.SetDefault("rpc.proxy", "")
	config.SetDefault("rpc.dial_timeout", 10*time.Second)
	config.SetDefault("rpc.keepalive", 30*time.Minute)
	config.SetDefault("rpc.idle_timeout", 30*time.Minute)
	config.SetDefault("rpc.response_timeout", 60*time.Second)
	config.SetDefault("rpc.continue_timeout", 60*time.Second)
	config.SetDefault("rpc.idle_conns", 16)
	config.SetDefault("rpc.call_timeout", 30*time.Second)
}
