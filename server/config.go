// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package server

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"blockwatch.cc/easkit/catalog"
	"blockwatch.cc/easkit/rpc"
	"blockwatch.cc/easkit/schema"
)

type Config struct {
	Catalog *catalog.Catalog // optional, enables /schemas registry routes
	Client  *rpc.Client      // optional, enables /accounts routes
	Schemas *schema.Cache    // created on demand
	Http    HttpConfig
}

func (c Config) ClampList(count uint) uint {
	def := c.Http.DefaultListCount
	max := c.Http.MaxListCount
	if count <= 0 {
		return def
	}
	if max > 0 && count > max {
		return max
	}
	return count
}

// HTTP Server Configuration
type HttpConfig struct {
	Addr              string        `json:"addr"`
	Port              int           `json:"port"`
	Scheme            string        `json:"scheme"`
	Host              string        `json:"host"`
	MaxWorkers        int           `json:"max_workers"`
	MaxQueue          int           `json:"max_queue"`
	ReadTimeout       time.Duration `json:"read_timeout"`
	HeaderTimeout     time.Duration `json:"header_timeout"`
	WriteTimeout      time.Duration `json:"write_timeout"`
	KeepAlive         time.Duration `json:"keep_alive"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout"`
	DefaultListCount  uint          `json:"default_list_count"`
	MaxListCount      uint          `json:"max_list_count"`
	SchemaCacheSize   int           `json:"schema_cache_size"`
	CorsEnable        bool          `json:"cors_enable"`
	CorsOrigin        string        `json:"cors_origin"`
	CorsAllowHeaders  string        `json:"cors_allow_headers"`
	CorsExposeHeaders string        `json:"cors_expose_headers"`
	CorsMethods       string        `json:"cors_methods"`
	CorsMaxAge        string        `json:"cors_maxage"`
	CorsCredentials   string        `json:"cors_credentials"`
	CacheEnable       bool          `json:"cache_enable"`
	CacheControl      string        `json:"cache_control"`
	CacheExpires      time.Duration `json:"cache_expires"`
	CacheMaxExpires   time.Duration `json:"cache_max"`
}

func (c HttpConfig) Address() string {
	return net.JoinHostPort(c.Addr, strconv.Itoa(c.Port))
}

func NewHttpConfig() HttpConfig {
	return HttpConfig{
		Addr:             "127.0.0.1",
		Port:             8000,
		Host:             "127.0.0.1",
		Scheme:           "http",
		MaxWorkers:       50,
		MaxQueue:         200,
		HeaderTimeout:    2 * time.Second,  // header timeout
		ReadTimeout:      5 * time.Second,  // header+body timeout
		WriteTimeout:     15 * time.Second, // response deadline
		KeepAlive:        90 * time.Second, // timeout for idle connections
		ShutdownTimeout:  15 * time.Second, // graceful shutdown deadline
		DefaultListCount: 100,
		MaxListCount:     1000,
		SchemaCacheSize:  schema.DefaultCacheSize,
		CacheExpires:     30 * time.Second,
		CacheMaxExpires:  24 * time.Hour,
	}
}

func (cfg *HttpConfig) Check() error {
	// pre-process config
	if u, err := url.Parse(cfg.Host); err == nil {
		if u.Host != "" {
			cfg.Host = u.Host
		}
		if u.Scheme != "" {
			cfg.Scheme = u.Scheme
		}
	}

	if cfg.Scheme != "https" && cfg.Scheme != "http" {
		cfg.Scheme = "http"
	}

	var hasError bool
	if cfg.Addr == "" {
		log.Errorf("Empty API server address")
		hasError = true
	}

	if cfg.Port == 0 {
		log.Errorf("Empty API server port")
		hasError = true
	}

	if cfg.MaxWorkers <= 0 {
		log.Errorf("Invalid API worker count %d", cfg.MaxWorkers)
		hasError = true
	}

	if cfg.MaxQueue < 0 {
		log.Errorf("Invalid API queue length %d", cfg.MaxQueue)
		hasError = true
	}

	if cfg.HeaderTimeout <= 0 {
		log.Errorf("Invalid API header timeout %v", cfg.HeaderTimeout)
		hasError = true
	}

	if cfg.ReadTimeout <= 0 {
		log.Errorf("Invalid API read timeout %v", cfg.ReadTimeout)
		hasError = true
	}

	if cfg.WriteTimeout <= 0 {
		log.Errorf("Invalid API write timeout %v", cfg.WriteTimeout)
		hasError = true
	}

	if cfg.KeepAlive <= 0 {
		log.Errorf("Invalid keep alive timeout %v", cfg.KeepAlive)
		hasError = true
	}

	if cfg.ShutdownTimeout <= 0 {
		log.Errorf("Invalid shutdown timeout %v", cfg.ShutdownTimeout)
		hasError = true
	}

	switch cfg.Addr {
	case "0.0.0.0":
		log.Warn("HTTP Server reachable on all interfaces (0.0.0.0)")
	case "127.0.0.1", "localhost":
		log.Warn("HTTP Server reachable on localhost only")
	}

	if cfg.Host == "" {
		log.Errorf("Empty http hostname")
		hasError = true
	}

	if hasError {
		return fmt.Errorf("HTTP Server configuration error.")
	}

	return nil
}
