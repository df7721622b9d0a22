// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package cmd

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"blockwatch.cc/easkit/catalog"
	"blockwatch.cc/easkit/rpc"
	"blockwatch.cc/easkit/schema"
	"blockwatch.cc/easkit/server"
	"github.com/echa/config"
)

var (
	norpc     bool
	nocatalog bool
	readonly  bool
)

func init() {
	runCmd.Flags().BoolVar(&norpc, "norpc", false, "disable RPC client")
	runCmd.Flags().BoolVar(&nocatalog, "nocatalog", false, "disable schema catalog")
	runCmd.Flags().BoolVar(&readonly, "readonly", false, "open schema catalog read-only")

	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run as service",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServer(args); err != nil {
			log.Fatalf("Fatal: %v", err)
		}
	},
}

func runServer(args []string) error {
	log.Infof("%s %s %s -- %s", ORG_NAME, APP_NAME, VERSION, GITCOMMIT)
	log.Infof("(c) Copyright 2024 -- %s", COMPANY_NAME)
	log.Infof("Starting %s on %d cores", UserAgent, maxcpu)
	log.Infof("Go version %s", runtime.Version())

	// set user agent in library client
	server.UserAgent = UserAgent
	server.ApiVersion = API_VERSION

	// open schema catalog when requested
	var (
		cat *catalog.Catalog
		err error
	)
	if !nocatalog {
		cat, err = openCatalog(readonly)
		if err != nil {
			return err
		}
		defer cat.Close()
		log.Infof("Using schema catalog %s", cat.Path())
	}

	// open RPC client when requested
	var rpcclient *rpc.Client
	if !norpc {
		rpcclient, err = newRPCClient()
		if err != nil {
			return err
		}
		if rpcclient == nil {
			log.Warn("No RPC url configured, balance queries are disabled.")
		}
	}

	// setup HTTP server
	srv, err := server.New(&server.Config{
		Catalog: cat,
		Client:  rpcclient,
		Schemas: schema.NewCache(config.GetInt("schema.cache_size")),
		Http: server.HttpConfig{
			Addr:              config.GetString("server.addr"),
			Port:              config.GetInt("server.port"),
			Scheme:            config.GetString("server.scheme"),
			Host:              config.GetString("server.host"),
			MaxWorkers:        config.GetInt("server.workers"),
			MaxQueue:          config.GetInt("server.queue"),
			ReadTimeout:       config.GetDuration("server.read_timeout"),
			HeaderTimeout:     config.GetDuration("server.header_timeout"),
			WriteTimeout:      config.GetDuration("server.write_timeout"),
			KeepAlive:         config.GetDuration("server.keepalive"),
			ShutdownTimeout:   config.GetDuration("server.shutdown_timeout"),
			DefaultListCount:  uint(config.GetInt("server.default_list_count")),
			MaxListCount:      uint(config.GetInt("server.max_list_count")),
			SchemaCacheSize:   config.GetInt("schema.cache_size"),
			CorsEnable:        config.GetBool("server.cors_enable"),
			CorsOrigin:        config.GetString("server.cors_origin"),
			CorsAllowHeaders:  config.GetString("server.cors_allow_headers"),
			CorsExposeHeaders: config.GetString("server.cors_expose_headers"),
			CorsMethods:       config.GetString("server.cors_methods"),
			CorsMaxAge:        config.GetString("server.cors_maxage"),
			CorsCredentials:   config.GetString("server.cors_credentials"),
			CacheEnable:       config.GetBool("server.cache_enable"),
			CacheControl:      config.GetString("server.cache_control"),
			CacheExpires:      config.GetDuration("server.cache_expires"),
			CacheMaxExpires:   config.GetDuration("server.cache_max"),
		},
	})
	if err != nil {
		return err
	}
	srv.Start()
	defer srv.Stop()

	c := make(chan os.Signal, 1)
	signal.Notify(c,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	<-c
	return nil
}
