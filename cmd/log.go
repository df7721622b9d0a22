// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package cmd

import (
	"os"

	"blockwatch.cc/easkit/catalog"
	"blockwatch.cc/easkit/identity"
	"blockwatch.cc/easkit/rpc"
	"blockwatch.cc/easkit/schema"
	"blockwatch.cc/easkit/server"
	"github.com/echa/config"
	logpkg "github.com/echa/log"
)

var (
	log     = logpkg.NewLogger("MAIN") // main program
	idenLog = logpkg.NewLogger("IDEN") // keys and addresses
	schmLog = logpkg.NewLogger("SCHM") // schema pipeline
	dataLog = logpkg.NewLogger("DATA") // schema catalog
	jrpcLog = logpkg.NewLogger("JRPC") // json rpc client
	srvrLog = logpkg.NewLogger("SRVR") // api server
)

// Initialize package-global logger variables.
func init() {
	// assign default loggers
	identity.UseLogger(idenLog)
	schema.UseLogger(schmLog)
	catalog.UseLogger(dataLog)
	rpc.UseLogger(jrpcLog)
	server.UseLogger(srvrLog)
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]logpkg.Logger{
	"MAIN": log,
	"IDEN": idenLog,
	"SCHM": schmLog,
	"DATA": dataLog,
	"JRPC": jrpcLog,
	"SRVR": srvrLog,
}

func initLogging() {
	cfg := logpkg.NewConfig()
	cfg.Level = logpkg.ParseLevel(config.GetString("logging.level"))
	cfg.Flags = logpkg.ParseFlags(config.GetString("logging.flags"))
	cfg.Backend = config.GetString("logging.backend")
	cfg.Filename = config.GetString("logging.filename")
	cfg.Addr = config.GetString("logging.syslog.address")
	cfg.Facility = config.GetString("logging.syslog.facility")
	cfg.Ident = config.GetString("logging.syslog.ident")
	cfg.FileMode = os.FileMode(config.GetInt("logging.filemode"))
	logpkg.Init(cfg)

	log = logpkg.NewLogger("MAIN") // command level

	// create loggers with configured backend
	idenLog = logpkg.NewLogger("IDEN")
	idenLog.SetLevel(logpkg.ParseLevel(config.GetString("logging.identity")))
	schmLog = logpkg.NewLogger("SCHM")
	schmLog.SetLevel(logpkg.ParseLevel(config.GetString("logging.schema")))
	dataLog = logpkg.NewLogger("DATA")
	dataLog.SetLevel(logpkg.ParseLevel(config.GetString("logging.database")))
	jrpcLog = logpkg.NewLogger("JRPC")
	jrpcLog.SetLevel(logpkg.ParseLevel(config.GetString("logging.rpc")))
	srvrLog = logpkg.NewLogger("SRVR")
	srvrLog.SetLevel(logpkg.ParseLevel(config.GetString("logging.server")))

	// assign default loggers
	identity.UseLogger(idenLog)
	schema.UseLogger(schmLog)
	catalog.UseLogger(dataLog)
	rpc.UseLogger(jrpcLog)
	server.UseLogger(srvrLog)

	// store loggers in map
	subsystemLoggers = map[string]logpkg.Logger{
		"MAIN": log,
		"IDEN": idenLog,
		"SCHM": schmLog,
		"DATA": dataLog,
		"JRPC": jrpcLog,
		"SRVR": srvrLog,
	}

	// export to server for http control
	server.LoggerMap = subsystemLoggers
}

// setLogLevel sets the logging level for provided subsystem.  Invalid
// subsystems are ignored.
func setLogLevel(subsystemID string, level logpkg.Level) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}
	logger.SetLevel(level)
}

// setLogLevels sets the log level for all subsystem loggers to the passed
// level.
func setLogLevels(level logpkg.Level) {
	for subsystemID := range subsystemLoggers {
		setLogLevel(subsystemID, level)
	}
}
