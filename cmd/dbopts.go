// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package cmd

import (
	"blockwatch.cc/easkit/catalog"
	"github.com/echa/config"
	bolt "go.etcd.io/bbolt"
)

// DBOpts returns catalog database options from config.
func DBOpts(readOnly bool) *bolt.Options {
	opts := catalog.DefaultOptions
	// open timeout when file is locked
	opts.Timeout = config.GetDuration("catalog.timeout")
	// skip fsync+alloc on grow; don't use with ext3/4, good in Docker + XFS
	opts.NoGrowSync = config.GetBool("catalog.nogrowsync")
	opts.ReadOnly = readOnly
	if !readOnly {
		// skip fsync (DANGEROUS on crashes)
		opts.NoSync = config.GetBool("catalog.nosync")
	}
	return &opts
}

func openCatalog(readOnly bool) (*catalog.Catalog, error) {
	pathname := config.GetString("catalog.path")
	log.Debugf("Using schema catalog %s", pathname)
	if config.GetBool("catalog.nosync") && !readOnly {
		log.Warnf("Enabled NOSYNC mode. Catalog will not be safe on crashes!")
	}
	return catalog.OpenWithOptions(pathname, DBOpts(readOnly))
}
