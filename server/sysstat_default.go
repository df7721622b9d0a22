// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc
//go:build !linux
// +build !linux

package server

// GetSysStat reports Go runtime figures only on this platform.
func GetSysStat(dataDir string) (SysStat, error) {
	return newSysStat(), nil
}
