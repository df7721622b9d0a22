// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package server

import (
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/echa/goprocinfo/linux"
)

// GetSysStat reads process figures from /proc and disk usage of dataDir.
// https://man7.org/linux/man-pages/man5/proc.5.html
func GetSysStat(dataDir string) (SysStat, error) {
	s := newSysStat()

	var si syscall.Sysinfo_t
	_ = syscall.Sysinfo(&si)
	s.TotalMem = uint64(si.Totalram) * uint64(si.Unit)

	p := filepath.Join("/proc", strconv.Itoa(os.Getpid()))
	if ps, err := linux.ReadProcessStatus(filepath.Join(p, "status")); err == nil {
		s.NumThreads = ps.Threads
		s.VmPeak = ps.VmPeak * 1024
		s.VmSize = ps.VmSize * 1024
		s.VmRss = ps.VmRSS * 1024
	}

	if dataDir != "" {
		if d, err := linux.ReadDisk(dataDir); err == nil {
			s.DiskSize = d.All
			s.DiskUsed = d.Used
			s.DiskFree = d.Free
		}
	}
	return s, nil
}
