// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package server

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// SysStat is a snapshot of process and host resource usage. Sizes are in
// bytes. Fields the platform cannot report stay zero.
type SysStat struct {
	Hostname      string    `json:"hostname"`
	ContainerName string    `json:"container_name"`
	Timestamp     time.Time `json:"timestamp"`

	NumCpu       int    `json:"num_cpu"`
	NumGoroutine int    `json:"num_goroutine"`
	NumThreads   uint64 `json:"num_threads"`
	TotalMem     uint64 `json:"total_mem"`

	VmPeak uint64 `json:"vm_peak"` // Peak virtual memory size.
	VmSize uint64 `json:"vm_size"` // Virtual memory size.
	VmRss  uint64 `json:"vm_rss"`  // Resident set size.

	MemMallocs    uint64 `json:"mem_mallocs"`
	MemFrees      uint64 `json:"mem_frees"`
	MemHeapAlloc  uint64 `json:"mem_heap"`
	MemStackInuse uint64 `json:"mem_stack"`

	DiskSize uint64 `json:"disk_size"`
	DiskUsed uint64 `json:"disk_used"`
	DiskFree uint64 `json:"disk_free"`
}

func newSysStat() SysStat {
	s := SysStat{
		Timestamp: time.Now().UTC(),
	}
	host, _ := os.Hostname()
	s.Hostname = host
	if n := os.Getenv("HOST_HOSTNAME"); n != "" {
		s.ContainerName = host
		u, _ := url.Parse(n)
		s.Hostname = u.Hostname()
	}
	s.NumCpu = runtime.NumCPU()
	s.NumGoroutine = runtime.NumGoroutine()

	memStats := &runtime.MemStats{}
	runtime.ReadMemStats(memStats)
	s.MemMallocs = memStats.Mallocs
	s.MemFrees = memStats.Frees
	s.MemHeapAlloc = memStats.HeapAlloc
	s.MemStackInuse = memStats.StackInuse
	return s
}

func GetSysStats(ctx *Context) (interface{}, int) {
	var dataDir string
	if ctx.Catalog != nil {
		dataDir = filepath.Dir(ctx.Catalog.Path())
	}
	s, err := GetSysStat(dataDir)
	if err != nil {
		panic(EInternal(EC_SERVER, "reading system stats failed", err))
	}
	return s, http.StatusOK
}
