// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package server

import (
	"net/http"
	"strconv"
	"time"
)

// PerformanceCounter measures handler runtime for the X-Runtime header.
type PerformanceCounter struct {
	start   time.Time
	Runtime time.Duration
}

func NewPerformanceCounter(now time.Time) *PerformanceCounter {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return &PerformanceCounter{start: now}
}

func (p *PerformanceCounter) EndCall() {
	if p.Runtime == 0 {
		p.Runtime = time.Since(p.start)
	}
}

// WriteResponseHeader sets the runtime header in seconds.
func (p *PerformanceCounter) WriteResponseHeader(w http.ResponseWriter) {
	p.EndCall()
	w.Header().Set(headerRuntime, strconv.FormatFloat(p.Runtime.Seconds(), 'f', 6, 64))
}
