// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package server

import (
	"sync"
)

type Worker struct {
	WorkerPool chan chan *Context
	JobChannel chan *Context
	quit       chan struct{}
}

func NewWorker(workerPool chan chan *Context, quit chan struct{}) Worker {
	return Worker{
		WorkerPool: workerPool,
		JobChannel: make(chan *Context),
		quit:       quit,
	}
}

func (w Worker) Start() {
	go func() {
		for {
			// register the current worker into the worker queue.
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-w.quit:
				return
			}

			select {
			case req := <-w.JobChannel:
				// check if the context is expired
				select {
				case <-req.Context.Done():
					req.handleError(req.Context.Err())
					req.sendResponse()
				default:
					req.serve()
					req.sendResponse()
				}
				req.done <- nil

			case <-w.quit:
				return
			}
		}
	}()
}

// Dispatcher feeds queued requests to a fixed pool of workers.
type Dispatcher struct {
	// A pool of workers channels that are registered with the dispatcher
	pool       chan chan *Context
	jobs       chan *Context
	quit       chan struct{}
	maxWorkers int
	maxQueue   int

	mu      sync.Mutex
	stopped bool
}

func NewDispatcher(maxWorkers int, maxQueue int) *Dispatcher {
	return &Dispatcher{
		pool:       make(chan chan *Context, maxWorkers),
		jobs:       make(chan *Context, maxQueue),
		quit:       make(chan struct{}),
		maxWorkers: maxWorkers,
		maxQueue:   maxQueue,
	}
}

func (d *Dispatcher) Run() {
	// starting n number of workers
	for i := 0; i < d.maxWorkers; i++ {
		worker := NewWorker(d.pool, d.quit)
		worker.Start()
	}

	go d.dispatch()
}

// Schedule queues a request without blocking. It returns false when the
// queue is full or the dispatcher is stopped.
func (d *Dispatcher) Schedule(api *Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return false
	}
	select {
	case d.jobs <- api:
		return true
	default:
		return false
	}
}

func (d *Dispatcher) IsStopped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}

// Stop terminates all workers and answers requests still waiting in the
// queue with 503. Calling Stop more than once is a no-op.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.quit)
	d.mu.Unlock()

	for {
		select {
		case api := <-d.jobs:
			reject(api)
		default:
			return
		}
	}
}

func (d *Dispatcher) dispatch() {
	for {
		select {
		case api := <-d.jobs:
			// block until a worker is idle
			select {
			case workerChannel := <-d.pool:
				select {
				case workerChannel <- api:
				case <-d.quit:
					reject(api)
					return
				}
			case <-d.quit:
				reject(api)
				return
			}
		case <-d.quit:
			return
		}
	}
}

func reject(api *Context) {
	api.handleError(EServiceUnavailable(EC_SERVER, "server shutting down", nil))
	api.sendResponse()
	api.done <- nil
}
