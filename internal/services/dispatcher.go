package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/you/hrplusauth/internal/logging"
)

// DispatcherConfig controls background job buffering
type DispatcherConfig struct {
	BufferSize int
	Workers    int
	JobTimeout time.Duration
}

// Job is a unit of detached work. Its error is logged and otherwise ignored.
type Job struct {
	Name      string
	RequestID string
	Run       func(ctx context.Context) error
}

// Dispatcher runs side effects off the request path. Submit never blocks:
// when the buffer is full the job is dropped and counted.
type Dispatcher struct {
	cfg       DispatcherConfig
	log       *slog.Logger
	ch        chan Job
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	failed    atomic.Uint64
	closeOnce sync.Once

	// mu is held for reading across a send so Close cannot stop the
	// workers while a job is on its way into ch
	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts the worker goroutines
func NewDispatcher(cfg DispatcherConfig, log *slog.Logger) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Second
	}

	d := &Dispatcher{
		cfg:  cfg,
		log:  log.With("component", "dispatcher"),
		ch:   make(chan Job, cfg.BufferSize),
		done: make(chan struct{}),
	}

	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.run()
	}

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case job := <-d.ch:
			d.execute(job)
		case <-d.done:
			for {
				select {
				case job := <-d.ch:
					d.execute(job)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) execute(job Job) {
	ctx := context.Background()
	if job.RequestID != "" {
		ctx = logging.WithRequestID(ctx, job.RequestID)
	}
	ctx, cancel := context.WithTimeout(ctx, d.cfg.JobTimeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return job.Run(ctx)
	}()
	if err != nil {
		d.failed.Add(1)
		d.log.WarnContext(ctx, "background job failed", "job", job.Name, "error", err)
	}
}

// Submit queues job and reports whether it was accepted
func (d *Dispatcher) Submit(job Job) bool {
	if d == nil {
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}

	select {
	case d.ch <- job:
		return true
	default:
		d.dropped.Add(1)
		d.log.Warn("background queue full, job dropped", "job", job.Name)
		return false
	}
}

// Close stops accepting jobs, drains the queue and waits for the workers
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.done)
		d.mu.Unlock()
		d.wg.Wait()
	})
}

// Dropped returns the number of jobs rejected because the queue was full
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Failed returns the number of jobs that returned an error
func (d *Dispatcher) Failed() uint64 {
	if d == nil {
		return 0
	}
	return d.failed.Load()
}
