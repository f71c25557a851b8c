package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrQueueFull is returned when a job cannot be enqueued within the
// dispatch timeout.
var ErrQueueFull = errors.New("dispatch queue full")

// Dispatcher hands jobs to a pool of worker goroutines. Dispatch never
// blocks the caller beyond a short timeout; the triggering request returns
// immediately while the job runs out-of-band.
type Dispatcher struct {
	worker     *Worker
	jobs       chan Job
	timeout    time.Duration
	jobTimeout time.Duration
	wg         sync.WaitGroup
	once       sync.Once
}

// NewDispatcher creates a dispatcher with the given queue size, dispatch
// timeout, and per-job execution timeout.
func NewDispatcher(worker *Worker, queueSize int, timeout, jobTimeout time.Duration) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 16
	}
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	if jobTimeout <= 0 {
		jobTimeout = 2 * time.Minute
	}
	return &Dispatcher{
		worker:     worker,
		jobs:       make(chan Job, queueSize),
		timeout:    timeout,
		jobTimeout: jobTimeout,
	}
}

// Start launches n worker goroutines.
func (d *Dispatcher) Start(n int) {
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for job := range d.jobs {
				ctx, cancel := context.WithTimeout(context.Background(), d.jobTimeout)
				d.worker.Run(ctx, job)
				cancel()
			}
		}()
	}
}

// Dispatch enqueues a job, waiting at most the dispatch timeout.
func (d *Dispatcher) Dispatch(job Job) error {
	select {
	case d.jobs <- job:
		return nil
	case <-time.After(d.timeout):
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (d *Dispatcher) Stop() {
	d.once.Do(func() { close(d.jobs) })
	d.wg.Wait()
}
