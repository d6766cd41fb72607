// Package worker runs pipeline jobs off the caller's goroutine with strict
// back-pressure: a 1-slot input queue, so a trigger that arrives while a
// run is queued is dropped rather than piled up. The UI shell submits
// triggers here so it never blocks on network calls.
package worker

import (
	"context"
	"log"
	"sync"
)

// Job is one pipeline run. The context carries cancellation from Close and
// from the submitter.
type Job func(ctx context.Context)

// Pool is a fixed-size job runner with a 1-slot input queue.
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup
}

type job struct {
	ctx context.Context
	fn  Job
}

// New creates a pool. Size defaults to 1 when size<=0; pipeline slots
// serialize per-slot anyway, so one runner is the normal shape.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				if j.ctx.Err() != nil {
					log.Printf("Worker: dropping job, context already done: %v", j.ctx.Err())
					continue
				}
				j.fn(j.ctx)
			}
		}()
	}
}

// Submit enqueues a job if the single-slot queue is free. Returns false if
// dropped.
func (p *Pool) Submit(ctx context.Context, fn Job) bool {
	select {
	case p.jobs <- job{ctx: ctx, fn: fn}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
