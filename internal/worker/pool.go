// Package worker runs independent jobs concurrently and throttles outbound calls.
package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type queued struct {
	seq int
	job Job
}

type done struct {
	seq    int
	result Result
}

// Pool manages a pool of workers that execute jobs concurrently.
// Results are drained as they arrive, so any number of jobs may be
// submitted before Wait, and Wait returns them in submission order.
type Pool struct {
	workers    int
	jobQueue   chan queued
	results    chan done
	wg         sync.WaitGroup
	collected  chan []Result
	ctx        context.Context
	cancelFunc context.CancelFunc

	mu sync.Mutex

	// sendMu is held for reading while a job is handed to the queue so
	// closing the queue never races a send
	sendMu    sync.RWMutex
	submitted int
	closed    bool
	closeOnce sync.Once
	waitOnce  sync.Once
	final     []Result
	onResult  func(Result)
}

// NewPool creates a new worker pool with the specified number of workers.
// Jobs see a context derived from parent; Shutdown cancels it.
func NewPool(parent context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(parent)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan queued, workers*2),
		results:    make(chan done, workers*2),
		collected:  make(chan []Result, 1),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// OnResult registers a callback invoked from the collector goroutine for
// each finished job, in completion order. Must be called before Start.
func (p *Pool) OnResult(fn func(Result)) {
	p.onResult = fn
}

// Start starts the workers and the result collector
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go p.collect()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case item, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.results <- done{seq: item.seq, result: item.job.Execute(p.ctx)}
		}
	}
}

func (p *Pool) collect() {
	var finished []done
	for d := range p.results {
		if p.onResult != nil {
			p.onResult(d.result)
		}
		finished = append(finished, d)
	}

	ordered := make([]Result, p.submittedCount())
	for _, d := range finished {
		ordered[d.seq] = d.result
	}
	p.collected <- compact(ordered)
}

// Submit queues a job. It blocks while the queue is full and returns
// false if the pool was shut down or already waited on.
func (p *Pool) Submit(job Job) bool {
	p.sendMu.RLock()
	defer p.sendMu.RUnlock()

	if p.closed {
		return false
	}

	p.mu.Lock()
	seq := p.submitted
	p.submitted++
	p.mu.Unlock()

	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- queued{seq: seq, job: job}:
		return true
	}
}

// Wait waits for all submitted jobs and returns their results in submission order.
// Jobs skipped because of Shutdown have no result.
func (p *Pool) Wait() []Result {
	p.waitOnce.Do(func() {
		p.closeQueue()
		p.wg.Wait()
		close(p.results)
		p.final = <-p.collected
		p.cancelFunc()
	})
	return p.final
}

// Shutdown cancels running jobs and stops accepting new ones. Call Wait to
// release the collector.
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.closeQueue()
}

func (p *Pool) closeQueue() {
	p.closeOnce.Do(func() {
		p.sendMu.Lock()
		defer p.sendMu.Unlock()
		p.closed = true
		close(p.jobQueue)
	})
}

func (p *Pool) submittedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitted
}

func compact(results []Result) []Result {
	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
