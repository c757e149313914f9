package worker

import (
	"context"
	"sort"
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

type queuedJob struct {
	index int
	job   Job
}

type indexedResult struct {
	index  int
	result Result
}

// Pool runs jobs on a fixed number of workers and returns results
// in submission order. Jobs always run; a canceled context is passed
// through for them to observe.
type Pool struct {
	workers   int
	jobQueue  chan queuedJob
	results   chan indexedResult
	collected []indexedResult
	collectWG sync.WaitGroup
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc

	mu        sync.Mutex
	submitted int
	closeOnce sync.Once
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:  workers,
		jobQueue: make(chan queuedJob, workers*2),
		results:  make(chan indexedResult, workers*2),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the workers and the result collector
func (p *Pool) Start() {
	p.collectWG.Add(1)
	go func() {
		defer p.collectWG.Done()
		for r := range p.results {
			p.collected = append(p.collected, r)
		}
	}()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for q := range p.jobQueue {
		p.results <- indexedResult{index: q.index, result: q.job.Execute(p.ctx)}
	}
}

// Submit queues a job. It blocks while the queue is full.
func (p *Pool) Submit(job Job) {
	p.mu.Lock()
	index := p.submitted
	p.submitted++
	p.mu.Unlock()

	p.jobQueue <- queuedJob{index: index, job: job}
}

// Wait waits for all submitted jobs and returns their results in submission order
func (p *Pool) Wait() []Result {
	p.closeOnce.Do(func() { close(p.jobQueue) })
	p.wg.Wait()
	close(p.results)
	p.collectWG.Wait()
	p.cancel()

	sort.Slice(p.collected, func(i, j int) bool {
		return p.collected[i].index < p.collected[j].index
	})

	results := make([]Result, len(p.collected))
	for i, r := range p.collected {
		results[i] = r.result
	}
	return results
}

// Cancel cancels the context passed to running and queued jobs
func (p *Pool) Cancel() {
	p.cancel()
}

type valueResult[R any] struct {
	value R
}

func (valueResult[R]) GetError() error {
	return nil
}

type funcJob[T, R any] struct {
	item T
	fn   func(context.Context, T) R
}

func (j funcJob[T, R]) Execute(ctx context.Context) Result {
	return valueResult[R]{value: j.fn(ctx, j.item)}
}

// Map applies fn to every item on at most workers goroutines.
// The output has the same length and order as items.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) R) []R {
	out := make([]R, len(items))
	if len(items) == 0 {
		return out
	}

	if workers > len(items) {
		workers = len(items)
	}

	pool := NewPool(ctx, workers)
	pool.Start()
	for _, item := range items {
		pool.Submit(funcJob[T, R]{item: item, fn: fn})
	}

	for i, r := range pool.Wait() {
		out[i] = r.(valueResult[R]).value
	}
	return out
}
