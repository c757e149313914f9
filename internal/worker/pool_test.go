package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// mockResult implements Result
type mockResult struct {
	id  int
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

// mockJob implements Job
type mockJob struct {
	id        int
	duration  time.Duration
	shouldErr bool
	executed  *int32 // atomic counter
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{id: j.id, err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{id: j.id, err: errors.New("job error")}
	}
	return &mockResult{id: j.id}
}

func TestNewPool(t *testing.T) {
	p1 := NewPool(context.Background(), 5)
	if p1.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p1.workers)
	}

	p2 := NewPool(context.Background(), 0)
	if p2.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p2.workers)
	}

	p3 := NewPool(context.Background(), -1)
	if p3.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p3.workers)
	}
}

func TestPool_Execution(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	var executed int32
	count := 25 // more than the queue and result buffers together

	for i := 0; i < count; i++ {
		pool.Submit(&mockJob{id: i, executed: &executed})
	}

	results := pool.Wait()

	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}

	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
}

func TestPool_PreservesOrder(t *testing.T) {
	pool := NewPool(context.Background(), 4)
	pool.Start()

	count := 12
	for i := 0; i < count; i++ {
		// Earlier jobs sleep longer so they finish last
		pool.Submit(&mockJob{id: i, duration: time.Duration(count-i) * time.Millisecond})
	}

	results := pool.Wait()
	for i, res := range results {
		if got := res.(*mockResult).id; got != i {
			t.Errorf("expected result %d at position %d, got %d", i, i, got)
		}
	}
}

// concurrencyJob tracks max concurrent executions
type concurrencyJob struct {
	start    func()
	end      func()
	duration time.Duration
}

func (j *concurrencyJob) Execute(ctx context.Context) Result {
	if j.start != nil {
		j.start()
	}
	time.Sleep(j.duration)
	if j.end != nil {
		j.end()
	}
	return &mockResult{}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 10
	pool := NewPool(context.Background(), workers)
	pool.Start()

	var current int32
	var maxConcurrent int32
	var completed int32
	var mu sync.Mutex

	totalJobs := 50

	for i := 0; i < totalJobs; i++ {
		pool.Submit(&concurrencyJob{
			start: func() {
				curr := atomic.AddInt32(&current, 1)
				mu.Lock()
				if curr > maxConcurrent {
					maxConcurrent = curr
				}
				mu.Unlock()
			},
			end: func() {
				atomic.AddInt32(&current, -1)
				atomic.AddInt32(&completed, 1)
			},
			duration: 10 * time.Millisecond,
		})
	}

	pool.Wait()

	if atomic.LoadInt32(&completed) != int32(totalJobs) {
		t.Errorf("expected %d completed jobs, got %d", totalJobs, completed)
	}

	mu.Lock()
	max := maxConcurrent
	mu.Unlock()

	if max > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", max, workers)
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	pool.Submit(&mockJob{shouldErr: true})
	pool.Submit(&mockJob{shouldErr: false})

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if results[0].GetError() == nil {
		t.Error("expected first result to carry the job error")
	}
	if results[1].GetError() != nil {
		t.Errorf("expected second result to succeed, got %v", results[1].GetError())
	}
}

func TestPool_Cancel(t *testing.T) {
	pool := NewPool(context.Background(), 1)
	pool.Start()

	pool.Submit(&mockJob{duration: time.Second})
	pool.Submit(&mockJob{duration: time.Second})
	pool.Cancel()

	done := make(chan []Result)
	go func() { done <- pool.Wait() }()

	select {
	case results := <-done:
		if len(results) != 2 {
			t.Fatalf("expected every job to report, got %d", len(results))
		}
		for _, res := range results {
			if !errors.Is(res.GetError(), context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", res.GetError())
			}
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Wait did not return after Cancel")
	}
}

func TestMap_OrderAndBound(t *testing.T) {
	var current, peak int32
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}

	out := Map(context.Background(), 3, items, func(ctx context.Context, n int) int {
		c := atomic.AddInt32(&current, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if c <= p || atomic.CompareAndSwapInt32(&peak, p, c) {
				break
			}
		}
		time.Sleep(time.Duration(10-n) * time.Millisecond)
		atomic.AddInt32(&current, -1)
		return n * n
	})

	for i, n := range items {
		if out[i] != n*n {
			t.Errorf("expected %d at %d, got %d", n*n, i, out[i])
		}
	}
	if peak > 3 {
		t.Errorf("expected at most 3 concurrent calls, got %d", peak)
	}
}

func TestMap_Empty(t *testing.T) {
	out := Map(context.Background(), 4, []string{}, func(ctx context.Context, s string) int { return len(s) })
	if len(out) != 0 {
		t.Errorf("expected empty output, got %v", out)
	}
}
