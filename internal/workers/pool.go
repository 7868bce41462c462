package workers

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/semaphore"

	"playlist-player/internal/logging"
	"playlist-player/internal/metrics"
)

type job struct {
	seq    uint64
	cancel context.CancelFunc
}

// Gate holds jobs back before they take a slot. Wait returns false when
// the job should be dropped.
type Gate interface {
	Wait(ctx context.Context) bool
}

// Pool runs keyed jobs with bounded concurrency.
type Pool struct {
	ctx    context.Context
	cancel context.CancelFunc
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	gate   Gate

	mu     sync.Mutex
	jobs   map[string][]job
	seq    uint64
	closed bool
}

// NewPool creates a pool running at most size jobs at once.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		ctx:    ctx,
		cancel: cancel,
		sem:    semaphore.NewWeighted(int64(size)),
		jobs:   make(map[string][]job),
	}
}

// SetGate installs g in front of the semaphore. Call before the first Submit.
func (p *Pool) SetGate(g Gate) {
	p.gate = g
}

// Submit schedules fn for key without blocking. It reports false once the
// pool is closed.
func (p *Pool) Submit(key string, fn func(ctx context.Context)) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(p.ctx)
	p.seq++
	seq := p.seq
	p.jobs[key] = append(p.jobs[key], job{seq: seq, cancel: cancel})
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		defer p.done(key, seq)

		if p.gate != nil && !p.gate.Wait(ctx) {
			logging.Debug("Workers: job for %s dropped while paused", key)
			return
		}
		if err := p.sem.Acquire(ctx, 1); err != nil {
			logging.Debug("Workers: job for %s cancelled before start", key)
			return
		}
		defer p.sem.Release(1)
		if ctx.Err() != nil {
			logging.Debug("Workers: job for %s cancelled before start", key)
			return
		}

		metrics.TasksInFlight.Inc()
		defer metrics.TasksInFlight.Dec()
		fn(ctx)
	}()
	return true
}

// Cancel cancels every pending and running job for key.
func (p *Pool) Cancel(key string) {
	p.mu.Lock()
	jobs := p.jobs[key]
	delete(p.jobs, key)
	p.mu.Unlock()

	for _, j := range jobs {
		j.cancel()
	}
	if len(jobs) > 0 {
		logging.Debug("Workers: cancelled %d job(s) for %s", len(jobs), key)
	}
}

// Pending returns the number of unfinished jobs for key.
func (p *Pool) Pending(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs[key])
}

// Wait blocks until every submitted job has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Close cancels all jobs, rejects new ones and waits for running jobs.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

func (p *Pool) done(key string, seq uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	jobs := p.jobs[key]
	i := slices.IndexFunc(jobs, func(j job) bool { return j.seq == seq })
	if i < 0 {
		return
	}
	jobs[i].cancel()
	jobs = slices.Delete(jobs, i, i+1)
	if len(jobs) == 0 {
		delete(p.jobs, key)
	} else {
		p.jobs[key] = jobs
	}
}
