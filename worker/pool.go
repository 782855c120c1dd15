// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worker

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Factory creates the worker for slot id of a pool.
type Factory func(id int) Worker

// Report summarizes one Monitor pass.
type Report struct {
	Live      int // Workers that were running
	Dead      int // Workers found terminated
	Recovered int // Dead workers restarted successfully
	Failed    int // Dead workers that could not be restarted
}

// Pool starts a fixed number of workers and restarts the dead ones.
type Pool struct {
	size    int
	factory Factory
	opts    options

	mu      sync.Mutex
	workers []Worker
	started bool
}

// NewPool returns a stopped pool of size workers. A size below 1 becomes 1.
// Only WithLogger applies to pools.
func NewPool(size int, factory Factory, opts ...Option) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		size:    size,
		factory: factory,
		opts:    buildOptions(opts),
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Start creates and starts every worker. If any worker fails to start,
// the workers already started are stopped and the error is returned.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrPoolStarted
	}
	p.workers = make([]Worker, p.size)
	for i := range p.workers {
		p.workers[i] = p.factory(i)
	}
	for i, w := range p.workers {
		if err := w.Start(); err != nil {
			p.stopLocked()
			return fmt.Errorf("worker: start %d: %w", i, err)
		}
	}
	p.started = true
	p.opts.logger.Info("pool start", "size", p.size)
	return nil
}

// Stop stops every worker. It is idempotent.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Pool) stopLocked() {
	for _, w := range p.workers {
		w.Stop()
	}
	p.workers = nil
	if p.started {
		p.started = false
		p.opts.logger.Info("pool stop", "size", p.size)
	}
}

// Monitor restarts every terminated worker.
//
// If any restart fails, the whole pool is stopped and the returned error
// wraps ErrRecoveryFailed. Returns ErrPoolNotStarted on a stopped pool.
func (p *Pool) Monitor() (Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return Report{}, ErrPoolNotStarted
	}

	var r Report
	for _, w := range p.workers {
		if !w.IsTerminated() {
			continue
		}
		r.Dead++
		w.Stop()
		if err := w.Start(); err != nil {
			r.Failed++
			p.opts.logger.Error("worker restart", "err", err)
			continue
		}
		r.Recovered++
	}
	r.Live = p.size - r.Dead

	p.opts.logger.Info("pool monitor",
		"live", r.Live, "dead", r.Dead,
		"recovered", r.Recovered, "failed", r.Failed)

	if r.Failed > 0 {
		p.stopLocked()
		return r, fmt.Errorf("%w: %d of %d workers", ErrRecoveryFailed, r.Failed, r.Dead)
	}
	return r, nil
}

// Run calls Monitor every interval until ctx is done or a pass fails.
// The pool is stopped when Run returns.
func (p *Pool) Run(ctx context.Context, interval time.Duration) error {
	defer p.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.Monitor(); err != nil {
				return err
			}
		}
	}
}
