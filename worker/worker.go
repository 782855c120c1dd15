// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package worker supervises long-running goroutines around bufq queues.
//
// A [Worker] exposes a minimal lifecycle: Start, Stop and IsTerminated.
// [Runner] is the goroutine-backed implementation; [Pool] starts a fixed
// number of workers and restarts the ones that die.
//
//	q := bufq.NewMPSC(1024)
//	pool := worker.NewPool(4, func(id int) worker.Worker {
//	    return worker.NewRunner(fmt.Sprintf("consumer-%d", id),
//	        worker.ConsumeLoop(q, bufq.MaxPayload, handle))
//	})
//	if err := pool.Start(); err != nil {
//	    return err
//	}
//	defer pool.Stop()
//	go pool.Run(ctx, time.Second)
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"code.hybscloud.com/atomix"
)

var (
	// ErrAlreadyStarted is returned by Runner.Start while the loop is running.
	ErrAlreadyStarted = errors.New("worker: already started")
	// ErrPoolStarted is returned by Pool.Start on a started pool.
	ErrPoolStarted = errors.New("worker: pool already started")
	// ErrPoolNotStarted is returned by Pool.Monitor on a stopped pool.
	ErrPoolNotStarted = errors.New("worker: pool not started")
	// ErrRecoveryFailed is returned by Pool.Monitor when a dead worker
	// could not be restarted. The pool has been stopped.
	ErrRecoveryFailed = errors.New("worker: restart failed")
)

// Worker is the lifecycle capability supervised by a [Pool].
type Worker interface {
	// Start launches the worker. It fails if the worker is running or its
	// setup fails.
	Start() error
	// Stop halts the worker and waits for it. It is idempotent; once it
	// returns the worker executes nothing further.
	Stop()
	// IsTerminated reports whether the worker's loop has exited.
	IsTerminated() bool
}

// Loop is the body of a Runner. It should return when ctx is done.
// A returned error or a panic terminates the runner.
type Loop func(ctx context.Context) error

// Option configures a Runner or Pool.
type Option func(*options)

type options struct {
	setup   func() error
	cleanup func()
	logger  *slog.Logger
}

// WithSetup sets a hook run by Runner.Start before the loop launches.
// If it fails, the cleanup hook runs and Start returns the error.
func WithSetup(fn func() error) Option {
	return func(o *options) { o.setup = fn }
}

// WithCleanup sets a hook run by every Runner.Stop and after a failed
// setup. It must be safe to call repeatedly.
func WithCleanup(fn func()) Option {
	return func(o *options) { o.cleanup = fn }
}

// WithLogger sets the structured logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Runner runs a Loop on its own goroutine.
type Runner struct {
	name string
	loop Loop
	opts options

	mu         sync.Mutex
	cancel     context.CancelFunc
	done       chan struct{}
	terminated atomix.Bool
}

var _ Worker = (*Runner)(nil)

// NewRunner returns a stopped runner for loop.
func NewRunner(name string, loop Loop, opts ...Option) *Runner {
	return &Runner{
		name: name,
		loop: loop,
		opts: buildOptions(opts),
	}
}

// Name returns the runner name used in log records.
func (r *Runner) Name() string {
	return r.name
}

// Start runs setup, then launches the loop.
// Returns ErrAlreadyStarted if the loop is running.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done != nil {
		return fmt.Errorf("%s: %w", r.name, ErrAlreadyStarted)
	}
	if r.opts.setup != nil {
		if err := r.opts.setup(); err != nil {
			r.runCleanup()
			return fmt.Errorf("%s: setup: %w", r.name, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	r.terminated.Store(false)
	go r.run(ctx, r.done)
	return nil
}

func (r *Runner) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer r.terminated.Store(true)
	defer func() {
		if v := recover(); v != nil {
			r.opts.logger.Error("worker panic", "worker", r.name, "panic", v)
		}
	}()

	r.opts.logger.Debug("worker start", "worker", r.name)
	if err := r.loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
		r.opts.logger.Error("worker exit", "worker", r.name, "err", err)
		return
	}
	r.opts.logger.Debug("worker stop", "worker", r.name)
}

// Stop cancels the loop, waits for it to return, then runs cleanup.
// Calling Stop on a stopped runner only runs cleanup.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done != nil {
		r.cancel()
		<-r.done
		r.cancel = nil
		r.done = nil
	}
	r.runCleanup()
}

// IsTerminated reports whether the loop has exited, by returning,
// panicking, or being stopped. A runner that was never started is not
// terminated.
func (r *Runner) IsTerminated() bool {
	return r.terminated.Load()
}

func (r *Runner) runCleanup() {
	if r.opts.cleanup != nil {
		r.opts.cleanup()
	}
}
