// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command bufqbench measures bufq throughput with real producer and
// consumer goroutines supervised by worker pools.
//
// Usage:
//
//	go run ./cmd/bufqbench -kind mpmc -producers 4 -consumers 4 -n 1000000
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/bufq"
	"code.hybscloud.com/bufq/worker"
	"github.com/valyala/fastrand"
)

type config struct {
	kind      string
	capacity  int
	producers int
	consumers int
	items     int
	size      int
	backoff   bufq.Backoff
	timeout   time.Duration
	verbose   bool
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(cfg, logger); err != nil {
		logger.Error("bench failed", "err", err)
		os.Exit(1)
	}
}

func parseFlags() (config, error) {
	var cfg config
	flag.StringVar(&cfg.kind, "kind", "mpmc", "queue kind: spsc, mpsc or mpmc")
	flag.IntVar(&cfg.capacity, "cap", 1024, "requested queue capacity")
	flag.IntVar(&cfg.producers, "producers", 4, "producer goroutines")
	flag.IntVar(&cfg.consumers, "consumers", 4, "consumer goroutines")
	flag.IntVar(&cfg.items, "n", 1_000_000, "items per producer")
	flag.IntVar(&cfg.size, "size", 64, "maximum payload size; each payload is 1..size bytes")
	backoff := flag.String("backoff", "spin", "contention backoff: spin, yield or park")
	flag.DurationVar(&cfg.timeout, "timeout", time.Minute, "abort if the run takes longer")
	flag.BoolVar(&cfg.verbose, "v", false, "log worker lifecycle events")
	flag.Parse()

	var err error
	if cfg.backoff, err = bufq.ParseBackoff(*backoff); err != nil {
		return cfg, err
	}
	switch cfg.kind {
	case "spsc":
		cfg.producers, cfg.consumers = 1, 1
	case "mpsc":
		cfg.consumers = 1
	case "mpmc":
	default:
		return cfg, fmt.Errorf("unknown queue kind %q", cfg.kind)
	}
	if cfg.producers < 1 || cfg.consumers < 1 || cfg.items < 1 {
		return cfg, errors.New("producers, consumers and n must be positive")
	}
	if cfg.size < 1 || cfg.size > bufq.MaxPayload {
		return cfg, fmt.Errorf("size must be in 1..%d", bufq.MaxPayload)
	}
	return cfg, nil
}

func newQueue(cfg config) bufq.Queue {
	b := bufq.New(cfg.capacity).Backoff(cfg.backoff)
	switch cfg.kind {
	case "spsc":
		b.SingleProducer().SingleConsumer()
	case "mpsc":
		b.SingleConsumer()
	}
	return b.Build()
}

func run(cfg config, logger *slog.Logger) error {
	q := newQueue(cfg)
	total := int64(cfg.producers) * int64(cfg.items)

	logger.Info("bench start",
		"kind", cfg.kind, "cap", q.Cap(), "backoff", cfg.backoff,
		"producers", cfg.producers, "consumers", cfg.consumers,
		"items", total, "size", cfg.size,
		"arch", runtime.GOOS+"/"+runtime.GOARCH)

	var consumed, consumedBytes, producedBytes atomix.Int64
	done := make(chan struct{})
	var doneOnce sync.Once

	workerLog := worker.WithLogger(logger)

	consumers := worker.NewPool(cfg.consumers, func(id int) worker.Worker {
		return worker.NewRunner(fmt.Sprintf("consumer-%d", id),
			worker.ConsumeLoop(q, cfg.size, func(p []byte) error {
				consumedBytes.Add(int64(len(p)))
				if consumed.Add(1) == total {
					doneOnce.Do(func() { close(done) })
				}
				return nil
			}), workerLog)
	}, workerLog)

	// Producers finish on their own, so their pool is never monitored.
	producers := worker.NewPool(cfg.producers, func(id int) worker.Worker {
		buf := make([]byte, cfg.size)
		remaining := cfg.items
		next := func() ([]byte, bool) {
			if remaining == 0 {
				return nil, false
			}
			remaining--
			n := int(fastrand.Uint32n(uint32(cfg.size))) + 1
			producedBytes.Add(int64(n))
			return buf[:n], true
		}
		return worker.NewRunner(fmt.Sprintf("producer-%d", id),
			worker.ProduceLoop(q, next), workerLog)
	}, workerLog)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout)
	defer cancel()

	if err := consumers.Start(); err != nil {
		return err
	}
	supervised := make(chan error, 1)
	go func() { supervised <- consumers.Run(ctx, 100*time.Millisecond) }()

	start := time.Now()
	if err := producers.Start(); err != nil {
		cancel()
		<-supervised
		return err
	}

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = fmt.Errorf("consumed %d of %d items: %w", consumed.Load(), total, ctx.Err())
	case err = <-supervised:
		supervised = nil
	}
	elapsed := time.Since(start)

	producers.Stop()
	cancel()
	if supervised != nil {
		<-supervised
	}
	if err != nil {
		return err
	}

	if consumedBytes.Load() != producedBytes.Load() {
		return fmt.Errorf("byte count mismatch: produced %d, consumed %d",
			producedBytes.Load(), consumedBytes.Load())
	}

	perOp := float64(elapsed.Nanoseconds()) / float64(total)
	logger.Info("bench done",
		"items", total,
		"bytes", consumedBytes.Load(),
		"elapsed", elapsed,
		"ns_per_op", fmt.Sprintf("%.2f", perOp),
		"mops", fmt.Sprintf("%.2f", 1000/perOp),
		"mib_per_s", fmt.Sprintf("%.2f", float64(consumedBytes.Load())/elapsed.Seconds()/(1<<20)))
	return nil
}
