// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bufq

// Options configures queue creation and algorithm selection.
type Options struct {
	// Producer/Consumer constraints (determines queue type)
	singleProducer bool
	singleConsumer bool

	// Contended retry behaviour
	backoff Backoff

	// Capacity (rounds up to next power of 2, minimum 2)
	capacity int
}

// Builder creates queues with fluent configuration.
//
// The builder selects the algorithm from the producer/consumer constraints.
//
// Example:
//
//	// SPSC queue (optimal for single producer/consumer)
//	q := bufq.New(1024).SingleProducer().SingleConsumer().BuildSPSC()
//
//	// MPMC queue that yields instead of spinning under contention
//	q := bufq.New(4096).Backoff(bufq.BackoffYield).BuildMPMC()
type Builder struct {
	opts Options
}

// New creates a queue builder with the given capacity request.
//
// Capacity rounds up to the next power of 2. Requests below 2, including
// zero and negative values, become 2.
func New(capacity int) *Builder {
	return &Builder{opts: Options{capacity: capacity}}
}

// SingleProducer declares that only one goroutine will enqueue.
func (b *Builder) SingleProducer() *Builder {
	b.opts.singleProducer = true
	return b
}

// SingleConsumer declares that only one goroutine will dequeue.
func (b *Builder) SingleConsumer() *Builder {
	b.opts.singleConsumer = true
	return b
}

// Backoff selects the contended retry strategy. The default is BackoffSpin.
//
// SPSC never retries and ignores Backoff.
func (b *Builder) Backoff(backoff Backoff) *Builder {
	b.opts.backoff = backoff
	return b
}

// Build creates a Queue with automatic algorithm selection.
//
// Algorithm selection:
//
//	SingleProducer + SingleConsumer → SPSC (Lamport ring buffer)
//	SingleConsumer only             → MPSC (CAS producers, sequential consumer)
//	Otherwise                       → MPMC (Vyukov sequence queue)
//
// There is no dedicated single-producer multi-consumer variant;
// SingleProducer alone selects MPMC.
func (b *Builder) Build() Queue {
	switch {
	case b.opts.singleProducer && b.opts.singleConsumer:
		return NewSPSC(b.opts.capacity)
	case b.opts.singleConsumer:
		return newMPSC(b.opts.capacity, b.opts.backoff)
	default:
		return newMPMC(b.opts.capacity, b.opts.backoff)
	}
}

// BuildSPSC creates an SPSC queue.
// Panics if builder is not configured with SingleProducer().SingleConsumer().
func (b *Builder) BuildSPSC() *SPSC {
	if !b.opts.singleProducer || !b.opts.singleConsumer {
		panic("bufq: BuildSPSC requires SingleProducer().SingleConsumer()")
	}
	return NewSPSC(b.opts.capacity)
}

// BuildMPSC creates an MPSC queue.
// Panics if builder is not configured with SingleConsumer() only.
func (b *Builder) BuildMPSC() *MPSC {
	if b.opts.singleProducer || !b.opts.singleConsumer {
		panic("bufq: BuildMPSC requires SingleConsumer() without SingleProducer()")
	}
	return newMPSC(b.opts.capacity, b.opts.backoff)
}

// BuildMPMC creates an MPMC queue.
// Panics if builder has any constraints set.
func (b *Builder) BuildMPMC() *MPMC {
	if b.opts.singleProducer || b.opts.singleConsumer {
		panic("bufq: BuildMPMC requires no constraints")
	}
	return newMPMC(b.opts.capacity, b.opts.backoff)
}

// BuildRWSpinLock creates a reader-writer spin lock with the builder's
// backoff. Capacity and constraints are ignored.
func (b *Builder) BuildRWSpinLock() *RWSpinLock {
	return NewRWSpinLock(b.opts.backoff)
}

// roundToPow2 rounds n up to the next power of 2, with a minimum of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
