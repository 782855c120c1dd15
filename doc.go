// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bufq provides bounded byte-slot FIFO queues and a
// reader-writer spin lock.
//
// Every queue slot owns a fixed [MaxPayload]-byte buffer plus a stored
// length. Payloads are copied in on enqueue and copied out on dequeue;
// callers never alias slot memory.
//
// The package offers three queue variants:
//
//   - SPSC: Single-Producer Single-Consumer (Lamport, wait-free)
//   - MPSC: Multi-Producer Single-Consumer (CAS producers, lock-free)
//   - MPMC: Multi-Producer Multi-Consumer (Vyukov sequence queue, lock-free)
//
// # Quick Start
//
// Direct constructors:
//
//	q := bufq.NewSPSC(1024)
//	q := bufq.NewMPMC(4096)
//
// Builder API selects the algorithm from constraints:
//
//	q := bufq.New(1024).SingleProducer().SingleConsumer().Build()  // → SPSC
//	q := bufq.New(1024).SingleConsumer().Build()                   // → MPSC
//	q := bufq.New(1024).Build()                                    // → MPMC
//
// # Basic Usage
//
//	q := bufq.NewMPMC(1024)
//
//	n, err := q.Enqueue(frame)
//	if bufq.IsWouldBlock(err) {
//	    // Queue is full - payload dropped, handle backpressure
//	}
//
//	buf := make([]byte, bufq.MaxPayload)
//	n, err = q.Dequeue(buf)
//	if bufq.IsWouldBlock(err) {
//	    // Queue is empty - buf untouched, try again later
//	}
//
// # Return Convention
//
// Successful operations return the number of bytes transferred. Failed
// operations return -1 and [ErrWouldBlock]. There are no other errors:
//
//   - Writes longer than MaxPayload are truncated to MaxPayload.
//   - Reads into a buffer shorter than the payload copy len(buf) bytes
//     and report len(buf); the rest of the payload is discarded.
//
// # Capacity
//
// Capacity rounds up to the next power of 2, minimum 2:
//
//	bufq.NewMPMC(0)     // Actual capacity: 2
//	bufq.NewMPMC(5)     // Actual capacity: 8
//	bufq.NewMPMC(1000)  // Actual capacity: 1024
//
// SPSC keeps one slot empty to tell full from empty, so it buffers at most
// Cap()-1 payloads. MPSC and MPMC track slot state in a per-slot sequence
// and buffer up to Cap() payloads.
//
// Each slot is about 64KiB. A 1024-slot queue holds 64MiB.
//
// # Backoff
//
// MPSC producers, MPMC producers and consumers, and [RWSpinLock] waiters
// retry while racing a peer. [Backoff] selects what happens between
// retries: a CPU pause (default), a goroutine yield, or an adaptive sleep.
// A queue that is full or empty never retries; it returns at once.
//
// # Thread Safety
//
// All queue operations are thread-safe within their access pattern constraints:
//
//   - SPSC: One producer goroutine, one consumer goroutine
//   - MPSC: Multiple producer goroutines, one consumer goroutine
//   - MPMC: Multiple producer and consumer goroutines
//
// Violating these constraints (e.g., multiple producers on SPSC) causes
// undefined behavior including data corruption. It is not detected.
//
// A queue has no shutdown protocol. Stop every producer and consumer
// before dropping the last reference.
//
// # Race Detection
//
// Slot payloads are plain byte arrays published by release stores to the
// slot sequence (or SPSC index) and observed by acquire loads. Go's race
// detector does not model these orderings on separate variables, so tests
// that move payloads between goroutines are skipped when [RaceEnabled].
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors and
// adaptive backoff, [code.hybscloud.com/atomix] for atomic primitives with
// explicit memory ordering, [code.hybscloud.com/spin] for CPU pause
// instructions, and [golang.org/x/sys/cpu] for cache line padding.
package bufq
