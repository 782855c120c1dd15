// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bufq

import (
	"code.hybscloud.com/atomix"
	"golang.org/x/sys/cpu"
)

// SPSC is a single-producer single-consumer bounded byte queue.
//
// Based on Lamport's ring buffer with cached index optimization.
// The producer caches the consumer's index, and vice versa, reducing
// cross-core cache line traffic. Both indices stay in [0, capacity) and
// one slot is always left empty to tell full from empty, so the usable
// capacity is Cap()-1.
//
// Push and Pop are wait-free: each index has exactly one writer, so there
// is nothing to retry.
//
// Memory: capacity * ~64KiB
type SPSC struct {
	_          cpu.CacheLinePad
	head       atomix.Uint64 // Consumer reads from here
	_          cpu.CacheLinePad
	cachedTail uint64 // Consumer's cached view of tail
	_          cpu.CacheLinePad
	tail       atomix.Uint64 // Producer writes here
	_          cpu.CacheLinePad
	cachedHead uint64 // Producer's cached view of head
	_          cpu.CacheLinePad
	buffer     []spscSlot
	mask       uint64
}

// NewSPSC creates a new SPSC queue.
// Capacity rounds up to the next power of 2, with a minimum of 2.
func NewSPSC(capacity int) *SPSC {
	n := uint64(roundToPow2(capacity))
	return &SPSC{
		buffer: make([]spscSlot, n),
		mask:   n - 1,
	}
}

// Push copies data into the queue (producer only).
// Returns the number of bytes stored, or (-1, ErrWouldBlock) if the queue
// is full. Payloads longer than MaxPayload are truncated.
func (q *SPSC) Push(data []byte) (int, error) {
	tail := q.tail.LoadRelaxed()
	next := (tail + 1) & q.mask
	if next == q.cachedHead {
		q.cachedHead = q.head.LoadAcquire()
		if next == q.cachedHead {
			return -1, ErrWouldBlock
		}
	}

	n := q.buffer[tail].put(data)
	q.tail.StoreRelease(next)
	return n, nil
}

// Pop copies the oldest payload into out (consumer only).
// Returns the number of bytes copied, or (-1, ErrWouldBlock) if the queue
// is empty.
func (q *SPSC) Pop(out []byte) (int, error) {
	head := q.head.LoadRelaxed()
	if head == q.cachedTail {
		q.cachedTail = q.tail.LoadAcquire()
		if head == q.cachedTail {
			return -1, ErrWouldBlock
		}
	}

	n := q.buffer[head].get(out)
	q.head.StoreRelease((head + 1) & q.mask)
	return n, nil
}

// Enqueue is Push. It lets SPSC satisfy [Queue].
func (q *SPSC) Enqueue(data []byte) (int, error) {
	return q.Push(data)
}

// Dequeue is Pop. It lets SPSC satisfy [Queue].
func (q *SPSC) Dequeue(out []byte) (int, error) {
	return q.Pop(out)
}

// Cap returns the realized queue capacity. One slot is reserved, so at
// most Cap()-1 payloads can be buffered.
func (q *SPSC) Cap() int {
	return int(q.mask + 1)
}
