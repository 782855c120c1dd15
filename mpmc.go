// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bufq

import (
	"code.hybscloud.com/atomix"
	"golang.org/x/sys/cpu"
)

// MPMC is a CAS-based multi-producer multi-consumer bounded byte queue.
//
// Uses per-slot sequence numbers (Vyukov) which provide:
//   - Full ABA safety via sequence-based validation
//   - No reserved slot: all Cap() slots are usable
//   - Lock-free progress on both sides
//
// Items are delivered in the order producer CAS operations on tail
// committed, which under contention need not match call order.
//
// Memory: capacity * ~64KiB
type MPMC struct {
	_        cpu.CacheLinePad
	tail     atomix.Uint64 // Producer index
	_        cpu.CacheLinePad
	head     atomix.Uint64 // Consumer index
	_        cpu.CacheLinePad
	buffer   []seqSlot
	mask     uint64
	capacity uint64
	backoff  Backoff
}

// NewMPMC creates a new CAS-based MPMC queue with spin backoff.
// Capacity rounds up to the next power of 2, with a minimum of 2.
func NewMPMC(capacity int) *MPMC {
	return newMPMC(capacity, BackoffSpin)
}

func newMPMC(capacity int, backoff Backoff) *MPMC {
	n := uint64(roundToPow2(capacity))
	return &MPMC{
		buffer:   newSeqSlots(n),
		mask:     n - 1,
		capacity: n,
		backoff:  backoff,
	}
}

// Enqueue copies data into the queue.
// Returns the number of bytes stored, or (-1, ErrWouldBlock) if the queue
// is full. Payloads longer than MaxPayload are truncated.
func (q *MPMC) Enqueue(data []byte) (int, error) {
	return enqueueSeq(&q.tail, q.buffer, q.mask, q.backoff, data)
}

// Dequeue copies the oldest committed payload into out.
// Returns the number of bytes copied, or (-1, ErrWouldBlock) if the queue
// is empty.
func (q *MPMC) Dequeue(out []byte) (int, error) {
	sw := q.backoff.waiter()
	for {
		head := q.head.LoadRelaxed()
		slot := &q.buffer[head&q.mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq - (head + 1))

		if diff == 0 {
			if q.head.CompareAndSwapAcqRel(head, head+1) {
				n := slot.get(out)
				slot.seq.StoreRelease(head + q.capacity)
				return n, nil
			}
		} else if diff < 0 {
			return -1, ErrWouldBlock
		}
		// Lost the CAS, or head is stale: a peer consumer took this slot
		sw.Once()
	}
}

// Cap returns the queue capacity.
func (q *MPMC) Cap() int {
	return int(q.capacity)
}
