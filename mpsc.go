// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bufq

import (
	"code.hybscloud.com/atomix"
	"golang.org/x/sys/cpu"
)

// MPSC is a CAS-based multi-producer single-consumer bounded byte queue.
//
// Producers use CAS on tail to claim slots and publish through the slot
// sequence. The single consumer reads sequentially without CAS.
//
// All Cap() slots are usable: the per-slot sequence, not a reserved slot,
// distinguishes full from empty.
//
// Memory: capacity * ~64KiB
type MPSC struct {
	_        cpu.CacheLinePad
	head     atomix.Uint64 // Consumer reads from here
	_        cpu.CacheLinePad
	tail     atomix.Uint64 // Producers CAS here
	_        cpu.CacheLinePad
	buffer   []seqSlot
	mask     uint64
	capacity uint64
	backoff  Backoff
}

// NewMPSC creates a new CAS-based MPSC queue with spin backoff.
// Capacity rounds up to the next power of 2, with a minimum of 2.
func NewMPSC(capacity int) *MPSC {
	return newMPSC(capacity, BackoffSpin)
}

func newMPSC(capacity int, backoff Backoff) *MPSC {
	n := uint64(roundToPow2(capacity))
	return &MPSC{
		buffer:   newSeqSlots(n),
		mask:     n - 1,
		capacity: n,
		backoff:  backoff,
	}
}

// Enqueue copies data into the queue (multiple producers safe).
// Returns the number of bytes stored, or (-1, ErrWouldBlock) if the queue
// is full. Payloads longer than MaxPayload are truncated.
func (q *MPSC) Enqueue(data []byte) (int, error) {
	return enqueueSeq(&q.tail, q.buffer, q.mask, q.backoff, data)
}

// enqueueSeq is the Vyukov producer protocol shared by MPSC and MPMC.
func enqueueSeq(tail *atomix.Uint64, buffer []seqSlot, mask uint64, backoff Backoff, data []byte) (int, error) {
	sw := backoff.waiter()
	for {
		t := tail.LoadRelaxed()
		slot := &buffer[t&mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq - t)

		if diff == 0 {
			if tail.CompareAndSwapAcqRel(t, t+1) {
				n := slot.put(data)
				slot.seq.StoreRelease(t + 1)
				return n, nil
			}
		} else if diff < 0 {
			// Previous lap still unconsumed
			return -1, ErrWouldBlock
		}
		sw.Once()
	}
}

// Dequeue copies the oldest committed payload into out (single consumer only).
// Returns the number of bytes copied, or (-1, ErrWouldBlock) if the queue
// is empty.
func (q *MPSC) Dequeue(out []byte) (int, error) {
	head := q.head.LoadRelaxed()
	slot := &q.buffer[head&q.mask]
	seq := slot.seq.LoadAcquire()

	if int64(seq-(head+1)) < 0 {
		return -1, ErrWouldBlock
	}

	n := slot.get(out)
	slot.seq.StoreRelease(head + q.capacity)
	q.head.StoreRelease(head + 1)
	return n, nil
}

// Cap returns the queue capacity.
func (q *MPSC) Cap() int {
	return int(q.capacity)
}
