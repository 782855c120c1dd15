// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bufq

// Queue is the combined producer-consumer interface for a byte-slot FIFO.
//
// Both operations are non-blocking. They return the number of bytes
// transferred, or -1 together with [ErrWouldBlock] when the queue is full
// (Enqueue) or empty (Dequeue).
//
// The interface intentionally excludes length because accurate counts in
// lock-free algorithms require expensive cross-core synchronization.
//
// Example:
//
//	q := bufq.NewMPMC(1024)
//
//	if _, err := q.Enqueue([]byte("hello")); err != nil {
//	    // Handle full queue
//	}
//
//	buf := make([]byte, bufq.MaxPayload)
//	n, err := q.Dequeue(buf)
//	if err == nil {
//	    fmt.Printf("%s\n", buf[:n])
//	}
type Queue interface {
	Producer
	Consumer
	Cap() int
}

// Producer is the interface for enqueueing payloads.
type Producer interface {
	// Enqueue copies data into a free slot (non-blocking).
	// Payloads longer than MaxPayload are truncated silently.
	// Returns the number of bytes stored, or (-1, ErrWouldBlock) if the
	// queue is full, in which case nothing is stored.
	//
	// Thread safety depends on queue type:
	//   - SPSC: single producer only
	//   - MPSC/MPMC: multiple producers safe
	Enqueue(data []byte) (int, error)
}

// Consumer is the interface for dequeueing payloads.
type Consumer interface {
	// Dequeue copies the oldest committed payload into out (non-blocking).
	// If out is shorter than the payload, the copy is truncated to len(out)
	// and the remainder is discarded with the slot.
	// Returns the number of bytes copied, or (-1, ErrWouldBlock) if the
	// queue is empty, in which case out is untouched.
	//
	// Thread safety depends on queue type:
	//   - SPSC/MPSC: single consumer only
	//   - MPMC: multiple consumers safe
	Dequeue(out []byte) (int, error)
}
