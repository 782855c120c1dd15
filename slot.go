// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bufq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"golang.org/x/sys/cpu"
)

// MaxPayload is the byte capacity of a single slot. Longer writes are
// truncated to MaxPayload bytes.
const MaxPayload = 65535

// cacheLine is the platform cache line size used for slot padding.
const cacheLine = int(unsafe.Sizeof(cpu.CacheLinePad{}))

// payload is a length-prefixed fixed-capacity byte container.
// The bytes are owned by the slot; callers only ever see copies.
type payload struct {
	n    uint16
	data [MaxPayload]byte
}

// put copies p into the slot, truncating to MaxPayload.
func (s *payload) put(p []byte) int {
	n := copy(s.data[:], p)
	s.n = uint16(n)
	return n
}

// get copies the stored bytes into out, truncating to len(out).
func (s *payload) get(out []byte) int {
	return copy(out, s.data[:s.n])
}

const (
	payloadSize = int(unsafe.Sizeof(payload{}))
	seqSize     = int(unsafe.Sizeof(atomix.Uint64{}))
)

// spscSlot is the SPSC storage unit. Ownership is arbitrated by the
// queue's head/tail pair, so no per-slot sequence is needed.
type spscSlot struct {
	payload
	_ [(cacheLine - payloadSize%cacheLine) % cacheLine]byte
}

// seqSlot is the MPSC/MPMC storage unit.
//
// seq starts at the slot index and advances by one when a producer
// publishes (seq == pos+1: ready for the consumer) and by capacity-1 more
// when a consumer releases it (seq == pos+capacity: free for the next lap).
type seqSlot struct {
	seq atomix.Uint64
	payload
	_ [(cacheLine - (seqSize+payloadSize)%cacheLine) % cacheLine]byte
}

// newSeqSlots allocates n slots with seq initialized to the slot index.
func newSeqSlots(n uint64) []seqSlot {
	slots := make([]seqSlot, n)
	for i := uint64(0); i < n; i++ {
		slots[i].seq.StoreRelaxed(i)
	}
	return slots
}
