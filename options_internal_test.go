// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bufq

import (
	"testing"
	"unsafe"
)

func TestRoundToPow2(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, 2}, {0, 2}, {1, 2}, {2, 2}, {3, 4}, {5, 8},
		{1000, 1024}, {1024, 1024}, {1025, 2048},
		{1<<20 - 1, 1 << 20}, {1<<20 + 1, 1 << 21},
	}
	for _, tt := range tests {
		if got := roundToPow2(tt.in); got != tt.want {
			t.Errorf("roundToPow2(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// TestSlotLayout verifies that slots tile whole cache lines so that the
// sequence word of one slot never shares a line with its neighbour's bytes.
func TestSlotLayout(t *testing.T) {
	if size := int(unsafe.Sizeof(seqSlot{})); size%cacheLine != 0 {
		t.Fatalf("seqSlot size %d is not a multiple of %d", size, cacheLine)
	}
	if size := int(unsafe.Sizeof(spscSlot{})); size%cacheLine != 0 {
		t.Fatalf("spscSlot size %d is not a multiple of %d", size, cacheLine)
	}
	if off := unsafe.Offsetof(seqSlot{}.seq); off != 0 {
		t.Fatalf("seqSlot.seq offset: got %d, want 0", off)
	}
}

func TestSeqSlotsInitialSequence(t *testing.T) {
	slots := newSeqSlots(8)
	for i := range slots {
		if got := slots[i].seq.Load(); got != uint64(i) {
			t.Fatalf("slot %d seq: got %d, want %d", i, got, i)
		}
	}
}

// TestSequenceLaps walks MPSC and MPMC through several laps and checks that
// every slot sequence follows i, i+1, i+cap, i+cap+1, ...
func TestSequenceLaps(t *testing.T) {
	mpsc := NewMPSC(4)
	mpmc := NewMPMC(4)
	out := make([]byte, 8)

	for lap := uint64(0); lap < 5; lap++ {
		for i := uint64(0); i < 4; i++ {
			pos := lap*4 + i
			mpsc.Enqueue([]byte{byte(pos)})
			mpmc.Enqueue([]byte{byte(pos)})
			if got := mpsc.buffer[i].seq.Load(); got != pos+1 {
				t.Fatalf("MPSC lap %d slot %d after enqueue: seq %d, want %d", lap, i, got, pos+1)
			}
			if got := mpmc.buffer[i].seq.Load(); got != pos+1 {
				t.Fatalf("MPMC lap %d slot %d after enqueue: seq %d, want %d", lap, i, got, pos+1)
			}
		}
		for i := uint64(0); i < 4; i++ {
			pos := lap*4 + i
			mpsc.Dequeue(out)
			mpmc.Dequeue(out)
			if got := mpsc.buffer[i].seq.Load(); got != pos+4 {
				t.Fatalf("MPSC lap %d slot %d after dequeue: seq %d, want %d", lap, i, got, pos+4)
			}
			if got := mpmc.buffer[i].seq.Load(); got != pos+4 {
				t.Fatalf("MPMC lap %d slot %d after dequeue: seq %d, want %d", lap, i, got, pos+4)
			}
		}
	}
}

func TestSPSCIndicesWrap(t *testing.T) {
	q := NewSPSC(4)
	out := make([]byte, 1)
	for i := range 20 {
		q.Push([]byte{byte(i)})
		q.Pop(out)
		if h, tl := q.head.Load(), q.tail.Load(); h > q.mask || tl > q.mask {
			t.Fatalf("indices escaped ring: head=%d tail=%d mask=%d", h, tl, q.mask)
		}
	}
}
