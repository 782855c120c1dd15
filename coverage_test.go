// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bufq_test

import (
	"bytes"
	"slices"
	"testing"

	"code.hybscloud.com/bufq"
)

// =============================================================================
// Builder API Tests (Consolidated)
// =============================================================================

// TestBuilderAPI tests all Builder combinations in a table-driven fashion.
func TestBuilderAPI(t *testing.T) {
	tests := []struct {
		name    string
		build   func() bufq.Queue
		wantCap int
		check   func(bufq.Queue) bool
	}{
		{
			name:    "SPSC",
			build:   func() bufq.Queue { return bufq.New(7).SingleProducer().SingleConsumer().Build() },
			wantCap: 8,
			check:   func(q bufq.Queue) bool { _, ok := q.(*bufq.SPSC); return ok },
		},
		{
			name:    "MPSC",
			build:   func() bufq.Queue { return bufq.New(7).SingleConsumer().Build() },
			wantCap: 8,
			check:   func(q bufq.Queue) bool { _, ok := q.(*bufq.MPSC); return ok },
		},
		{
			name:    "SingleProducerOnly",
			build:   func() bufq.Queue { return bufq.New(7).SingleProducer().Build() },
			wantCap: 8,
			check:   func(q bufq.Queue) bool { _, ok := q.(*bufq.MPMC); return ok },
		},
		{
			name:    "MPMC",
			build:   func() bufq.Queue { return bufq.New(7).Build() },
			wantCap: 8,
			check:   func(q bufq.Queue) bool { _, ok := q.(*bufq.MPMC); return ok },
		},
		{
			name:    "MPMCYield",
			build:   func() bufq.Queue { return bufq.New(16).Backoff(bufq.BackoffYield).Build() },
			wantCap: 16,
			check:   func(q bufq.Queue) bool { _, ok := q.(*bufq.MPMC); return ok },
		},
		{
			name:    "MPSCPark",
			build:   func() bufq.Queue { return bufq.New(0).SingleConsumer().Backoff(bufq.BackoffPark).Build() },
			wantCap: 2,
			check:   func(q bufq.Queue) bool { _, ok := q.(*bufq.MPSC); return ok },
		},
		{
			name:    "TypedSPSC",
			build:   func() bufq.Queue { return bufq.New(3).SingleProducer().SingleConsumer().BuildSPSC() },
			wantCap: 4,
			check:   func(q bufq.Queue) bool { return true },
		},
		{
			name:    "TypedMPSC",
			build:   func() bufq.Queue { return bufq.New(3).SingleConsumer().BuildMPSC() },
			wantCap: 4,
			check:   func(q bufq.Queue) bool { return true },
		},
		{
			name:    "TypedMPMC",
			build:   func() bufq.Queue { return bufq.New(3).BuildMPMC() },
			wantCap: 4,
			check:   func(q bufq.Queue) bool { return true },
		},
	}

	for tt := range slices.Values(tests) {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.build()
			if !tt.check(q) {
				t.Fatalf("Build: got %T", q)
			}
			if q.Cap() != tt.wantCap {
				t.Fatalf("Cap: got %d, want %d", q.Cap(), tt.wantCap)
			}
			if n, err := q.Enqueue([]byte("frame")); err != nil || n != 5 {
				t.Fatalf("Enqueue: got (%d, %v)", n, err)
			}
			out := make([]byte, 16)
			n, err := q.Dequeue(out)
			if err != nil {
				t.Fatalf("Dequeue: %v", err)
			}
			if !bytes.Equal(out[:n], []byte("frame")) {
				t.Fatalf("Dequeue: got %q", out[:n])
			}
		})
	}
}

// =============================================================================
// Typed Builder Panics
// =============================================================================

func expectPanic(t *testing.T, build func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic")
		}
	}()
	build()
}

// TestPanicBuildSPSC tests that BuildSPSC panics without proper constraints.
func TestPanicBuildSPSC(t *testing.T) {
	tests := []struct {
		name  string
		build func()
	}{
		{"NoConstraints", func() { bufq.New(8).BuildSPSC() }},
		{"OnlySP", func() { bufq.New(8).SingleProducer().BuildSPSC() }},
		{"OnlySC", func() { bufq.New(8).SingleConsumer().BuildSPSC() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) { expectPanic(t, tt.build) })
	}
}

// TestPanicBuildMPSC tests that BuildMPSC panics without exactly SingleConsumer.
func TestPanicBuildMPSC(t *testing.T) {
	tests := []struct {
		name  string
		build func()
	}{
		{"NoConstraints", func() { bufq.New(8).BuildMPSC() }},
		{"OnlySP", func() { bufq.New(8).SingleProducer().BuildMPSC() }},
		{"BothSPSC", func() { bufq.New(8).SingleProducer().SingleConsumer().BuildMPSC() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) { expectPanic(t, tt.build) })
	}
}

// TestPanicBuildMPMC tests that BuildMPMC panics with any constraint.
func TestPanicBuildMPMC(t *testing.T) {
	tests := []struct {
		name  string
		build func()
	}{
		{"OnlySP", func() { bufq.New(8).SingleProducer().BuildMPMC() }},
		{"OnlySC", func() { bufq.New(8).SingleConsumer().BuildMPMC() }},
		{"BothSPSC", func() { bufq.New(8).SingleProducer().SingleConsumer().BuildMPMC() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) { expectPanic(t, tt.build) })
	}
}

// TestNoPanicOnSmallCapacity verifies that constructors clamp rather
// than panic on degenerate requests.
func TestNoPanicOnSmallCapacity(t *testing.T) {
	for _, req := range []int{-100, -1, 0, 1} {
		for _, c := range queueCases(req) {
			if c.q.Cap() != 2 {
				t.Fatalf("%s(%d).Cap: got %d, want 2", c.name, req, c.q.Cap())
			}
		}
	}
}

// =============================================================================
// Backoff Names
// =============================================================================

func TestParseBackoff(t *testing.T) {
	tests := []struct {
		in      string
		want    bufq.Backoff
		wantErr bool
	}{
		{"", bufq.BackoffSpin, false},
		{"spin", bufq.BackoffSpin, false},
		{"yield", bufq.BackoffYield, false},
		{"park", bufq.BackoffPark, false},
		{"sleep", 0, true},
		{"SPIN", 0, true},
	}
	for _, tt := range tests {
		got, err := bufq.ParseBackoff(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseBackoff(%q): err %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Fatalf("ParseBackoff(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, b := range []bufq.Backoff{bufq.BackoffSpin, bufq.BackoffYield, bufq.BackoffPark} {
		got, err := bufq.ParseBackoff(b.String())
		if err != nil || got != b {
			t.Fatalf("ParseBackoff(%v.String()): got (%v, %v)", b, got, err)
		}
	}
	if s := bufq.Backoff(9).String(); s != "Backoff(9)" {
		t.Fatalf("unknown Backoff String: got %q", s)
	}
}
