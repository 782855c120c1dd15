// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bufq

import (
	"fmt"
	"runtime"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"
)

// Backoff selects what a contended retry loop does between attempts.
//
// Backoff only applies while racing a peer producer, consumer or lock
// holder. A queue that is genuinely full or empty never waits; it returns
// [ErrWouldBlock] at once.
type Backoff uint8

const (
	// BackoffSpin issues a CPU pause hint and retries (default).
	BackoffSpin Backoff = iota
	// BackoffYield hands the processor to another goroutine.
	BackoffYield
	// BackoffPark sleeps with an adaptive, growing interval.
	BackoffPark
)

// String returns the flag-friendly name of b.
func (b Backoff) String() string {
	switch b {
	case BackoffSpin:
		return "spin"
	case BackoffYield:
		return "yield"
	case BackoffPark:
		return "park"
	default:
		return fmt.Sprintf("Backoff(%d)", uint8(b))
	}
}

// ParseBackoff maps "spin", "yield" or "park" to a Backoff.
func ParseBackoff(s string) (Backoff, error) {
	switch s {
	case "spin", "":
		return BackoffSpin, nil
	case "yield":
		return BackoffYield, nil
	case "park":
		return BackoffPark, nil
	}
	return BackoffSpin, fmt.Errorf("bufq: unknown backoff %q", s)
}

// waiter is the per-call state of a retry loop.
type waiter struct {
	kind Backoff
	sw   spin.Wait
	bo   iox.Backoff
}

func (b Backoff) waiter() waiter {
	return waiter{kind: b}
}

// Once performs one backoff step.
func (w *waiter) Once() {
	switch w.kind {
	case BackoffYield:
		runtime.Gosched()
	case BackoffPark:
		w.bo.Wait()
	default:
		w.sw.Once()
	}
}
