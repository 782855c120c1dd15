// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bufq

import (
	"math"
	"sync"

	"code.hybscloud.com/atomix"
	"golang.org/x/sys/cpu"
)

// exclusive is bit 31 of the lock word. Bits 0-30 count shared holders.
const exclusive int32 = math.MinInt32

// RWSpinLock is a reader-writer spin lock on a single 32-bit word.
//
// Any number of goroutines may hold the lock shared, or exactly one may
// hold it exclusively. Waiters never park in the runtime scheduler; they
// retry with the configured [Backoff] instead. The zero value is an
// unlocked lock with spin backoff.
//
// Limitations:
//   - Not reentrant: calling Lock while holding it deadlocks.
//   - No fairness: a steady stream of readers can delay a writer forever.
//
// RWSpinLock suits short critical sections with low writer contention.
// It is independent of the queues in this package.
type RWSpinLock struct {
	_       cpu.CacheLinePad
	state   atomix.Int32
	backoff Backoff

	// confirmSpins counts iterations of the post-CAS reader drain wait in
	// Lock. The CAS only succeeds from zero, so it should stay at zero.
	confirmSpins atomix.Uint64
	_            cpu.CacheLinePad
}

// NewRWSpinLock returns an unlocked lock using the given backoff.
func NewRWSpinLock(backoff Backoff) *RWSpinLock {
	return &RWSpinLock{backoff: backoff}
}

// RLock acquires the lock shared.
func (l *RWSpinLock) RLock() {
	sw := l.backoff.waiter()
	for {
		s := l.state.LoadRelaxed()
		if s&exclusive != 0 {
			sw.Once()
			continue
		}
		if l.state.CompareAndSwapAcqRel(s, s+1) {
			return
		}
		sw.Once()
	}
}

// TryRLock makes one attempt to acquire the lock shared.
func (l *RWSpinLock) TryRLock() bool {
	s := l.state.LoadRelaxed()
	if s&exclusive != 0 {
		return false
	}
	return l.state.CompareAndSwapAcqRel(s, s+1)
}

// RUnlock releases one shared hold.
func (l *RWSpinLock) RUnlock() {
	l.state.AddAcqRel(-1)
}

// Lock acquires the lock exclusively.
// It succeeds only when there are no shared holders and no writer.
func (l *RWSpinLock) Lock() {
	sw := l.backoff.waiter()
	for !l.state.CompareAndSwapAcqRel(0, exclusive) {
		sw.Once()
	}
	for l.state.LoadAcquire() != exclusive {
		l.confirmSpins.Add(1)
		sw.Once()
	}
}

// TryLock makes one attempt to acquire the lock exclusively.
func (l *RWSpinLock) TryLock() bool {
	return l.state.CompareAndSwapAcqRel(0, exclusive)
}

// Unlock releases the exclusive hold.
func (l *RWSpinLock) Unlock() {
	l.state.StoreRelease(0)
}

// RLocker returns a [sync.Locker] that calls RLock and RUnlock.
func (l *RWSpinLock) RLocker() sync.Locker {
	return (*rlocker)(l)
}

type rlocker RWSpinLock

func (r *rlocker) Lock()   { (*RWSpinLock)(r).RLock() }
func (r *rlocker) Unlock() { (*RWSpinLock)(r).RUnlock() }
