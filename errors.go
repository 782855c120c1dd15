// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bufq

import "code.hybscloud.com/iox"

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For Push/Enqueue: the queue is full and the payload was dropped.
// For Pop/Dequeue: the queue is empty and the output buffer is untouched.
//
// Queue operations that fail report -1 bytes together with ErrWouldBlock.
// Full and empty are deliberately not distinguished; the caller knows which
// side of the queue it called.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    _, err := q.Enqueue(frame)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if bufq.IsWouldBlock(err) {
//	        backoff.Wait()
//	        continue
//	    }
//	    return err
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
