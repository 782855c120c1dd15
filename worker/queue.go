// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worker

import (
	"context"

	"code.hybscloud.com/bufq"
	"code.hybscloud.com/iox"
)

// ConsumeLoop returns a Loop that dequeues payloads from q into a buffer of
// bufSize bytes and passes each one to handle. The slice is reused; handle
// must copy anything it keeps. An empty queue is polled with iox.Backoff.
// The loop ends when ctx is done or handle returns an error.
func ConsumeLoop(q bufq.Consumer, bufSize int, handle func(p []byte) error) Loop {
	return func(ctx context.Context) error {
		buf := make([]byte, bufSize)
		backoff := iox.Backoff{}
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := q.Dequeue(buf)
			if err != nil {
				backoff.Wait()
				continue
			}
			backoff.Reset()
			if err := handle(buf[:n]); err != nil {
				return err
			}
		}
	}
}

// ProduceLoop returns a Loop that enqueues the payloads returned by next
// until next reports ok == false or ctx is done. A full queue is retried
// with iox.Backoff; the payload is not dropped.
func ProduceLoop(q bufq.Producer, next func() (p []byte, ok bool)) Loop {
	return func(ctx context.Context) error {
		backoff := iox.Backoff{}
		for {
			p, ok := next()
			if !ok {
				return nil
			}
			for {
				if _, err := q.Enqueue(p); err == nil {
					break
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				backoff.Wait()
			}
			backoff.Reset()
		}
	}
}
