// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package concq

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates a non-blocking operation could not proceed
// immediately: the channel is full (TryEnqueue) or empty (TryDequeue).
//
// ErrWouldBlock is a control flow signal, not a failure; retry later with
// backoff, or call the blocking variant instead.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency, same
// as the rest of this dependency family.
var ErrWouldBlock = iox.ErrWouldBlock

// ErrClosed indicates an enqueue was rejected because Close had already
// been called. It is returned by Enqueue/TryEnqueue/EnqueueWith/
// TryEnqueueWith once the channel transitions to closed; it is never
// returned by Dequeue, which instead reports closed-and-drained via its
// boolean ok return.
var ErrClosed = errors.New("concq: channel closed")

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsClosed reports whether err is ErrClosed.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}
