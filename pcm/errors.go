// SPDX-License-Identifier: EPL-2.0

package pcm

import "errors"

var (
	// ErrBufferOverflow is the panic cause when a write or cursor move would
	// pass the buffer's limit or capacity.
	ErrBufferOverflow = errors.New("pcm: buffer overflow")
	// ErrBufferUnderflow is the panic cause when a read would pass the limit.
	ErrBufferUnderflow = errors.New("pcm: buffer underflow")
)
