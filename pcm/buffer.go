// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Buffer is a contiguous byte region with read/write cursors, in the style
// of a NIO byte buffer: 0 <= position <= limit <= capacity holds after every
// call. Samples are always little-endian.
//
// A cursor move or access that would break the invariant panics with an
// error wrapping ErrBufferOverflow or ErrBufferUnderflow. Buffer sizes in the
// pipeline are derived from input length and format, so a breach is a bug,
// not an input condition.
type Buffer struct {
	data     []byte
	position int
	limit    int
}

// Empty is the shared zero-capacity buffer handed out when a stage has
// nothing to return. Callers compare against it by identity.
var Empty = &Buffer{}

// NewBuffer allocates a buffer of the given capacity with position 0 and
// limit == capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{data: make([]byte, capacity), limit: capacity}
}

// Wrap exposes b as a buffer without copying. The result is ready to read:
// position 0, limit len(b).
func Wrap(b []byte) *Buffer {
	return &Buffer{data: b, limit: len(b)}
}

// Order is the byte order of every multi-byte sample in the buffer.
func (b *Buffer) Order() binary.ByteOrder { return binary.LittleEndian }

func (b *Buffer) Position() int  { return b.position }
func (b *Buffer) Limit() int     { return b.limit }
func (b *Buffer) Capacity() int  { return len(b.data) }
func (b *Buffer) Remaining() int { return b.limit - b.position }

// HasRemaining reports whether any bytes lie between position and limit.
func (b *Buffer) HasRemaining() bool { return b.position < b.limit }

// SetPosition moves the cursor to p, which must lie in [0, limit].
func (b *Buffer) SetPosition(p int) {
	if p < 0 || p > b.limit {
		panic(fmt.Errorf("%w: position %d outside [0, %d]", ErrBufferOverflow, p, b.limit))
	}
	b.position = p
}

// SetLimit sets the limit to l, which must lie in [0, capacity]. The
// position is pulled back to l if it was beyond it.
func (b *Buffer) SetLimit(l int) {
	if l < 0 || l > len(b.data) {
		panic(fmt.Errorf("%w: limit %d outside [0, %d]", ErrBufferOverflow, l, len(b.data)))
	}
	b.limit = l
	if b.position > l {
		b.position = l
	}
}

// Clear prepares the buffer for writing from the start.
func (b *Buffer) Clear() {
	b.position = 0
	b.limit = len(b.data)
}

// Flip turns a written buffer into a readable one: limit becomes the
// written length and position returns to 0.
func (b *Buffer) Flip() {
	b.limit = b.position
	b.position = 0
}

// Rewind moves position back to 0 leaving the limit alone.
func (b *Buffer) Rewind() { b.position = 0 }

// Bytes returns a view of [position, limit). Writes through the view are
// visible in the buffer; use Advance to move past bytes written this way.
func (b *Buffer) Bytes() []byte {
	return b.data[b.position:b.limit]
}

// Array returns the whole backing region regardless of the cursors, for
// callers that address it by absolute position and limit.
func (b *Buffer) Array() []byte { return b.data }

// Advance moves position forward by n bytes.
func (b *Buffer) Advance(n int) {
	b.SetPosition(b.position + n)
}

// Put copies src's remaining bytes into b and advances both cursors.
func (b *Buffer) Put(src *Buffer) {
	n := src.Remaining()
	b.reserve(n)
	copy(b.data[b.position:], src.data[src.position:src.limit])
	b.position += n
	src.position = src.limit
}

// PutBytes copies p at the current position and advances past it.
func (b *Buffer) PutBytes(p []byte) {
	b.reserve(len(p))
	b.position += copy(b.data[b.position:], p)
}

// PutInt16 writes v as two little-endian bytes.
func (b *Buffer) PutInt16(v int16) {
	b.reserve(2)
	binary.LittleEndian.PutUint16(b.data[b.position:], uint16(v))
	b.position += 2
}

// PutFloat32 writes v as four little-endian IEEE-754 bytes.
func (b *Buffer) PutFloat32(v float32) {
	b.reserve(4)
	binary.LittleEndian.PutUint32(b.data[b.position:], math.Float32bits(v))
	b.position += 4
}

// Int16At reads the sample starting at absolute byte index i.
func (b *Buffer) Int16At(i int) int16 {
	b.check(i, 2)
	return int16(binary.LittleEndian.Uint16(b.data[i:]))
}

// Float32At reads the float sample starting at absolute byte index i.
func (b *Buffer) Float32At(i int) float32 {
	b.check(i, 4)
	return math.Float32frombits(binary.LittleEndian.Uint32(b.data[i:]))
}

func (b *Buffer) reserve(n int) {
	if b.position+n > b.limit {
		panic(fmt.Errorf("%w: need %d bytes, %d remaining", ErrBufferOverflow, n, b.limit-b.position))
	}
}

func (b *Buffer) check(i, n int) {
	if i < 0 || i+n > b.limit {
		panic(fmt.Errorf("%w: read of %d bytes at %d, limit %d", ErrBufferUnderflow, n, i, b.limit))
	}
}

func (b *Buffer) String() string {
	return fmt.Sprintf("pcm.Buffer[pos=%d lim=%d cap=%d]", b.position, b.limit, len(b.data))
}
