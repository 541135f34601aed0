package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/wingyippp/pcmchain/audio"
	"github.com/wingyippp/pcmchain/pcm"
)

// readAheadChunks bounds how far decoding may run ahead of the chain.
const readAheadChunks = 8

// readAhead decodes src in reads of size bytes and sends each chunk to out,
// closing out when src is drained.
func readAhead(ctx context.Context, src audio.Source, size int, out chan<- []byte) error {
	defer close(out)

	for {
		buf := make([]byte, size)
		n, err := src.Read(buf)
		if n > 0 {
			select {
			case out <- buf[:n]:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}
	}
}

var _ audio.Source = (*chanSource)(nil)

// chanSource replays the chunks of readAhead as an audio.Source.
type chanSource struct {
	ctx     context.Context
	format  pcm.Format
	size    int
	chunks  <-chan []byte
	pending []byte
}

func (c *chanSource) Format() pcm.Format { return c.format }
func (c *chanSource) BufSize() int       { return c.size }
func (c *chanSource) Close() error       { return nil }

func (c *chanSource) Read(dst []byte) (int, error) {
	if len(c.pending) == 0 {
		select {
		case chunk, ok := <-c.chunks:
			if !ok {
				return 0, io.EOF
			}
			c.pending = chunk
		case <-c.ctx.Done():
			return 0, c.ctx.Err()
		}
	}

	bpf := c.format.BytesPerFrame()
	n := min(len(dst), len(c.pending)) / bpf * bpf
	if n == 0 {
		return 0, audio.ErrInvalidDstSize
	}
	copy(dst, c.pending[:n])
	c.pending = c.pending[n:]
	return n, nil
}
