// SPDX-License-Identifier: EPL-2.0

package pcmchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/wingyippp/pcmchain/audio"
	"github.com/wingyippp/pcmchain/pcm"
)

// ErrStalled is returned when a chain neither ends nor produces output
// after end of stream.
var ErrStalled = errors.New("chain stalled after end of stream")

// Render runs src through chain and collects the whole output in memory.
//
// It returns the chain output bytes and their format. The source is read
// until io.EOF but not closed.
//
// Example:
//
//	chain := audio.NewChain([]audio.Stage{audio.NewGainReducer(audio.WithEnabled(true))})
//	out, f, err := pcmchain.Render(src, chain, 4096)
func Render(src audio.Source, chain *audio.Chain, bufferSize int) ([]byte, pcm.Format, error) {
	var out bytes.Buffer
	f, err := RenderTo(context.Background(), src, chain, bufferSize, func(p []byte) error {
		_, err := out.Write(p)
		return err
	})
	if err != nil {
		return nil, f, err
	}
	return out.Bytes(), f, nil
}

// RenderTo drives chain the way a player does: configure it for the
// source format, feed buffers of up to bufferSize bytes and hand every
// output to sink, then signal end of stream and drain what is left.
//
// bufferSize is rounded down to whole frames; zero or less uses the
// source's BufSize. The slice given to sink is only valid for the call.
// ctx is checked between buffers. The chain is reset before RenderTo
// returns, releasing any engine handles its stages hold.
func RenderTo(ctx context.Context, src audio.Source, chain *audio.Chain, bufferSize int, sink func([]byte) error) (pcm.Format, error) {
	in := src.Format()
	out, err := chain.Configure(in)
	if err != nil {
		return pcm.NotSet, fmt.Errorf("configure chain for %v: %w", in, err)
	}
	defer chain.Reset()

	if bufferSize <= 0 {
		bufferSize = src.BufSize()
	}
	bpf := in.BytesPerFrame()
	bufferSize = max(bufferSize/bpf, 1) * bpf

	buf := pcm.Wrap(make([]byte, bufferSize))

	// drain hands pending chain output to sink and reports whether there
	// was any.
	drain := func() (bool, error) {
		o := chain.Output()
		if !o.HasRemaining() {
			return false, nil
		}
		err := sink(o.Bytes())
		o.SetPosition(o.Limit())
		if err != nil {
			return true, fmt.Errorf("sink: %w", err)
		}
		return true, nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		buf.Clear()
		n, rerr := src.Read(buf.Bytes())
		if n > 0 {
			buf.SetLimit(n)
			chain.QueueInput(buf)
			if _, err := drain(); err != nil {
				return out, err
			}
		}

		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return out, fmt.Errorf("read source: %w", rerr)
		}
	}

	chain.QueueEndOfStream()
	for !chain.IsEnded() {
		ok, err := drain()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, ErrStalled
		}
	}

	return out, nil
}
