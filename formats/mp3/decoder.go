// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/wingyippp/pcmchain/audio"
	"github.com/wingyippp/pcmchain/pcm"
)

// go-mp3 always produces interleaved stereo PCM16.
const channels = 2

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec    mp3Reader
	format pcm.Format
}

func newSource(dec mp3Reader) *source {
	return &source{
		dec: dec,
		format: pcm.Format{
			SampleRate:   dec.SampleRate(),
			ChannelCount: channels,
			Encoding:     pcm.EncodingPCM16,
		},
	}
}

func (s *source) Format() pcm.Format { return s.format }
func (s *source) Close() error       { return nil }
func (s *source) BufSize() int       { return 8192 }

// Read fills dst with whole frames; the decoder may return any byte count
// per call, so reads are repeated until the frames are complete.
func (s *source) Read(dst []byte) (int, error) {
	bpf := s.format.BytesPerFrame()
	if len(dst) < bpf {
		return 0, audio.ErrInvalidDstSize
	}

	n, err := io.ReadFull(s.dec, dst[:len(dst)/bpf*bpf])
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return n / bpf * bpf, io.EOF
	default:
		return n / bpf * bpf, fmt.Errorf("%w", err)
	}
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newSource(dec), nil
}
