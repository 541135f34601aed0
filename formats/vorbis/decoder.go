// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/jfreymuth/oggvorbis"

	"github.com/wingyippp/pcmchain/audio"
	"github.com/wingyippp/pcmchain/pcm"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec     oggReader
	format  pcm.Format
	samples []float32 // decode scratch, reused across reads
}

func newSource(dec oggReader) *source {
	return &source{
		dec: dec,
		format: pcm.Format{
			SampleRate:   dec.SampleRate(),
			ChannelCount: dec.Channels(),
			Encoding:     pcm.EncodingFloat,
		},
		samples: make([]float32, 4096),
	}
}

func (s *source) Format() pcm.Format { return s.format }
func (s *source) Close() error       { return nil }
func (s *source) BufSize() int       { return cap(s.samples) * 4 }

// Read decodes whole frames into dst as little-endian float32. oggvorbis
// counts interleaved values, not frames, and clamps them to [-1, 1].
func (s *source) Read(dst []byte) (int, error) {
	bpf := s.format.BytesPerFrame()
	if len(dst) < bpf {
		return 0, audio.ErrInvalidDstSize
	}

	want := len(dst) / bpf * s.format.ChannelCount
	if cap(s.samples) < want {
		s.samples = make([]float32, want)
	}
	s.samples = s.samples[:want]

	n, err := s.dec.Read(s.samples)
	n -= n % s.format.ChannelCount
	for i, v := range s.samples[:n] {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(v))
	}

	if err != nil && err != io.EOF {
		return 4 * n, fmt.Errorf("%w", err)
	}
	return 4 * n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newSource(dec), nil
}
