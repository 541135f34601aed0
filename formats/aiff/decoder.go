// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	goaiff "github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/wingyippp/pcmchain/audio"
	"github.com/wingyippp/pcmchain/pcm"
)

// aiffReader is an interface for goaiff.Decoder to allow testing
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec    aiffReader
	format pcm.Format
	ints   []int
	buf    goaudio.IntBuffer
	ended  bool
}

func newSource(dec aiffReader, sampleRate, channels int) *source {
	return &source{
		dec: dec,
		format: pcm.Format{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Encoding:     pcm.EncodingPCM16,
		},
	}
}

func (s *source) Format() pcm.Format { return s.format }
func (s *source) Close() error       { return nil }
func (s *source) BufSize() int       { return 4096 }

// Read fills dst with whole frames of little-endian PCM16. The big-endian
// samples of the file are decoded to ints by go-audio and packed again
// here.
func (s *source) Read(dst []byte) (int, error) {
	bpf := s.format.BytesPerFrame()
	if len(dst) < bpf {
		return 0, audio.ErrInvalidDstSize
	}
	if s.ended {
		return 0, io.EOF
	}

	want := len(dst) / bpf * s.format.ChannelCount
	if cap(s.ints) < want {
		s.ints = make([]int, want)
	}
	s.ints = s.ints[:want]

	got := 0
	for got < want {
		s.buf.Data = s.ints[got:want]
		n, err := s.dec.PCMBuffer(&s.buf)
		got += n
		if err != nil {
			return s.pack(dst, got), fmt.Errorf("%w", err)
		}
		if n == 0 {
			s.ended = true
			break
		}
	}

	n := s.pack(dst, got)
	if s.ended {
		return n, io.EOF
	}
	return n, nil
}

// pack writes the whole frames among the first samples ints to dst and
// returns the byte count.
func (s *source) pack(dst []byte, samples int) int {
	samples -= samples % s.format.ChannelCount
	for i, v := range s.ints[:samples] {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(int16(v)))
	}
	return 2 * samples
}

// Decoder reads uncompressed 16-bit AIFF files (and AIFF-C "sowt"/"NONE").
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		// go-audio seeks back to the COMM chunk
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(raw)
	}

	dec := goaiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	if dec.BitDepth != 16 {
		return nil, fmt.Errorf("%w: %d bit", ErrOnlyPCM16bitSupported, dec.BitDepth)
	}

	f := dec.Format()
	if f == nil || f.NumChannels < 1 || f.SampleRate < 1 {
		return nil, ErrUnsupportedAiffLayout
	}

	return newSource(dec, f.SampleRate, f.NumChannels), nil
}
