// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	gowav "github.com/go-audio/wav"

	"github.com/wingyippp/pcmchain/audio"
	"github.com/wingyippp/pcmchain/pcm"
)

// WAVE format tags from the fmt chunk.
const (
	formatPCM   = 1
	formatFloat = 3
)

type source struct {
	data   io.Reader // the data chunk
	format pcm.Format
}

func (s *source) Format() pcm.Format { return s.format }
func (s *source) BufSize() int       { return 4096 }

// Close is a no-op; the caller owns the reader passed to Decode.
func (s *source) Close() error { return nil }

func (s *source) Read(dst []byte) (int, error) {
	bpf := s.format.BytesPerFrame()
	if len(dst) < bpf {
		return 0, audio.ErrInvalidDstSize
	}

	n, err := io.ReadFull(s.data, dst[:len(dst)/bpf*bpf])
	if errors.Is(err, io.ErrUnexpectedEOF) {
		// a trailing partial frame is dropped
		return n / bpf * bpf, io.EOF
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("%w", err)
	}
	return n, err
}

// Decoder reads PCM16 (format 1, 16 bit) and IEEE float (format 3, 32 bit)
// WAV files. Other sample formats are rejected with ErrUnsupportedWavFormat.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		// go-audio needs to seek past out-of-order chunks
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		rs = bytes.NewReader(raw)
	}

	d := gowav.NewDecoder(rs)
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}
	if d.NumChans < 1 || d.SampleRate < 1 {
		return nil, ErrNotWavFile
	}

	var enc pcm.Encoding
	switch {
	case d.WavAudioFormat == formatPCM && d.BitDepth == 16:
		enc = pcm.EncodingPCM16
	case d.WavAudioFormat == formatFloat && d.BitDepth == 32:
		enc = pcm.EncodingFloat
	default:
		return nil, fmt.Errorf("%w: format %d, %d bit", ErrUnsupportedWavFormat, d.WavAudioFormat, d.BitDepth)
	}

	if err := d.FwdToPCM(); err != nil || d.PCMChunk == nil {
		return nil, ErrMissingDataChunk
	}

	return &source{
		data: d.PCMChunk,
		format: pcm.Format{
			SampleRate:   int(d.SampleRate),
			ChannelCount: int(d.NumChans),
			Encoding:     enc,
		},
	}, nil
}
