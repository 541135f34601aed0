// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/wingyippp/pcmchain/pcm"
)

// Writer encodes interleaved PCM bytes into a WAV file. The header sizes
// are patched on Close, so the destination must be seekable.
type Writer struct {
	enc     *gowav.Encoder
	format  pcm.Format
	buf     *goaudio.IntBuffer
	started bool
}

// NewWriter starts a WAV file in ws for audio in format f.
func NewWriter(ws io.WriteSeeker, f pcm.Format) (*Writer, error) {
	tag, err := formatTag(f)
	if err != nil {
		return nil, err
	}

	bits := 8 * f.Encoding.BytesPerSample()
	return &Writer{
		enc:    gowav.NewEncoder(ws, f.SampleRate, bits, f.ChannelCount, tag),
		format: f,
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: f.ChannelCount, SampleRate: f.SampleRate},
			SourceBitDepth: bits,
		},
	}, nil
}

// Write appends whole frames. Float samples are passed to the encoder as
// their IEEE bit patterns so they land in the file unchanged.
func (w *Writer) Write(p []byte) (int, error) {
	bpf := w.format.BytesPerFrame()
	if len(p)%bpf != 0 {
		return 0, fmt.Errorf("wav: write of %d bytes is not a whole number of %d-byte frames", len(p), bpf)
	}

	bps := w.format.Encoding.BytesPerSample()
	samples := len(p) / bps
	if cap(w.buf.Data) < samples {
		w.buf.Data = make([]int, samples)
	}
	w.buf.Data = w.buf.Data[:samples]

	for i := range samples {
		if w.format.Encoding == pcm.EncodingFloat {
			w.buf.Data[i] = int(int32(binary.LittleEndian.Uint32(p[i*4:])))
		} else {
			w.buf.Data[i] = int(int16(binary.LittleEndian.Uint16(p[i*2:])))
		}
	}

	if err := w.enc.Write(w.buf); err != nil {
		return 0, fmt.Errorf("wav: %w", err)
	}
	w.started = true
	return len(p), nil
}

// Close writes the final header sizes. It does not close the underlying
// writer.
func (w *Writer) Close() error {
	if !w.started {
		// an empty file still needs its data chunk
		w.buf.Data = w.buf.Data[:0]
		if err := w.enc.Write(w.buf); err != nil {
			return fmt.Errorf("wav: %w", err)
		}
	}
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}

func formatTag(f pcm.Format) (int, error) {
	switch f.Encoding {
	case pcm.EncodingPCM16:
		return formatPCM, nil
	case pcm.EncodingFloat:
		return formatFloat, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedEncoding, f.Encoding)
	}
}
