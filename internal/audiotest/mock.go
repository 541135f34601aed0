// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides PCM sources and engine doubles for tests.
package audiotest

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/wingyippp/pcmchain/pcm"
)

// MockSource generates PCM bytes from a waveform. It implements the
// audio.Source interface (without importing it to avoid cycles).
type MockSource struct {
	format      pcm.Format
	totalFrames int
	generated   int // frames generated so far
	waveform    func(frame int, channel int) float32
	closed      bool
}

// NewMockSource creates a source of totalFrames frames in format f.
// waveform returns the sample for a frame index and channel in [-1, 1].
func NewMockSource(f pcm.Format, totalFrames int, waveform func(frame int, channel int) float32) *MockSource {
	return &MockSource{
		format:      f,
		totalFrames: totalFrames,
		waveform:    waveform,
	}
}

// NewSilentSource creates a mock source that generates silence.
func NewSilentSource(f pcm.Format, totalFrames int) *MockSource {
	return NewMockSource(f, totalFrames, func(int, int) float32 {
		return 0.0
	})
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(f pcm.Format, totalFrames int, frequency float64) *MockSource {
	return NewMockSource(f, totalFrames, func(frame int, _ int) float32 {
		t := float64(frame) / float64(f.SampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(f pcm.Format, totalFrames int, value float32) *MockSource {
	return NewMockSource(f, totalFrames, func(int, int) float32 {
		return value
	})
}

func (m *MockSource) Format() pcm.Format { return m.format }
func (m *MockSource) BufSize() int       { return 4096 }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed }

// Reset rewinds the source to its first frame.
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) Read(dst []byte) (int, error) {
	if m.generated >= m.totalFrames {
		return 0, io.EOF
	}

	bpf := m.format.BytesPerFrame()
	framesToWrite := min(len(dst)/bpf, m.totalFrames-m.generated)
	bps := m.format.Encoding.BytesPerSample()

	for frame := range framesToWrite {
		for ch := range m.format.ChannelCount {
			v := m.waveform(m.generated+frame, ch)
			off := frame*bpf + ch*bps
			if m.format.Encoding == pcm.EncodingFloat {
				binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(v))
			} else {
				binary.LittleEndian.PutUint16(dst[off:], uint16(pcm.Float32ToPCM16(v)))
			}
		}
	}

	m.generated += framesToWrite
	n := framesToWrite * bpf

	if m.generated >= m.totalFrames {
		return n, io.EOF
	}

	return n, nil
}

// BytesSource replays fixed PCM bytes, at most chunk bytes per Read.
type BytesSource struct {
	format pcm.Format
	data   []byte
	chunk  int
	off    int
}

// NewBytesSource replays data in format f. chunk <= 0 means 4096 bytes.
func NewBytesSource(f pcm.Format, data []byte, chunk int) *BytesSource {
	if chunk <= 0 {
		chunk = 4096
	}
	return &BytesSource{format: f, data: data, chunk: chunk}
}

func (b *BytesSource) Format() pcm.Format { return b.format }
func (b *BytesSource) BufSize() int       { return b.chunk }
func (b *BytesSource) Close() error       { return nil }

func (b *BytesSource) Read(dst []byte) (int, error) {
	if b.off >= len(b.data) {
		return 0, io.EOF
	}
	bpf := b.format.BytesPerFrame()
	n := min(len(dst), b.chunk, len(b.data)-b.off) / bpf * bpf
	copy(dst, b.data[b.off:b.off+n])
	b.off += n
	if b.off >= len(b.data) {
		return n, io.EOF
	}
	return n, nil
}

// PCM16 encodes samples as little-endian PCM16 bytes.
func PCM16(samples ...int16) []byte {
	b := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(s))
	}
	return b
}

// Floats encodes samples as little-endian float32 bytes.
func Floats(samples ...float32) []byte {
	b := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(s))
	}
	return b
}

// PCM16Samples decodes little-endian PCM16 bytes.
func PCM16Samples(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[2*i:]))
	}
	return out
}

// FloatSamples decodes little-endian float32 bytes.
func FloatSamples(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out
}
