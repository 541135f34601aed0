// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"

	"github.com/wingyippp/pcmchain/pcm"
)

// Shelf defaults for new BassBoost streams.
const (
	DefaultBassGainDB    = 12
	DefaultBassFrequency = 100
	DefaultBassQ         = 0.707
)

type bassStream struct {
	sampleRate int
	channels   []*biquad.Section
}

// lowShelf designs the RBJ low shelf. ok is false when the design is
// rejected: freq outside (0, sampleRate/2) or a non-finite result, which
// the designer answers with the identity section.
func lowShelf(freq, gainDB, q, sampleRate float64) (c biquad.Coefficients, ok bool) {
	c = design.LowShelf(freq, gainDB, q, sampleRate)
	return c, c != biquad.Identity()
}

// BassBoost is a software Engine applying a low-shelf biquad to every
// channel of an interleaved stream. PCM16 samples are filtered on a
// ±1.0 scale (divided by 32767) and clamped on the way back.
type BassBoost struct {
	streams table[bassStream]
}

func NewBassBoost() *BassBoost {
	return &BassBoost{}
}

// Configure designs the default shelf for sampleRate. A rate too low for
// the shelf frequency leaves the stream unfiltered.
func (b *BassBoost) Configure(sampleRate, channelCount, bytesPerFrame int) (RawHandle, error) {
	if err := validateStream(sampleRate, channelCount, bytesPerFrame); err != nil {
		return 0, err
	}

	c, _ := lowShelf(DefaultBassFrequency, DefaultBassGainDB, DefaultBassQ, float64(sampleRate))

	st := &bassStream{
		sampleRate: sampleRate,
		channels:   make([]*biquad.Section, channelCount),
	}
	for i := range st.channels {
		st.channels[i] = biquad.NewSection(c)
	}
	return b.streams.add(st), nil
}

func (b *BassBoost) Process(in, out []byte, position, limit int, enc pcm.Encoding, h RawHandle) error {
	st, err := b.streams.get(h)
	if err != nil {
		return err
	}
	if err := checkRange(in, out, position, limit); err != nil {
		return err
	}

	src := in[position:limit]
	channels := len(st.channels)

	switch enc {
	case pcm.EncodingPCM16:
		for i := 0; i+2 <= len(src); i += 2 {
			x := float64(int16(binary.LittleEndian.Uint16(src[i:]))) / math.MaxInt16
			y := st.channels[(i/2)%channels].ProcessSample(x) * math.MaxInt16
			binary.LittleEndian.PutUint16(out[i:], uint16(clamp16(y)))
		}
	case pcm.EncodingFloat:
		for i := 0; i+4 <= len(src); i += 4 {
			x := float64(math.Float32frombits(binary.LittleEndian.Uint32(src[i:])))
			y := st.channels[(i/4)%channels].ProcessSample(x)
			binary.LittleEndian.PutUint32(out[i:], math.Float32bits(float32(y)))
		}
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedEncoding, enc)
	}

	for _, sec := range st.channels {
		sec.FlushDenormals()
	}
	return nil
}

func (b *BassBoost) Reset(h RawHandle) error {
	return b.streams.remove(h)
}

// Flush clears the filter history of every stream; the shelf design is
// kept.
func (b *BassBoost) Flush() error {
	b.streams.each(func(st *bassStream) {
		for _, sec := range st.channels {
			sec.Reset()
		}
	})
	return nil
}

func (b *BassBoost) EndOfStream() error { return nil }

// SetParameters redesigns the shelf of h: gain in dB, frequency in Hz.
// The filter history carries over so there is no click at the switch.
func (b *BassBoost) SetParameters(sampleRate int, gain, frequency, q float32, h RawHandle) error {
	st, err := b.streams.get(h)
	if err != nil {
		return err
	}
	if sampleRate <= 0 {
		sampleRate = st.sampleRate
	}

	c, ok := lowShelf(float64(frequency), float64(gain), float64(q), float64(sampleRate))
	if !ok {
		return fmt.Errorf("%w: shelf %vHz at %dHz", ErrInvalidConfig, frequency, sampleRate)
	}
	for _, sec := range st.channels {
		sec.Coefficients = c
	}
	return nil
}

// Close drops the state of every stream.
func (b *BassBoost) Close() error {
	b.streams.clear()
	return nil
}

func clamp16(v float64) int16 {
	if v >= math.MaxInt16 {
		return math.MaxInt16
	}
	if v <= math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
