// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"math"

	"github.com/wingyippp/pcmchain/pcm"
)

// DefaultLoudnessGain halves every sample.
const DefaultLoudnessGain = 0.5

type loudnessState struct {
	gain float32
}

// Loudness is a software Engine that scales every sample by a gain and
// clamps to the range of the encoding.
type Loudness struct {
	gain    float32
	streams table[loudnessState]
}

// NewLoudness returns a Loudness engine whose new streams start at
// DefaultLoudnessGain.
func NewLoudness() *Loudness {
	return &Loudness{gain: DefaultLoudnessGain}
}

// NewLoudnessWithGain is NewLoudness with a different starting gain.
func NewLoudnessWithGain(gain float32) (*Loudness, error) {
	if err := validGain(gain); err != nil {
		return nil, err
	}
	return &Loudness{gain: gain}, nil
}

func (l *Loudness) Configure(sampleRate, channelCount, bytesPerFrame int) (RawHandle, error) {
	if err := validateStream(sampleRate, channelCount, bytesPerFrame); err != nil {
		return 0, err
	}
	return l.streams.add(&loudnessState{gain: l.gain}), nil
}

func (l *Loudness) Process(in, out []byte, position, limit int, enc pcm.Encoding, h RawHandle) error {
	st, err := l.streams.get(h)
	if err != nil {
		return err
	}
	if err := checkRange(in, out, position, limit); err != nil {
		return err
	}

	switch enc {
	case pcm.EncodingPCM16:
		pcm.GainPCM16(out, in[position:limit], st.gain)
	case pcm.EncodingFloat:
		pcm.GainFloat(out, in[position:limit], st.gain)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedEncoding, enc)
	}
	return nil
}

func (l *Loudness) Reset(h RawHandle) error {
	return l.streams.remove(h)
}

func (l *Loudness) Flush() error       { return nil }
func (l *Loudness) EndOfStream() error { return nil }

// SetParameters changes the gain of h; frequency and q do not apply.
func (l *Loudness) SetParameters(_ int, gain, _, _ float32, h RawHandle) error {
	if err := validGain(gain); err != nil {
		return err
	}
	st, err := l.streams.get(h)
	if err != nil {
		return err
	}
	st.gain = gain
	return nil
}

// Close drops the state of every stream.
func (l *Loudness) Close() error {
	l.streams.clear()
	return nil
}

func validGain(gain float32) error {
	if gain < 0 || math.IsNaN(float64(gain)) || math.IsInf(float64(gain), 0) {
		return fmt.Errorf("%w: gain %v", ErrInvalidConfig, gain)
	}
	return nil
}
