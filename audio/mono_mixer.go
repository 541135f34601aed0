// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/wingyippp/pcmchain/pcm"
)

// MonoMixer averages all channels of src into one. PCM16 is averaged in
// integer arithmetic, so stereo sums are exact before the halving.
type MonoMixer struct {
	src    Source
	format pcm.Format
	tmp    []byte
}

func NewMonoMixer(src Source) *MonoMixer {
	f := src.Format()
	f.ChannelCount = 1
	return &MonoMixer{
		src:    src,
		format: f,
		tmp:    make([]byte, 8192),
	}
}

func (m *MonoMixer) Format() pcm.Format { return m.format }
func (m *MonoMixer) BufSize() int       { return m.src.BufSize() }

func (m *MonoMixer) Close() error {
	err := m.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (m *MonoMixer) Read(dst []byte) (int, error) {
	in := m.src.Format()
	if in.ChannelCount == 1 {
		return m.src.Read(dst)
	}

	sampleSize := m.format.BytesPerFrame()
	if len(dst) < sampleSize {
		return 0, ErrInvalidDstSize
	}

	channels := in.ChannelCount
	frames := len(dst) / sampleSize
	needed := frames * in.BytesPerFrame()

	// grow, never shrink
	if cap(m.tmp) < needed {
		m.tmp = make([]byte, max(needed, 8192))
	}
	m.tmp = m.tmp[:needed]

	n, err := m.src.Read(m.tmp)
	frames = n / in.BytesPerFrame()
	if frames == 0 {
		return 0, err
	}

	switch in.Encoding {
	case pcm.EncodingPCM16:
		for f := range frames {
			var sum int32
			for c := range channels {
				sum += int32(int16(binary.LittleEndian.Uint16(m.tmp[(f*channels+c)*2:])))
			}
			binary.LittleEndian.PutUint16(dst[f*2:], uint16(int16(sum/int32(channels))))
		}
	case pcm.EncodingFloat:
		inv := float32(1.0) / float32(channels)
		for f := range frames {
			var sum float32
			for c := range channels {
				sum += math.Float32frombits(binary.LittleEndian.Uint32(m.tmp[(f*channels+c)*4:]))
			}
			binary.LittleEndian.PutUint32(dst[f*4:], math.Float32bits(sum*inv))
		}
	}

	return frames * sampleSize, err
}
