// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/wingyippp/pcmchain/pcm"
)

// Resampler streams from src at another sample rate using cubic
// interpolation. Channel count and encoding are preserved. Includes basic
// anti-aliasing filtering when downsampling.
type Resampler struct {
	src      Source
	format   pcm.Format
	ratio    float64 // source frames per output frame
	channels int

	// Ring of 4 frames for cubic interpolation:
	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2
	frames   [4][]float32
	hasFrame [4]bool
	primed   bool

	// Position between frames[1] and frames[2], in source frames
	pos float64

	srcBuf       []byte
	srcPos, srcN int
	eof          bool

	// One-pole low-pass state, used when downsampling
	filterState  []float32
	filterPrimed bool
	useFilter    bool
	filterAlpha  float32
}

// NewResampler converts src to dstRate. PCM16 output is requantised, so
// wrap a source only when the rates differ.
func NewResampler(src Source, dstRate int) *Resampler {
	in := src.Format()
	channels := in.ChannelCount
	ratio := float64(in.SampleRate) / float64(dstRate)

	useFilter := ratio > 1.0
	var filterAlpha float32
	if useFilter {
		filterAlpha = 0.5
	}

	out := in
	out.SampleRate = dstRate

	r := &Resampler{
		src:         src,
		format:      out,
		ratio:       ratio,
		channels:    channels,
		srcBuf:      make([]byte, max(src.BufSize(), in.BytesPerFrame())),
		useFilter:   useFilter,
		filterAlpha: filterAlpha,
		filterState: make([]float32, channels),
	}
	r.srcBuf = r.srcBuf[:frameAligned(len(r.srcBuf), in)]

	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) Format() pcm.Format { return r.format }
func (r *Resampler) BufSize() int       { return r.src.BufSize() }

func (r *Resampler) Close() error {
	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// readFrame decodes the next source frame into dst.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	for r.srcPos >= r.srcN {
		if r.eof {
			return false, nil
		}
		n, err := r.src.Read(r.srcBuf)
		r.srcPos, r.srcN = 0, frameAligned(n, r.src.Format())
		if err == io.EOF {
			r.eof = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		}
	}

	bpf := r.src.Format().BytesPerFrame()
	decodeFrame(dst, r.srcBuf[r.srcPos:r.srcPos+bpf], r.format.Encoding)
	r.srcPos += bpf

	if r.useFilter {
		if !r.filterPrimed {
			// start the filter at the first sample, not at zero
			copy(r.filterState, dst)
			r.filterPrimed = true
		}
		for c := range r.channels {
			dst[c] = r.filterAlpha*dst[c] + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = dst[c]
		}
	}
	return true, nil
}

// fetchNextFrame shifts the ring and reads into frames[3].
func (r *Resampler) fetchNextFrame() error {
	if !r.hasFrame[3] && r.eof && r.srcPos >= r.srcN {
		return io.EOF
	}

	copy(r.frames[0], r.frames[1])
	copy(r.frames[1], r.frames[2])
	copy(r.frames[2], r.frames[3])
	r.hasFrame[0] = r.hasFrame[1]
	r.hasFrame[1] = r.hasFrame[2]
	r.hasFrame[2] = r.hasFrame[3]

	ok, err := r.readFrame(r.frames[3])
	if err != nil {
		return err
	}
	r.hasFrame[3] = ok
	return nil
}

func (r *Resampler) prime() error {
	r.primed = true
	for i := range r.frames {
		ok, err := r.readFrame(r.frames[i])
		if err != nil {
			return err
		}
		if !ok {
			if i == 0 {
				return io.EOF
			}
			// duplicate the last valid frame into the remaining slots
			for j := i; j < len(r.frames); j++ {
				copy(r.frames[j], r.frames[i-1])
				r.hasFrame[j] = true
			}
			return nil
		}
		r.hasFrame[i] = true
	}
	return nil
}

// Read produces whole frames at the target rate.
func (r *Resampler) Read(dst []byte) (int, error) {
	bpf := r.format.BytesPerFrame()
	if len(dst) < bpf {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / bpf
	var out [8]float32
	frame := out[:0]
	if r.channels <= len(out) {
		frame = out[:r.channels]
	} else {
		frame = make([]float32, r.channels)
	}

	for written < framesNeeded {
		for r.pos >= 1.0 {
			if err := r.fetchNextFrame(); err != nil {
				return written * bpf, err
			}
			r.pos -= 1.0
		}

		if !r.hasFrame[1] || !r.hasFrame[2] {
			return written * bpf, io.EOF
		}

		alpha := float32(r.pos)
		for c := range r.channels {
			y0 := r.frames[1][c]
			if r.hasFrame[0] {
				y0 = r.frames[0][c]
			}
			y3 := r.frames[2][c]
			if r.hasFrame[3] {
				y3 = r.frames[3][c]
			}
			frame[c] = cubicInterpolate(y0, r.frames[1][c], r.frames[2][c], y3, alpha)
		}
		encodeFrame(dst[written*bpf:], frame, r.format.Encoding)

		written++
		r.pos += r.ratio
	}

	return written * bpf, nil
}

// cubicInterpolate is a Catmull-Rom spline between y1 and y2; x in [0, 1].
func cubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}

func decodeFrame(dst []float32, src []byte, enc pcm.Encoding) {
	for c := range dst {
		if enc == pcm.EncodingFloat {
			dst[c] = math.Float32frombits(binary.LittleEndian.Uint32(src[4*c:]))
		} else {
			dst[c] = pcm.Pcm16ToFloat(int16(binary.LittleEndian.Uint16(src[2*c:])))
		}
	}
}

func encodeFrame(dst []byte, src []float32, enc pcm.Encoding) {
	for c, v := range src {
		if enc == pcm.EncodingFloat {
			binary.LittleEndian.PutUint32(dst[4*c:], math.Float32bits(v))
		} else {
			binary.LittleEndian.PutUint16(dst[2*c:], uint16(pcm.Float32ToPCM16(v)))
		}
	}
}
