// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"encoding/binary"
	"math"
)

// Pcm16ToFloat normalises a signed 16-bit sample into [-1, 1).
func Pcm16ToFloat(x int16) float32 {
	return float32(x) / 32768.0
}

// Float32ToPCM16 scales a float sample back to 16 bits, clamping to [-1, 1]
// first. The pipeline only ever converts upwards; this is for host-side
// decoders and writers.
func Float32ToPCM16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// 32767 keeps +1.0 from overflowing
	return int16(x * 32767.0)
}

// ApplyGain16 multiplies x by gain, truncating toward zero and clamping to
// the signed 16-bit range.
func ApplyGain16(x int16, gain float32) int16 {
	v := float64(x) * float64(gain)
	if v >= math.MaxInt16 {
		return math.MaxInt16
	}
	if v <= math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// ApplyGainFloat multiplies x by gain and clamps the result to [-1, 1].
func ApplyGainFloat(x, gain float32) float32 {
	v := x * gain
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// ConvertPCM16ToFloat writes every whole 2-byte sample of src into dst as a
// 4-byte float and returns the number of bytes written. dst must hold at
// least 2×len(src) bytes.
func ConvertPCM16ToFloat(dst, src []byte) int {
	samples := len(src) / 2
	if samples == 0 {
		return 0
	}
	_ = dst[samples*4-1] // panics early on an undersized dst
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(src[2*i:]))
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(Pcm16ToFloat(s)))
	}
	return samples * 4
}

// GainPCM16 applies gain to every sample of src, writing to dst. src and dst
// may be the same slice.
func GainPCM16(dst, src []byte, gain float32) int {
	n := len(src) &^ 1
	for i := 0; i < n; i += 2 {
		s := int16(binary.LittleEndian.Uint16(src[i:]))
		binary.LittleEndian.PutUint16(dst[i:], uint16(ApplyGain16(s, gain)))
	}
	return n
}

// GainFloat applies gain to every float sample of src, writing to dst. src
// and dst may be the same slice.
func GainFloat(dst, src []byte, gain float32) int {
	n := len(src) &^ 3
	for i := 0; i < n; i += 4 {
		s := math.Float32frombits(binary.LittleEndian.Uint32(src[i:]))
		binary.LittleEndian.PutUint32(dst[i:], math.Float32bits(ApplyGainFloat(s, gain)))
	}
	return n
}
