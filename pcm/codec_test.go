// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestPcm16ToFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input int16
		want  float32
	}{
		{name: "zero", input: 0, want: 0},
		{name: "min", input: math.MinInt16, want: -1},
		{name: "max", input: math.MaxInt16, want: 32767.0 / 32768.0},
		{name: "half positive", input: 16384, want: 0.5},
		{name: "half negative", input: -16384, want: -0.5},
		{name: "one thousand", input: 1000, want: 0.030517578},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Pcm16ToFloat(tt.input)
			if diff := math.Abs(float64(got - tt.want)); diff > 1e-7 {
				t.Errorf("Pcm16ToFloat(%d) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestPcm16ToFloatRange walks the whole int16 domain.
func TestPcm16ToFloatRange(t *testing.T) {
	t.Parallel()

	for x := math.MinInt16; x <= math.MaxInt16; x++ {
		got := Pcm16ToFloat(int16(x))
		if got < -1 || got > 1 {
			t.Fatalf("Pcm16ToFloat(%d) = %v, outside [-1, 1]", x, got)
		}
		if want := float32(float64(x) / 32768.0); got != want {
			t.Fatalf("Pcm16ToFloat(%d) = %v, want %v", x, got, want)
		}
	}
}

func TestApplyGain16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		sample int16
		gain   float32
		want   int16
	}{
		{name: "max halves down", sample: 32767, gain: 0.5, want: 16383},
		{name: "min halves exactly", sample: -32768, gain: 0.5, want: -16384},
		{name: "odd negative truncates toward zero", sample: -3, gain: 0.5, want: -1},
		{name: "odd positive truncates toward zero", sample: 3, gain: 0.5, want: 1},
		{name: "unity", sample: 1234, gain: 1, want: 1234},
		{name: "clamp high", sample: 20000, gain: 2, want: math.MaxInt16},
		{name: "clamp low", sample: -20000, gain: 2, want: math.MinInt16},
		{name: "zero gain", sample: 32767, gain: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ApplyGain16(tt.sample, tt.gain); got != tt.want {
				t.Errorf("ApplyGain16(%d, %v) = %d, want %d", tt.sample, tt.gain, got, tt.want)
			}
		})
	}
}

func TestApplyGainFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		sample float32
		gain   float32
		want   float32
	}{
		{name: "half", sample: 0.8, gain: 0.5, want: 0.4},
		{name: "clamp high", sample: 0.9, gain: 2, want: 1},
		{name: "clamp low", sample: -0.9, gain: 2, want: -1},
		{name: "out of range input clamps", sample: 3, gain: 1, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ApplyGainFloat(tt.sample, tt.gain)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("ApplyGainFloat(%v, %v) = %v, want %v", tt.sample, tt.gain, got, tt.want)
			}
		})
	}
}

func TestFloat32ToPCM16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input float32
		want  int16
	}{
		{input: 0, want: 0},
		{input: 1, want: math.MaxInt16},
		{input: 1.5, want: math.MaxInt16},
		{input: -1.5, want: -math.MaxInt16},
		{input: 0.5, want: 16383},
	}

	for _, tt := range tests {
		if got := Float32ToPCM16(tt.input); got != tt.want {
			t.Errorf("Float32ToPCM16(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestConvertPCM16ToFloat(t *testing.T) {
	t.Parallel()

	left16, right16 := int16(1000), int16(-1000)
	src := make([]byte, 4)
	binary.LittleEndian.PutUint16(src[0:], uint16(left16))
	binary.LittleEndian.PutUint16(src[2:], uint16(right16))

	dst := make([]byte, 8)
	n := ConvertPCM16ToFloat(dst, src)
	if n != 8 {
		t.Fatalf("ConvertPCM16ToFloat() wrote %d bytes, want 8", n)
	}

	left := math.Float32frombits(binary.LittleEndian.Uint32(dst[0:]))
	right := math.Float32frombits(binary.LittleEndian.Uint32(dst[4:]))
	if left != 1000.0/32768.0 || right != -1000.0/32768.0 {
		t.Errorf("ConvertPCM16ToFloat() = {%v, %v}, want {%v, %v}", left, right, 1000.0/32768.0, -1000.0/32768.0)
	}
}

func TestConvertPCM16ToFloat_Empty(t *testing.T) {
	t.Parallel()

	if n := ConvertPCM16ToFloat(nil, nil); n != 0 {
		t.Errorf("ConvertPCM16ToFloat(nil, nil) = %d, want 0", n)
	}
}

func TestGainPCM16_InPlace(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 6)
	for i, s := range []int16{32767, -32768, 101} {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(s))
	}

	if n := GainPCM16(buf, buf, 0.5); n != 6 {
		t.Fatalf("GainPCM16() = %d, want 6", n)
	}

	want := []int16{16383, -16384, 50}
	for i, w := range want {
		if got := int16(binary.LittleEndian.Uint16(buf[2*i:])); got != w {
			t.Errorf("sample %d = %d, want %d", i, got, w)
		}
	}
}

func TestGainFloat_InPlace(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(0.5))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(-0.9))

	GainFloat(buf, buf, 2)

	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])); got != 1 {
		t.Errorf("sample 0 = %v, want 1", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])); got != -1 {
		t.Errorf("sample 1 = %v, want -1", got)
	}
}

// TestApplyGain16_ZeroAllocs verifies no heap allocations
func TestApplyGain16_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	src := make([]byte, 1024)
	dst := make([]byte, 1024)

	allocs := testing.AllocsPerRun(100, func() {
		GainPCM16(dst, src, 0.5)
	})

	if allocs > 0 {
		t.Errorf("GainPCM16 allocated %v times, want 0", allocs)
	}
}

func BenchmarkConvertPCM16ToFloat(b *testing.B) {
	// 10ms of 48kHz stereo
	src := make([]byte, 480*2*2)
	dst := make([]byte, len(src)*2)

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		ConvertPCM16ToFloat(dst, src)
	}
}
