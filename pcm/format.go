// SPDX-License-Identifier: EPL-2.0

package pcm

import "fmt"

// Encoding identifies the sample layout of interleaved PCM data.
type Encoding int

const (
	// EncodingInvalid is the zero value and is never accepted by a stage.
	EncodingInvalid Encoding = iota
	// EncodingPCM16 is signed 16-bit little-endian integer PCM.
	EncodingPCM16
	// EncodingFloat is 32-bit IEEE-754 little-endian PCM, conventionally in [-1, 1].
	EncodingFloat
)

// BytesPerSample returns the size of one sample, or 0 for unknown encodings.
func (e Encoding) BytesPerSample() int {
	switch e {
	case EncodingPCM16:
		return 2
	case EncodingFloat:
		return 4
	default:
		return 0
	}
}

// IsValid reports whether e is one of the encodings the pipeline handles.
func (e Encoding) IsValid() bool {
	return e == EncodingPCM16 || e == EncodingFloat
}

func (e Encoding) String() string {
	switch e {
	case EncodingPCM16:
		return "pcm16"
	case EncodingFloat:
		return "float"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// Format describes a negotiated PCM stream. Formats are plain values and
// compare with ==; two formats are pass-through compatible only when equal.
type Format struct {
	SampleRate   int
	ChannelCount int
	Encoding     Encoding
}

// NotSet is the sentinel returned by a stage that contributes nothing for
// the format it was offered.
var NotSet = Format{}

// IsSet reports whether f differs from NotSet.
func (f Format) IsSet() bool { return f != NotSet }

// BytesPerFrame is ChannelCount × the encoding's sample size.
func (f Format) BytesPerFrame() int {
	return f.ChannelCount * f.Encoding.BytesPerSample()
}

// WithEncoding returns a copy of f using enc.
func (f Format) WithEncoding(enc Encoding) Format {
	f.Encoding = enc
	return f
}

func (f Format) String() string {
	if !f.IsSet() {
		return "NOT_SET"
	}
	return fmt.Sprintf("%dHz/%dch/%s", f.SampleRate, f.ChannelCount, f.Encoding)
}
