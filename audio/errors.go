// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"

	"github.com/wingyippp/pcmchain/pcm"
)

var (
	// ErrUnsupportedFormat is matched by every configure rejection.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrInvalidChannelLayout is logged, never returned: a stage that needs
	// a particular layout degrades to inactive instead.
	ErrInvalidChannelLayout = errors.New("invalid channel layout")

	// ErrNotConfigured is returned by SetParameters before the first
	// successful Configure.
	ErrNotConfigured = errors.New("stage not configured")

	// ErrInvalidParameter is returned by SetParameters for a negative or
	// non-finite gain.
	ErrInvalidParameter = errors.New("invalid stage parameter")

	ErrInvalidDstSize = errors.New("dst size must be a multiple of the frame size")
	ErrUnknownDecoder = errors.New("no decoder registered for format")
)

// UnsupportedFormatError is the rejection returned by Configure.
type UnsupportedFormatError struct {
	Format pcm.Format
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("unsupported audio format %v", e.Format)
	}
	return fmt.Sprintf("unsupported audio format %v: %s", e.Format, e.Reason)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// checkFormat rejects anything but a positive-rate PCM16 or Float format.
func checkFormat(f pcm.Format) error {
	switch {
	case !f.Encoding.IsValid():
		return &UnsupportedFormatError{Format: f, Reason: "encoding must be pcm16 or float"}
	case f.SampleRate <= 0:
		return &UnsupportedFormatError{Format: f, Reason: "sample rate must be positive"}
	case f.ChannelCount <= 0:
		return &UnsupportedFormatError{Format: f, Reason: "channel count must be positive"}
	}
	return nil
}
