// SPDX-License-Identifier: EPL-2.0

package audio

import "github.com/wingyippp/pcmchain/pcm"

const stereoFrame16 = 4

// ChannelSwap exchanges left and right in a PCM16 stereo stream. Any other
// input leaves it inactive.
//
// Input is processed in whole frames; a trailing partial frame is dropped.
type ChannelSwap struct {
	base
}

func NewChannelSwap(opts ...Option) *ChannelSwap {
	o := newOptions(opts)
	return &ChannelSwap{base: newBase(o.logger)}
}

func (s *ChannelSwap) Name() string { return "swap" }

func (s *ChannelSwap) Configure(in pcm.Format) (pcm.Format, error) {
	if err := checkFormat(in); err != nil {
		return pcm.NotSet, err
	}

	if in.Encoding != pcm.EncodingPCM16 {
		s.logger.Debug("channel swap inactive", "format", in.String(), "reason", "not pcm16")
		return s.configure(in, pcm.NotSet), nil
	}
	if in.ChannelCount != 2 {
		s.logger.Warn("channel swap inactive", "format", in.String(), "err", ErrInvalidChannelLayout)
		return s.configure(in, pcm.NotSet), nil
	}

	return s.configure(in, in), nil
}

func (s *ChannelSwap) QueueInput(in *pcm.Buffer) {
	if !s.out.IsSet() {
		s.copyThrough(in)
		return
	}
	if !in.HasRemaining() {
		return
	}

	size := in.Remaining() / stereoFrame16 * stereoFrame16
	out := s.replaceOutputBuffer(size, true)

	src, dst := in.Bytes(), out.Bytes()
	for i := 0; i < size; i += stereoFrame16 {
		dst[i], dst[i+1] = src[i+2], src[i+3]
		dst[i+2], dst[i+3] = src[i], src[i+1]
	}

	out.Advance(size)
	in.SetPosition(in.Limit())
	s.emit(out)
}

func (s *ChannelSwap) Flush() { s.flush() }
func (s *ChannelSwap) Reset() { s.reset() }
