// SPDX-License-Identifier: EPL-2.0

package audio

import "github.com/wingyippp/pcmchain/pcm"

// PassThrough copies every buffer unchanged.
type PassThrough struct {
	base
}

func NewPassThrough(opts ...Option) *PassThrough {
	o := newOptions(opts)
	return &PassThrough{base: newBase(o.logger)}
}

func (p *PassThrough) Name() string { return "passthrough" }

func (p *PassThrough) Configure(in pcm.Format) (pcm.Format, error) {
	if err := checkFormat(in); err != nil {
		return pcm.NotSet, err
	}
	return p.configure(in, in), nil
}

func (p *PassThrough) QueueInput(in *pcm.Buffer) { p.copyThrough(in) }

func (p *PassThrough) Flush() { p.flush() }
func (p *PassThrough) Reset() { p.reset() }
