// SPDX-License-Identifier: EPL-2.0

package audio

import "github.com/wingyippp/pcmchain/pcm"

// FormatConverter upgrades PCM16 to Float. Float input leaves it inactive.
type FormatConverter struct {
	base
}

func NewFormatConverter(opts ...Option) *FormatConverter {
	o := newOptions(opts)
	return &FormatConverter{base: newBase(o.logger)}
}

func (c *FormatConverter) Name() string { return "converter" }

func (c *FormatConverter) Configure(in pcm.Format) (pcm.Format, error) {
	if err := checkFormat(in); err != nil {
		return pcm.NotSet, err
	}
	if in.Encoding != pcm.EncodingPCM16 {
		return c.configure(in, pcm.NotSet), nil
	}
	return c.configure(in, in.WithEncoding(pcm.EncodingFloat)), nil
}

// QueueInput writes 4 output bytes for every 2 input bytes.
func (c *FormatConverter) QueueInput(in *pcm.Buffer) {
	if !c.out.IsSet() {
		c.copyThrough(in)
		return
	}

	if !in.HasRemaining() {
		return
	}
	c.emit(convertInto(&c.base, in))
}

func (c *FormatConverter) Flush() { c.flush() }
func (c *FormatConverter) Reset() { c.reset() }

// convertInto converts the remainder of in into b's output region and
// consumes in. in keeps its limit.
func convertInto(b *base, in *pcm.Buffer) *pcm.Buffer {
	out := b.replaceOutputBuffer(2*in.Remaining(), false)
	out.Advance(pcm.ConvertPCM16ToFloat(out.Bytes(), in.Bytes()))
	in.SetPosition(in.Limit())
	return out
}
