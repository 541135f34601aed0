// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"

	"github.com/wingyippp/pcmchain/pcm"
)

// GainReducer scales loudness by a gain, in software or through an engine
// handle. With WithUpgrade it also turns PCM16 input into Float output.
//
// The stage starts disabled. Disabled, it passes audio through in the
// negotiated output format: same-encoding streams are copied verbatim and
// upgraded streams are still converted to Float, without gain.
//
// With an engine attached, a buffer the engine fails to process is logged
// and emitted without gain rather than dropped.
type GainReducer struct {
	base

	gain    float32
	upgrade bool
	enabled bool
	slot    *engineSlot
}

func NewGainReducer(opts ...Option) *GainReducer {
	o := newOptions(opts)
	g := &GainReducer{
		base:    newBase(o.logger),
		gain:    o.gain,
		upgrade: o.upgrade,
		enabled: o.enabled,
	}
	if o.registry != nil {
		g.slot = &engineSlot{reg: o.registry, params: o.params, logger: o.logger}
	}
	return g
}

func (g *GainReducer) Name() string { return "gain" }

func (g *GainReducer) SetEnabled(enabled bool) { g.enabled = enabled }
func (g *GainReducer) Enabled() bool           { return g.enabled }

// Gain returns the software gain. It is not consulted when an engine is
// attached.
func (g *GainReducer) Gain() float32 { return g.gain }

func (g *GainReducer) Configure(in pcm.Format) (pcm.Format, error) {
	if err := checkFormat(in); err != nil {
		return pcm.NotSet, err
	}

	out := in
	if g.upgrade && in.Encoding == pcm.EncodingPCM16 {
		out = in.WithEncoding(pcm.EncodingFloat)
	}

	if g.slot != nil {
		// the engine runs on the output format: upgraded audio is converted
		// before the gain is applied
		if err := g.slot.acquire(g, out); err != nil {
			return pcm.NotSet, fmt.Errorf("gain reducer: %w", err)
		}
	}

	return g.configure(in, out), nil
}

func (g *GainReducer) QueueInput(in *pcm.Buffer) {
	if !in.HasRemaining() {
		return
	}
	if !g.out.IsSet() {
		g.copyThrough(in)
		return
	}

	upgrading := g.in.Encoding != g.out.Encoding

	if !g.enabled {
		if upgrading {
			g.emit(convertInto(&g.base, in))
			return
		}
		g.copyThrough(in)
		return
	}

	if upgrading {
		out := convertInto(&g.base, in)
		g.applyGain(out.Array(), out.Array(), 0, out.Position(), pcm.EncodingFloat)
		g.emit(out)
		return
	}

	n := in.Remaining()
	out := g.replaceOutputBuffer(n, false)
	out.Advance(g.applyGain(in.Array(), out.Array(), in.Position(), in.Limit(), g.in.Encoding))
	in.SetPosition(in.Limit())
	g.emit(out)
}

// applyGain writes src[position:limit] with gain applied to dst[0:] and
// returns the bytes written.
func (g *GainReducer) applyGain(src, dst []byte, position, limit int, enc pcm.Encoding) int {
	n := limit - position
	if g.slot != nil && g.slot.handle != nil {
		if !g.slot.process(src, dst, position, limit, enc) {
			copy(dst, src[position:limit])
		}
		return n
	}

	if enc == pcm.EncodingFloat {
		return pcm.GainFloat(dst, src[position:limit], g.gain)
	}
	return pcm.GainPCM16(dst, src[position:limit], g.gain)
}

// SetParameters sets the gain. Frequency and q reach an attached engine
// and are ignored in software.
func (g *GainReducer) SetParameters(gain, frequency, q float32) error {
	if !g.pendingOut.IsSet() {
		return ErrNotConfigured
	}
	if g.slot != nil {
		return g.slot.setParameters(gain, frequency, q)
	}
	if gain < 0 || math.IsNaN(float64(gain)) || math.IsInf(float64(gain), 0) {
		return fmt.Errorf("%w: gain %v", ErrInvalidParameter, gain)
	}
	g.gain = gain
	return nil
}

func (g *GainReducer) QueueEndOfStream() {
	if g.slot != nil {
		g.slot.endOfStream()
	}
	g.base.QueueEndOfStream()
}

func (g *GainReducer) Flush() {
	if g.slot != nil {
		g.slot.flush()
	}
	g.flush()
}

func (g *GainReducer) Reset() {
	g.reset()
	if g.slot != nil {
		g.slot.release()
	}
}
