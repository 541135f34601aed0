// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"log/slog"

	"github.com/wingyippp/pcmchain/engine"
	"github.com/wingyippp/pcmchain/pcm"
)

// parameters are the engine settings a stage reapplies to every new handle.
type parameters struct {
	gain, frequency, q float32
}

// engineSlot is the engine handle held by one stage.
type engineSlot struct {
	reg    *engine.Registry
	handle *engine.Handle
	params *parameters
	logger *slog.Logger
}

// acquire gets a handle for f and applies the last parameters set. A
// handle still held from an earlier Configure is reported by the registry
// and then released.
func (e *engineSlot) acquire(owner any, f pcm.Format) error {
	h, err := e.reg.Acquire(owner, f)
	if err != nil {
		return err
	}
	if prev := e.handle; prev != nil {
		if err := e.reg.Release(prev); err != nil {
			e.logger.Error("release engine handle", "handle", prev.String(), "err", err)
		}
	}
	e.handle = h

	if p := e.params; p != nil {
		if err := e.reg.SetParameters(h, p.gain, p.frequency, p.q); err != nil {
			e.release()
			return err
		}
	}
	return nil
}

func (e *engineSlot) release() {
	if e.handle == nil {
		return
	}
	if err := e.reg.Release(e.handle); err != nil {
		e.logger.Error("release engine handle", "handle", e.handle.String(), "err", err)
	}
	e.handle = nil
}

func (e *engineSlot) flush() {
	if e.handle == nil {
		return
	}
	if err := e.reg.Flush(); err != nil {
		e.logger.Error("engine flush", "err", err)
	}
}

func (e *engineSlot) endOfStream() {
	if e.handle == nil {
		return
	}
	if err := e.reg.EndOfStream(); err != nil {
		e.logger.Error("engine end of stream", "err", err)
	}
}

func (e *engineSlot) setParameters(gain, frequency, q float32) error {
	if e.handle == nil {
		return ErrNotConfigured
	}
	if err := e.reg.SetParameters(e.handle, gain, frequency, q); err != nil {
		return err
	}
	e.params = &parameters{gain: gain, frequency: frequency, q: q}
	return nil
}

// process runs in[position:limit] through the engine into out[0:]. It
// reports false when the engine failed; callers then copy the input.
func (e *engineSlot) process(in, out []byte, position, limit int, enc pcm.Encoding) bool {
	if err := e.reg.Process(e.handle, in, out, position, limit, enc); err != nil {
		e.logger.Error("engine process", "handle", e.handle.String(), "err", err)
		return false
	}
	return true
}

// EngineBridge hands every buffer to an external engine through a handle
// acquired on each Configure.
//
// A buffer the engine fails to process is logged and passed on unchanged,
// so the stream keeps its length and timing. Such failures are not handle
// contract violations and never reach the registry's violation hook.
type EngineBridge struct {
	base
	slot engineSlot
}

func NewEngineBridge(reg *engine.Registry, opts ...Option) *EngineBridge {
	o := newOptions(opts)
	return &EngineBridge{
		base: newBase(o.logger),
		slot: engineSlot{reg: reg, params: o.params, logger: o.logger},
	}
}

func (b *EngineBridge) Name() string { return "engine" }

func (b *EngineBridge) Configure(in pcm.Format) (pcm.Format, error) {
	if err := checkFormat(in); err != nil {
		return pcm.NotSet, err
	}
	if err := b.slot.acquire(b, in); err != nil {
		return pcm.NotSet, fmt.Errorf("engine bridge: %w", err)
	}
	return b.configure(in, in), nil
}

func (b *EngineBridge) QueueInput(in *pcm.Buffer) {
	if !b.out.IsSet() || b.slot.handle == nil {
		b.copyThrough(in)
		return
	}

	n := in.Remaining()
	if n == 0 {
		return
	}

	out := b.replaceOutputBuffer(n, false)
	if !b.slot.process(in.Array(), out.Array(), in.Position(), in.Limit(), b.in.Encoding) {
		out.PutBytes(in.Bytes())
	} else {
		out.Advance(n)
	}
	in.SetPosition(in.Limit())
	b.emit(out)
}

func (b *EngineBridge) QueueEndOfStream() {
	b.slot.endOfStream()
	b.base.QueueEndOfStream()
}

func (b *EngineBridge) SetParameters(gain, frequency, q float32) error {
	return b.slot.setParameters(gain, frequency, q)
}

func (b *EngineBridge) Flush() {
	b.slot.flush()
	b.flush()
}

func (b *EngineBridge) Reset() {
	b.reset()
	b.slot.release()
}
