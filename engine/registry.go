// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/wingyippp/pcmchain/pcm"
)

// Handle is an owned reference to engine-side state, bound to the owner
// that acquired it. It is valid from Acquire until Release; a Handle is
// never copied by value.
type Handle struct {
	raw    RawHandle
	gen    uint64
	format pcm.Format
	owner  any
	reg    *Registry

	live bool // guarded by reg.mtx
}

// Raw returns the engine identifier.
func (h *Handle) Raw() RawHandle { return h.raw }

// Generation is the registry-wide sequence number of the Acquire that
// produced h.
func (h *Handle) Generation() uint64 { return h.gen }

// Format is the stream format the handle was configured for.
func (h *Handle) Format() pcm.Format { return h.format }

// Valid reports whether h may still be used.
func (h *Handle) Valid() bool {
	if h == nil || h.reg == nil {
		return false
	}
	h.reg.mtx.Lock()
	defer h.reg.mtx.Unlock()
	return h.live
}

func (h *Handle) String() string {
	if h == nil {
		return "handle(nil)"
	}
	return fmt.Sprintf("handle(%d gen=%d)", h.raw, h.gen)
}

// Option configures a Registry.
type Option func(*Registry)

// WithViolationHook replaces the default reaction to contract violations,
// which is to panic. Tests use it to observe violations.
func WithViolationHook(fn func(error)) Option {
	return func(r *Registry) {
		r.onViolation = fn
	}
}

// WithLogger sets the logger used for handle lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// Registry hands out engine handles and enforces their lifetime: one live
// handle per owner, no use after Release.
//
// Engine calls are made without holding the registry lock, so an engine may
// call back into the registry from the same goroutine.
type Registry struct {
	eng         Engine
	logger      *slog.Logger
	onViolation func(error)

	mtx     sync.Mutex
	gen     uint64
	owners  map[any]*Handle
	handles map[*Handle]struct{}
}

// NewRegistry wraps e.
func NewRegistry(e Engine, opts ...Option) *Registry {
	r := &Registry{
		eng:     e,
		owners:  make(map[any]*Handle),
		handles: make(map[*Handle]struct{}),
		onViolation: func(err error) {
			panic(err)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Engine returns the wrapped engine.
func (r *Registry) Engine() Engine { return r.eng }

// Acquire configures engine state for f on behalf of owner. owner must be
// comparable; stages pass themselves.
func (r *Registry) Acquire(owner any, f pcm.Format) (*Handle, error) {
	r.mtx.Lock()
	prev, held := r.owners[owner]
	r.mtx.Unlock()
	if held {
		r.violate(fmt.Errorf("%w: %v", ErrHandleLeak, prev))
	}

	raw, err := r.eng.Configure(f.SampleRate, f.ChannelCount, f.BytesPerFrame())
	if err != nil {
		return nil, fmt.Errorf("engine configure %v: %w", f, err)
	}

	r.mtx.Lock()
	r.gen++
	h := &Handle{raw: raw, gen: r.gen, format: f, owner: owner, reg: r, live: true}
	r.owners[owner] = h
	r.handles[h] = struct{}{}
	r.mtx.Unlock()

	r.logger.Debug("engine handle acquired", "handle", h.raw, "generation", h.gen, "format", f.String())

	return h, nil
}

// Process forwards to Engine.Process after validating h.
func (r *Registry) Process(h *Handle, in, out []byte, position, limit int, enc pcm.Encoding) error {
	if !r.check(h, "process") {
		return fmt.Errorf("%w: process with %v", ErrStaleHandle, h)
	}
	if err := r.eng.Process(in, out, position, limit, enc, h.raw); err != nil {
		return fmt.Errorf("engine process %v: %w", h, err)
	}
	return nil
}

// SetParameters forwards to Engine.SetParameters with the handle's sample
// rate.
func (r *Registry) SetParameters(h *Handle, gain, frequency, q float32) error {
	if !r.check(h, "set parameters") {
		return fmt.Errorf("%w: set parameters with %v", ErrStaleHandle, h)
	}
	if err := r.eng.SetParameters(h.format.SampleRate, gain, frequency, q, h.raw); err != nil {
		return fmt.Errorf("engine set parameters %v: %w", h, err)
	}
	return nil
}

// Release resets the engine state behind h and invalidates it.
func (r *Registry) Release(h *Handle) error {
	if !r.check(h, "release") {
		return fmt.Errorf("%w: release of %v", ErrStaleHandle, h)
	}

	r.mtx.Lock()
	r.forget(h)
	r.mtx.Unlock()

	r.logger.Debug("engine handle released", "handle", h.raw, "generation", h.gen)

	if err := r.eng.Reset(h.raw); err != nil {
		return fmt.Errorf("engine reset %v: %w", h, err)
	}
	return nil
}

func (r *Registry) Flush() error {
	if err := r.eng.Flush(); err != nil {
		return fmt.Errorf("engine flush: %w", err)
	}
	return nil
}

func (r *Registry) EndOfStream() error {
	if err := r.eng.EndOfStream(); err != nil {
		return fmt.Errorf("engine end of stream: %w", err)
	}
	return nil
}

// Live returns the number of handles not yet released.
func (r *Registry) Live() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.handles)
}

// forget drops h from the live set. Callers hold r.mtx.
func (r *Registry) forget(h *Handle) {
	h.live = false
	delete(r.handles, h)
	if r.owners[h.owner] == h {
		delete(r.owners, h.owner)
	}
}

// check reports whether h is live and issued by r, reporting a violation
// otherwise.
func (r *Registry) check(h *Handle, op string) bool {
	ok := false
	if h != nil && h.reg == r {
		r.mtx.Lock()
		ok = h.live
		r.mtx.Unlock()
	}
	if !ok {
		r.violate(fmt.Errorf("%w: %s with %v", ErrStaleHandle, op, h))
	}
	return ok
}

func (r *Registry) violate(err error) {
	r.logger.Error("engine handle contract violated", "err", err)
	r.onViolation(err)
}
