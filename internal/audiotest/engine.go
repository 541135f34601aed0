// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"sync"

	"github.com/wingyippp/pcmchain/engine"
	"github.com/wingyippp/pcmchain/pcm"
)

// Call is one recorded engine call.
type Call struct {
	Op     string
	Handle engine.RawHandle
	Bytes  int
	Gain   float32
}

// RecordingEngine wraps an engine and records every call that reaches it.
// With a nil inner engine it copies input to output unchanged.
type RecordingEngine struct {
	inner engine.Engine

	mtx   sync.Mutex
	next  engine.RawHandle
	calls []Call
}

func NewRecordingEngine(inner engine.Engine) *RecordingEngine {
	return &RecordingEngine{inner: inner}
}

func (r *RecordingEngine) record(c Call) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.calls = append(r.calls, c)
}

// Calls returns a copy of the recorded calls.
func (r *RecordingEngine) Calls() []Call {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many calls of op were recorded.
func (r *RecordingEngine) Count(op string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (r *RecordingEngine) Configure(sampleRate, channelCount, bytesPerFrame int) (engine.RawHandle, error) {
	var h engine.RawHandle
	if r.inner != nil {
		var err error
		if h, err = r.inner.Configure(sampleRate, channelCount, bytesPerFrame); err != nil {
			return 0, err
		}
	} else {
		r.mtx.Lock()
		r.next++
		h = r.next
		r.mtx.Unlock()
	}
	r.record(Call{Op: "configure", Handle: h, Bytes: bytesPerFrame})
	return h, nil
}

func (r *RecordingEngine) Process(in, out []byte, position, limit int, enc pcm.Encoding, h engine.RawHandle) error {
	r.record(Call{Op: "process", Handle: h, Bytes: limit - position})
	if r.inner != nil {
		return r.inner.Process(in, out, position, limit, enc, h)
	}
	copy(out, in[position:limit])
	return nil
}

func (r *RecordingEngine) Reset(h engine.RawHandle) error {
	r.record(Call{Op: "reset", Handle: h})
	if r.inner != nil {
		return r.inner.Reset(h)
	}
	return nil
}

func (r *RecordingEngine) Flush() error {
	r.record(Call{Op: "flush"})
	if r.inner != nil {
		return r.inner.Flush()
	}
	return nil
}

func (r *RecordingEngine) EndOfStream() error {
	r.record(Call{Op: "eos"})
	if r.inner != nil {
		return r.inner.EndOfStream()
	}
	return nil
}

func (r *RecordingEngine) SetParameters(sampleRate int, gain, frequency, q float32, h engine.RawHandle) error {
	r.record(Call{Op: "params", Handle: h, Gain: gain})
	if r.inner != nil {
		return r.inner.SetParameters(sampleRate, gain, frequency, q, h)
	}
	return nil
}

// Violations collects registry contract violations instead of panicking.
type Violations struct {
	mtx  sync.Mutex
	errs []error
}

// Hook is passed to engine.WithViolationHook.
func (v *Violations) Hook(err error) {
	v.mtx.Lock()
	defer v.mtx.Unlock()
	v.errs = append(v.errs, err)
}

// Count returns how many violations match target.
func (v *Violations) Count(target error) int {
	v.mtx.Lock()
	defer v.mtx.Unlock()
	n := 0
	for _, err := range v.errs {
		if errors.Is(err, target) {
			n++
		}
	}
	return n
}

// Len returns the number of violations seen.
func (v *Violations) Len() int {
	v.mtx.Lock()
	defer v.mtx.Unlock()
	return len(v.errs)
}
