// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"log/slog"

	"github.com/wingyippp/pcmchain/engine"
	"github.com/wingyippp/pcmchain/internal/observe"
	"github.com/wingyippp/pcmchain/pcm"
)

// Stage is one transform in a chain. The host drives a stage from a single
// goroutine: Configure, Flush, then QueueInput/Output pairs, optionally
// QueueEndOfStream and Output until IsEnded, and finally Reset.
type Stage interface {
	// Configure negotiates the input format and returns the output format,
	// or pcm.NotSet when the stage will contribute nothing. The new formats
	// take effect at the next Flush.
	Configure(in pcm.Format) (pcm.Format, error)

	// IsActive reports whether the last Configure left the stage with an
	// output format.
	IsActive() bool

	// QueueInput consumes all of in; in is borrowed for the call only.
	QueueInput(in *pcm.Buffer)

	QueueEndOfStream()

	// Output returns the pending output ready to read, at most once, and
	// pcm.Empty afterwards. The buffer stays owned by the stage and is valid
	// until the next QueueInput.
	Output() *pcm.Buffer

	// IsEnded reports end of stream queued and all output drained.
	IsEnded() bool

	// Flush drops pending output and adopts the last configured formats.
	Flush()

	// Reset returns the stage to its unconfigured state.
	Reset()
}

// Toggle is a stage with a runtime on/off switch independent of activity.
type Toggle interface {
	SetEnabled(enabled bool)
	Enabled() bool
}

// Tunable is a stage whose transform takes parameters at runtime.
type Tunable interface {
	SetParameters(gain, frequency, q float32) error
}

// Named stages label their log lines and metrics.
type Named interface {
	Name() string
}

type options struct {
	logger   *slog.Logger
	gain     float32
	upgrade  bool
	enabled  bool
	registry *engine.Registry
	params   *parameters
	metrics  *observe.Metrics
}

// Option configures a stage. Options a stage has no use for are ignored.
type Option func(*options)

// WithLogger sets the stage logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithGain sets the software gain of a GainReducer.
func WithGain(gain float32) Option {
	return func(o *options) {
		o.gain = gain
	}
}

// WithUpgrade makes a GainReducer output Float for PCM16 input.
func WithUpgrade() Option {
	return func(o *options) {
		o.upgrade = true
	}
}

// WithEnabled sets the initial state of a Toggle stage.
func WithEnabled(enabled bool) Option {
	return func(o *options) {
		o.enabled = enabled
	}
}

// WithEngine routes the transform through handles of reg instead of the
// local codec.
func WithEngine(reg *engine.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithParameters sets the engine parameters applied to every handle the
// stage acquires, until SetParameters replaces them. Stages without an
// engine ignore it.
func WithParameters(gain, frequency, q float32) Option {
	return func(o *options) {
		o.params = &parameters{gain: gain, frequency: frequency, q: q}
	}
}

// WithMetrics records chain throughput on m. Stages ignore it.
func WithMetrics(m *observe.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func newOptions(opts []Option) options {
	o := options{gain: engine.DefaultLoudnessGain}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.metrics == nil {
		o.metrics = observe.Noop()
	}
	return o
}

// base carries the lifecycle every stage shares: pending and current
// formats, the reusable output region and the end-of-stream flag.
type base struct {
	logger *slog.Logger

	pendingIn, pendingOut pcm.Format
	in, out               pcm.Format

	region     *pcm.Buffer // reused across calls
	output     *pcm.Buffer // region or pcm.Empty
	inputEnded bool
}

func newBase(logger *slog.Logger) base {
	return base{logger: logger, region: pcm.Empty, output: pcm.Empty}
}

func (b *base) configure(in, out pcm.Format) pcm.Format {
	b.pendingIn = in
	b.pendingOut = out
	return out
}

func (b *base) IsActive() bool { return b.pendingOut.IsSet() }

// InputFormat and OutputFormat are the formats in effect since the last
// Flush.
func (b *base) InputFormat() pcm.Format  { return b.in }
func (b *base) OutputFormat() pcm.Format { return b.out }

func (b *base) QueueEndOfStream() { b.inputEnded = true }

func (b *base) Output() *pcm.Buffer {
	out := b.output
	b.output = pcm.Empty
	return out
}

func (b *base) IsEnded() bool {
	return b.inputEnded && b.output == pcm.Empty
}

func (b *base) flush() {
	b.output = pcm.Empty
	b.inputEnded = false
	b.in = b.pendingIn
	b.out = b.pendingOut
}

func (b *base) reset() {
	b.flush()
	b.pendingIn, b.pendingOut = pcm.NotSet, pcm.NotSet
	b.in, b.out = pcm.NotSet, pcm.NotSet
	b.region = pcm.Empty
}

// replaceOutputBuffer returns a cleared region of exactly size bytes,
// reusing the previous one when it is big enough. With grow set a new
// region doubles the old capacity instead of matching size.
func (b *base) replaceOutputBuffer(size int, grow bool) *pcm.Buffer {
	if b.region == pcm.Empty || b.region.Capacity() < size {
		capacity := size
		if grow {
			capacity = max(size, 2*b.region.Capacity())
		}
		b.region = pcm.NewBuffer(capacity)
	}
	b.region.Clear()
	b.region.SetLimit(size)
	return b.region
}

// emit publishes the region written up to its position.
func (b *base) emit(buf *pcm.Buffer) {
	buf.Flip()
	if buf.HasRemaining() {
		b.output = buf
	}
}

// copyThrough passes in verbatim.
func (b *base) copyThrough(in *pcm.Buffer) {
	n := in.Remaining()
	if n == 0 {
		return
	}
	out := b.replaceOutputBuffer(n, false)
	out.Put(in)
	b.emit(out)
}
