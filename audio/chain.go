// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/wingyippp/pcmchain/internal/observe"
	"github.com/wingyippp/pcmchain/pcm"
)

// PlaybackParameters are the speed and pitch the host plays at. No stage
// alters them.
type PlaybackParameters struct {
	Speed float32
	Pitch float32
}

// Chain runs an ordered list of stages as one Stage. Stages left inactive
// by negotiation are skipped; with none active the chain copies input
// through.
type Chain struct {
	stages  []Stage
	active  []Stage
	logger  *slog.Logger
	metrics *observe.Metrics

	configured            bool
	pendingIn, pendingOut pcm.Format
	in, out               pcm.Format

	region     *pcm.Buffer // accumulates output in write mode
	pending    bool
	inputEnded bool
}

// NewChain builds a chain over stages. WithLogger and WithMetrics apply;
// other options are ignored.
func NewChain(stages []Stage, opts ...Option) *Chain {
	o := newOptions(opts)
	return &Chain{
		stages:  slices.Clone(stages),
		logger:  o.logger,
		metrics: o.metrics,
		region:  pcm.Empty,
	}
}

// Stages returns every stage in order.
func (c *Chain) Stages() []Stage { return slices.Clone(c.stages) }

// ActiveStages returns the stages that take part since the last Flush.
func (c *Chain) ActiveStages() []Stage { return slices.Clone(c.active) }

// Configure resets any earlier configuration, then negotiates f through
// every stage in order and flushes. A stage answering pcm.NotSet is
// skipped: the next stage sees the same format. When a stage rejects f the
// whole chain is left reset.
func (c *Chain) Configure(f pcm.Format) (pcm.Format, error) {
	ctx := context.Background()

	if c.configured {
		c.Reset()
	}
	if err := checkFormat(f); err != nil {
		c.metrics.RecordConfigure(ctx, "chain")
		return pcm.NotSet, err
	}

	c.configured = true
	cur := f
	for i, s := range c.stages {
		out, err := s.Configure(cur)
		if err != nil {
			name := stageName(s)
			c.logger.Warn("stage rejected format", "stage", name, "index", i, "format", cur.String(), "err", err)
			c.metrics.RecordConfigure(ctx, name)
			// stages before i may hold engine handles
			c.Reset()
			return pcm.NotSet, fmt.Errorf("stage %d (%s): %w", i, name, err)
		}
		if out.IsSet() {
			cur = out
		}
	}

	c.pendingIn, c.pendingOut = f, cur
	c.metrics.RecordConfigure(ctx, "")
	c.Flush()

	c.logger.Debug("chain configured", "in", f.String(), "out", cur.String(), "active", len(c.active))
	return cur, nil
}

// IsActive reports whether the chain is configured.
func (c *Chain) IsActive() bool { return c.pendingOut.IsSet() }

func (c *Chain) InputFormat() pcm.Format  { return c.in }
func (c *Chain) OutputFormat() pcm.Format { return c.out }

func (c *Chain) QueueInput(in *pcm.Buffer) {
	if !in.HasRemaining() {
		return
	}

	start := time.Now()
	if len(c.active) == 0 {
		c.appendOutput(in.Bytes())
		in.SetPosition(in.Limit())
	} else {
		c.process(0, in)
	}
	c.metrics.RecordProcess(context.Background(), time.Since(start))
}

// process feeds buf through active stages from index from onwards and
// collects what comes out of the last one.
func (c *Chain) process(from int, buf *pcm.Buffer) {
	ctx := context.Background()

	for _, s := range c.active[from:] {
		n := buf.Remaining()
		s.QueueInput(buf)
		buf = s.Output()
		c.metrics.RecordStage(ctx, stageName(s), n, buf.Remaining())
		if !buf.HasRemaining() {
			return
		}
	}

	c.appendOutput(buf.Bytes())
	buf.SetPosition(buf.Limit())
}

func (c *Chain) appendOutput(p []byte) {
	if !c.pending && c.region != pcm.Empty {
		c.region.Clear()
	}
	if c.region.Remaining() < len(p) {
		written := c.region.Position()
		grown := pcm.NewBuffer(max(written+len(p), 2*c.region.Capacity()))
		grown.PutBytes(c.region.Array()[:written])
		c.region = grown
	}
	c.region.PutBytes(p)
	c.pending = true
}

// QueueEndOfStream signals end of stream to each active stage in turn and
// runs whatever a stage flushes out through the stages after it.
func (c *Chain) QueueEndOfStream() {
	for i, s := range c.active {
		s.QueueEndOfStream()
		if out := s.Output(); out.HasRemaining() {
			c.process(i+1, out)
		}
	}
	c.inputEnded = true
}

func (c *Chain) Output() *pcm.Buffer {
	if !c.pending {
		return pcm.Empty
	}
	c.pending = false
	c.region.Flip()
	return c.region
}

func (c *Chain) IsEnded() bool {
	if !c.inputEnded || c.pending {
		return false
	}
	for _, s := range c.active {
		if !s.IsEnded() {
			return false
		}
	}
	return true
}

// Flush flushes every stage and recomputes the active list.
func (c *Chain) Flush() {
	c.active = c.active[:0]
	for _, s := range c.stages {
		s.Flush()
		if s.IsActive() {
			c.active = append(c.active, s)
		}
	}
	c.in, c.out = c.pendingIn, c.pendingOut
	c.pending = false
	c.inputEnded = false

	c.metrics.ActiveStages.Record(context.Background(), int64(len(c.active)))
}

// Reset resets every stage. The chain must be configured again before use.
func (c *Chain) Reset() {
	for _, s := range c.stages {
		s.Reset()
	}
	c.active = nil
	c.configured = false
	c.pendingIn, c.pendingOut = pcm.NotSet, pcm.NotSet
	c.in, c.out = pcm.NotSet, pcm.NotSet
	c.region = pcm.Empty
	c.pending = false
	c.inputEnded = false
}

// ApplyPlaybackParameters returns p unchanged.
func (c *Chain) ApplyPlaybackParameters(p PlaybackParameters) PlaybackParameters { return p }

// ApplySkipSilenceEnabled reports that silence skipping is not supported.
func (c *Chain) ApplySkipSilenceEnabled(bool) bool { return false }

// MediaDuration maps playout time to media time; they are the same here.
func (c *Chain) MediaDuration(playout time.Duration) time.Duration { return playout }

func (c *Chain) SkippedOutputFrameCount() int64 { return 0 }

func stageName(s Stage) string {
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", s)
}
