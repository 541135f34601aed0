package audio

import (
	"io"
	"log/slog"
	"testing"

	"github.com/wingyippp/pcmchain/engine"
	"github.com/wingyippp/pcmchain/internal/audiotest"
	"github.com/wingyippp/pcmchain/pcm"
)

var (
	stereo16    = pcm.Format{SampleRate: 44100, ChannelCount: 2, Encoding: pcm.EncodingPCM16}
	stereoFloat = pcm.Format{SampleRate: 44100, ChannelCount: 2, Encoding: pcm.EncodingFloat}
	mono16      = pcm.Format{SampleRate: 44100, ChannelCount: 1, Encoding: pcm.EncodingPCM16}
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRegistry wraps a RecordingEngine over inner (nil copies audio) in
// a registry whose contract violations are collected, not panicked.
func newTestRegistry(inner engine.Engine) (*engine.Registry, *audiotest.RecordingEngine, *audiotest.Violations) {
	rec := audiotest.NewRecordingEngine(inner)
	v := &audiotest.Violations{}
	reg := engine.NewRegistry(rec, engine.WithViolationHook(v.Hook), engine.WithLogger(quietLogger()))
	return reg, rec, v
}

// configure configures and flushes s, failing the test on rejection.
func configure(t *testing.T, s Stage, f pcm.Format) pcm.Format {
	t.Helper()

	out, err := s.Configure(f)
	if err != nil {
		t.Fatalf("Configure(%v) error = %v", f, err)
	}
	s.Flush()
	return out
}

// feed queues a copy of data and returns a copy of the output.
func feed(s Stage, data []byte) []byte {
	in := pcm.Wrap(append([]byte(nil), data...))
	s.QueueInput(in)
	out := s.Output()
	return append([]byte(nil), out.Bytes()...)
}
