// SPDX-License-Identifier: EPL-2.0

package pcmchain

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wingyippp/pcmchain/audio"
	"github.com/wingyippp/pcmchain/engine"
	"github.com/wingyippp/pcmchain/internal/audiotest"
	"github.com/wingyippp/pcmchain/pcm"
)

var (
	stereo16 = pcm.Format{SampleRate: 44100, ChannelCount: 2, Encoding: pcm.EncodingPCM16}
	mono16   = pcm.Format{SampleRate: 8000, ChannelCount: 1, Encoding: pcm.EncodingPCM16}
)

func TestRender_Gain(t *testing.T) {
	t.Parallel()

	src := audiotest.NewBytesSource(stereo16, audiotest.PCM16(1000, -1000, 2000, -2000), 0)
	chain := audio.NewChain([]audio.Stage{
		audio.NewGainReducer(audio.WithEnabled(true), audio.WithGain(0.5)),
	})

	out, f, err := Render(src, chain, 4096)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if f != stereo16 {
		t.Errorf("format = %v, want %v", f, stereo16)
	}

	want := []int16{500, -500, 1000, -1000}
	if diff := cmp.Diff(want, audiotest.PCM16Samples(out)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_Upgrade(t *testing.T) {
	t.Parallel()

	src := audiotest.NewBytesSource(mono16, audiotest.PCM16(16384, -16384), 0)
	chain := audio.NewChain([]audio.Stage{audio.NewFormatConverter()})

	out, f, err := Render(src, chain, 0)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if f.Encoding != pcm.EncodingFloat {
		t.Errorf("encoding = %v, want float", f.Encoding)
	}
	if diff := cmp.Diff([]float32{0.5, -0.5}, audiotest.FloatSamples(out)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_NoActiveStages(t *testing.T) {
	t.Parallel()

	data := audiotest.PCM16(1, 2, 3, 4, 5)
	src := audiotest.NewBytesSource(mono16, data, 0)
	// swap has nothing to do on mono
	chain := audio.NewChain([]audio.Stage{audio.NewChannelSwap()})

	out, f, err := Render(src, chain, 0)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if f != mono16 {
		t.Errorf("format = %v, want %v", f, mono16)
	}
	if diff := cmp.Diff(data, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_BufferSizes(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 0, 200)
	want := make([]int16, 0, 200)
	for i := range int16(100) {
		samples = append(samples, i, -i)
		want = append(want, -i, i)
	}
	data := audiotest.PCM16(samples...)

	tests := []struct {
		name       string
		bufferSize int
		chunk      int
	}{
		{name: "source default", bufferSize: 0, chunk: 0},
		{name: "one frame", bufferSize: 4, chunk: 0},
		{name: "below one frame", bufferSize: 1, chunk: 0},
		{name: "not frame aligned", bufferSize: 30, chunk: 0},
		{name: "short source reads", bufferSize: 4096, chunk: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewBytesSource(stereo16, data, tt.chunk)
			chain := audio.NewChain([]audio.Stage{audio.NewChannelSwap()})

			out, _, err := Render(src, chain, tt.bufferSize)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if diff := cmp.Diff(want, audiotest.PCM16Samples(out)); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRender_ConfigureRejected(t *testing.T) {
	t.Parallel()

	src := audiotest.NewBytesSource(pcm.Format{SampleRate: 8000, ChannelCount: 1}, nil, 0)
	chain := audio.NewChain([]audio.Stage{audio.NewPassThrough()})

	_, f, err := Render(src, chain, 0)
	if !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Fatalf("Render() error = %v, want %v", err, audio.ErrUnsupportedFormat)
	}
	if f.IsSet() {
		t.Errorf("format = %v, want NOT_SET", f)
	}
}

func TestRender_ReleasesHandles(t *testing.T) {
	t.Parallel()

	reg := engine.NewRegistry(engine.NewLoudness())
	src := audiotest.NewSineSource(stereo16, 1000, 440)
	chain := audio.NewChain([]audio.Stage{
		audio.NewEngineBridge(reg),
		audio.NewGainReducer(audio.WithEngine(reg), audio.WithEnabled(true)),
	})

	out, _, err := Render(src, chain, 256)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(out) != 1000*stereo16.BytesPerFrame() {
		t.Errorf("len(out) = %d, want %d", len(out), 1000*stereo16.BytesPerFrame())
	}
	if n := reg.Live(); n != 0 {
		t.Errorf("Live() = %d after Render, want 0", n)
	}
}

func TestRenderTo_SinkError(t *testing.T) {
	t.Parallel()

	errFull := errors.New("disk full")
	src := audiotest.NewSilentSource(stereo16, 100)
	chain := audio.NewChain(nil)

	calls := 0
	_, err := RenderTo(context.Background(), src, chain, 40, func([]byte) error {
		calls++
		return errFull
	})
	if !errors.Is(err, errFull) {
		t.Fatalf("RenderTo() error = %v, want %v", err, errFull)
	}
	if calls != 1 {
		t.Errorf("sink called %d times, want 1", calls)
	}
}

func TestRenderTo_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := audiotest.NewSilentSource(stereo16, 100)
	_, err := RenderTo(ctx, src, audio.NewChain(nil), 0, func([]byte) error {
		t.Error("sink called after cancel")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("RenderTo() error = %v, want %v", err, context.Canceled)
	}
}

type failingSource struct {
	*audiotest.MockSource
	err error
}

func (f failingSource) Read([]byte) (int, error) { return 0, f.err }

func TestRenderTo_ReadError(t *testing.T) {
	t.Parallel()

	errBroken := errors.New("broken pipe")
	src := failingSource{MockSource: audiotest.NewSilentSource(mono16, 10), err: errBroken}

	_, err := RenderTo(context.Background(), src, audio.NewChain(nil), 0, func([]byte) error { return nil })
	if !errors.Is(err, errBroken) {
		t.Errorf("RenderTo() error = %v, want %v", err, errBroken)
	}
}

// endlessStage never reports the end of its stream.
type endlessStage struct {
	*audio.PassThrough
}

func (endlessStage) IsEnded() bool { return false }

func TestRenderTo_Stalled(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(mono16, 10)
	chain := audio.NewChain([]audio.Stage{endlessStage{audio.NewPassThrough()}})

	_, err := RenderTo(context.Background(), src, chain, 0, func([]byte) error { return nil })
	if !errors.Is(err, ErrStalled) {
		t.Errorf("RenderTo() error = %v, want %v", err, ErrStalled)
	}
}

func TestRenderTo_Streams(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(mono16, 1000, 0.5)
	chain := audio.NewChain([]audio.Stage{audio.NewPassThrough()})

	var chunks, total int
	_, err := RenderTo(context.Background(), src, chain, 200, func(p []byte) error {
		chunks++
		total += len(p)
		return nil
	})
	if err != nil {
		t.Fatalf("RenderTo() error = %v", err)
	}
	if chunks != 10 {
		t.Errorf("sink called %d times, want 10", chunks)
	}
	if total != 2000 {
		t.Errorf("total = %d bytes, want 2000", total)
	}
}

func BenchmarkRender(b *testing.B) {
	f := pcm.Format{SampleRate: 48000, ChannelCount: 2, Encoding: pcm.EncodingPCM16}
	chain := audio.NewChain([]audio.Stage{
		audio.NewChannelSwap(),
		audio.NewGainReducer(audio.WithEnabled(true), audio.WithUpgrade()),
	})

	b.ReportAllocs()
	for range b.N {
		src := audiotest.NewSineSource(f, 48000, 440)
		_, err := RenderTo(context.Background(), src, chain, 4096, func([]byte) error { return nil })
		if err != nil {
			b.Fatal(err)
		}
	}
}
