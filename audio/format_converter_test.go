// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wingyippp/pcmchain/internal/audiotest"
	"github.com/wingyippp/pcmchain/pcm"
)

func TestFormatConverter_Configure(t *testing.T) {
	t.Parallel()

	c := NewFormatConverter()
	out, err := c.Configure(stereo16)
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if want := stereo16.WithEncoding(pcm.EncodingFloat); out != want {
		t.Errorf("Configure() = %v, want %v", out, want)
	}

	out, err = c.Configure(stereoFloat)
	if err != nil {
		t.Fatalf("Configure(float) error = %v", err)
	}
	if out != pcm.NotSet || c.IsActive() {
		t.Errorf("Configure(float) = %v active = %v, want NotSet inactive", out, c.IsActive())
	}
}

func TestFormatConverter_DoublesLength(t *testing.T) {
	t.Parallel()

	c := NewFormatConverter()
	configure(t, c, stereo16)

	for _, frames := range []int{1, 2, 3, 64, 1000} {
		data := make([]byte, frames*stereo16.BytesPerFrame())
		if got := len(feed(c, data)); got != 2*len(data) {
			t.Errorf("%d frames: output = %d bytes, want %d", frames, got, 2*len(data))
		}
	}
}

func TestFormatConverter_Values(t *testing.T) {
	t.Parallel()

	c := NewFormatConverter()
	configure(t, c, stereo16)

	got := audiotest.FloatSamples(feed(c, audiotest.PCM16(1000, -1000, -32768, 16384)))
	want := []float32{1000.0 / 32768, -1000.0 / 32768, -1, 0.5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("converted samples mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatConverter_KeepsInputLimit(t *testing.T) {
	t.Parallel()

	c := NewFormatConverter()
	configure(t, c, stereo16)

	in := pcm.Wrap(make([]byte, 16))
	in.SetLimit(12)
	in.SetPosition(4)
	c.QueueInput(in)

	if in.Limit() != 12 || in.Position() != 12 {
		t.Errorf("input after QueueInput = %v, want pos=12 lim=12", in)
	}
	if got := c.Output().Remaining(); got != 16 {
		t.Errorf("output = %d bytes, want 16", got)
	}
}

func TestPassThrough(t *testing.T) {
	t.Parallel()

	p := NewPassThrough()
	if out := configure(t, p, stereoFloat); out != stereoFloat {
		t.Errorf("Configure() = %v, want %v", out, stereoFloat)
	}

	data := audiotest.Floats(0.25, -0.75)
	if diff := cmp.Diff(data, feed(p, data)); diff != "" {
		t.Errorf("pass-through changed the data (-want +got):\n%s", diff)
	}

	if _, err := p.Configure(pcm.NotSet); err == nil {
		t.Error("Configure(NotSet) accepted")
	}
}

func BenchmarkFormatConverter(b *testing.B) {
	c := NewFormatConverter()
	if _, err := c.Configure(stereo16); err != nil {
		b.Fatal(err)
	}
	c.Flush()
	in := pcm.Wrap(make([]byte, 480*4))

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		in.Rewind()
		c.QueueInput(in)
		c.Output()
	}
}
