// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"errors"
	"fmt"
	"io"

	"github.com/wingyippp/pcmchain/audio"
	"github.com/wingyippp/pcmchain/internal/audiotest"
	"github.com/wingyippp/pcmchain/pcm"
)

// Example_chain negotiates a chain and runs one buffer through it.
func Example_chain() {
	gain := audio.NewGainReducer(audio.WithGain(0.5), audio.WithEnabled(true))
	chain := audio.NewChain([]audio.Stage{audio.NewChannelSwap(), gain})

	in := pcm.Format{SampleRate: 44100, ChannelCount: 2, Encoding: pcm.EncodingPCM16}
	out, err := chain.Configure(in)
	if err != nil {
		fmt.Println("configure:", err)
		return
	}
	fmt.Printf("%v -> %v\n", in, out)

	chain.QueueInput(pcm.Wrap(audiotest.PCM16(1000, -1000)))
	fmt.Println(audiotest.PCM16Samples(chain.Output().Bytes()))
	// Output:
	// 44100Hz/2ch/pcm16 -> 44100Hz/2ch/pcm16
	// [-500 500]
}

// Example_upgrade shows a GainReducer turning PCM16 into Float even while
// disabled.
func Example_upgrade() {
	gain := audio.NewGainReducer(audio.WithUpgrade())
	out, _ := gain.Configure(pcm.Format{SampleRate: 44100, ChannelCount: 2, Encoding: pcm.EncodingPCM16})
	gain.Flush()

	gain.QueueInput(pcm.Wrap(audiotest.PCM16(1000, -1000)))
	fmt.Println(out.Encoding, audiotest.FloatSamples(gain.Output().Bytes()))
	// Output:
	// float [0.030517578 -0.030517578]
}

// Example_inactiveStage shows a stage stepping aside for a format it does
// not handle.
func Example_inactiveStage() {
	chain := audio.NewChain([]audio.Stage{audio.NewChannelSwap(), audio.NewFormatConverter()})

	out, _ := chain.Configure(pcm.Format{SampleRate: 48000, ChannelCount: 1, Encoding: pcm.EncodingPCM16})
	for _, s := range chain.ActiveStages() {
		fmt.Println("active:", s.(audio.Named).Name())
	}
	fmt.Println("output:", out)
	// Output:
	// active: converter
	// output: 48000Hz/1ch/float
}

// Example_resampler converts a source to another rate before it reaches a
// chain.
func Example_resampler() {
	source := audiotest.NewSineSource(pcm.Format{SampleRate: 44100, ChannelCount: 2, Encoding: pcm.EncodingPCM16}, 44100, 440.0)
	mono := audio.NewMonoMixer(audio.NewResampler(source, 16000))

	fmt.Println("format:", mono.Format())

	buf := make([]byte, mono.BufSize())
	aligned := true
	for {
		n, err := mono.Read(buf)
		if n%mono.Format().BytesPerFrame() != 0 {
			aligned = false
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Println("read:", err)
			return
		}
	}
	fmt.Println("frame aligned:", aligned)
	// Output:
	// format: 16000Hz/1ch/pcm16
	// frame aligned: true
}

// mockDecoder returns one second of silence for any input.
type mockDecoder struct{}

func (m mockDecoder) Decode(io.Reader) (audio.Source, error) {
	return audiotest.NewSilentSource(pcm.Format{SampleRate: 16000, ChannelCount: 1, Encoding: pcm.EncodingPCM16}, 16000), nil
}

// Example_registry demonstrates the decoder registry.
func Example_registry() {
	registry := audio.NewRegistry()
	registry.Register("mock", mockDecoder{})

	decoder, ok := registry.Get("mock")
	if !ok {
		fmt.Println("Decoder not found")
		return
	}
	fmt.Printf("Retrieved decoder: %T\n", decoder)

	if _, err := registry.Decode("unknown", nil); errors.Is(err, audio.ErrUnknownDecoder) {
		fmt.Println("Unknown format not found in registry")
	}
	// Output:
	// Retrieved decoder: audio_test.mockDecoder
	// Unknown format not found in registry
}
