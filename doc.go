// SPDX-License-Identifier: EPL-2.0

// Package pcmchain runs interleaved PCM audio through a chain of transform
// stages, the way a media player's audio sink does between the decoder and
// the output device.
//
// The building blocks live in subpackages:
//
//   - pcm: formats, the cursor-based sample buffer and the sample codec
//   - audio: the Stage contract, the stage variants and Chain
//   - engine: the external processing engine contract and its handle
//     registry
//   - formats/wav, formats/mp3, formats/vorbis: decoders producing an
//     audio.Source
//
// # Quick Start
//
//	file, _ := os.Open("input.wav")
//	src, _ := wav.Decoder{}.Decode(file)
//
//	chain := audio.NewChain([]audio.Stage{
//		audio.NewChannelSwap(),
//		audio.NewGainReducer(audio.WithEnabled(true), audio.WithGain(0.5)),
//	})
//
//	out, format, err := pcmchain.Render(src, chain, 4096)
//
// Render collects the result in memory. RenderTo streams it to a callback
// instead and honors context cancellation between buffers.
//
// # Negotiation
//
// Chain.Configure hands the source format to each stage in order. A stage
// answers with its output format, or pcm.NotSet when it has nothing to
// contribute for that input; such stages are skipped while processing. A
// stage that cannot take the format at all fails the whole configure.
//
// # Engines
//
// GainReducer and EngineBridge can delegate their work to an engine.Engine.
// Load it once per process with engine.Init, pass the binding's registry to
// the stages with audio.WithEngine and close the binding after the last
// chain was reset:
//
//	b, _ := engine.Init(engine.NewLoudness())
//	defer b.Close()
//
//	chain := audio.NewChain([]audio.Stage{audio.NewEngineBridge(b.Registry())})
package pcmchain
