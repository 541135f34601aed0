// SPDX-License-Identifier: EPL-2.0

// Package audio provides the transform stages and the source side of the
// pipeline.
//
// # Stages
//
// A Stage transforms interleaved little-endian PCM held in pcm.Buffer
// values. The host drives every stage through the same lifecycle:
//
//	out, err := stage.Configure(in) // negotiate, takes effect on Flush
//	stage.Flush()
//	stage.QueueInput(buf)           // consumes all of buf
//	res := stage.Output()           // at most once per input
//	...
//	stage.QueueEndOfStream()
//	for !stage.IsEnded() { stage.Output() }
//	stage.Reset()
//
// Configure answers pcm.NotSet when a stage has nothing to do for a format
// (ChannelSwap on mono, FormatConverter on float); the stage is then
// inactive and a Chain skips it. A format no stage can take at all is
// rejected with an error matching ErrUnsupportedFormat.
//
// The variants are:
//   - PassThrough copies its input
//   - GainReducer scales by a gain, in software or through an engine, and
//     optionally turns PCM16 into Float
//   - FormatConverter turns PCM16 into Float
//   - ChannelSwap swaps left and right of stereo PCM16
//   - EngineBridge hands every buffer to an engine.Engine
//
// Chain runs several stages as one.
//
// # Sources
//
// A Source yields decoded PCM in whole frames:
//
//	type Source interface {
//	    Format() pcm.Format
//	    Read(dst []byte) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Resampler and MonoMixer wrap a Source to change its rate or mix it down
// before it reaches a chain. The Registry maps format keys such as "wav"
// to the Decoder producing a Source.
//
// Read returns io.EOF when no more data is available, possibly together
// with the last bytes:
//
//	for {
//	    n, err := src.Read(buf)
//	    // use buf[:n]
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
