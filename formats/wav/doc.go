// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes WAV files holding the two sample layouts the
// pipeline understands.
//
// Decoding is done by github.com/go-audio/wav, which walks the RIFF chunks
// (including unknown ones placed before or after fmt). The decoded source
// hands out the raw little-endian bytes of the data chunk in whole frames:
//
//	src, err := wav.Decoder{}.Decode(file)
//	if err != nil {
//	    return err
//	}
//	buf := make([]byte, src.BufSize())
//	n, err := src.Read(buf)
//
// # Supported Formats
//
//   - format 1, 16 bit: pcm.EncodingPCM16
//   - format 3, 32 bit: pcm.EncodingFloat
//   - any channel count and sample rate
//
// Anything else fails with ErrUnsupportedWavFormat.
//
// # Writing WAV Files
//
// Writer encodes through the go-audio encoder and patches the header sizes
// on Close, so it needs an io.WriteSeeker such as an *os.File:
//
//	w, err := wav.NewWriter(file, format)
//	...
//	w.Write(chunk)
//	w.Close()
//
// For a pipe, encode into a temporary file and copy it over once closed.
package wav
