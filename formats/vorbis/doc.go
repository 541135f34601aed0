// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio file decoding.
//
// This package uses github.com/jfreymuth/oggvorbis to decode Ogg Vorbis files.
//
// # Decoding Vorbis Files
//
//	file, _ := os.Open("audio.ogg")
//	source, err := vorbis.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]byte, source.BufSize())
//	n, err := source.Read(buf)
//
// # Output Format
//
//   - Encoding: pcm.EncodingFloat, values clamped to [-1.0, 1.0]
//   - Channels and sample rate: as stored in the file
//
// Every Read returns whole frames.
package vorbis
