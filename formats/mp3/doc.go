// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MP3 files.
//
// # Decoding MP3 Files
//
//	file, _ := os.Open("audio.mp3")
//	source, err := mp3.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]byte, source.BufSize())
//	n, err := source.Read(buf)
//
// # Output Format
//
// go-mp3 always decodes to interleaved stereo, so the source reports
// pcm.EncodingPCM16 with 2 channels at the file's sample rate. Mono files
// come out with both channels equal.
package mp3
