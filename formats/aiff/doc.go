// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files into PCM16 sources.
//
// Decoding is done by github.com/go-audio/aiff. AIFF stores samples
// big-endian; the source repacks them as the little-endian bytes the
// pipeline works on:
//
//	src, err := aiff.Decoder{}.Decode(file)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(src.Format()) // e.g. 44100Hz/2ch/pcm16
//
// Only 16-bit files are accepted; other depths fail with
// ErrOnlyPCM16bitSupported.
package aiff
