// SPDX-License-Identifier: EPL-2.0

// Package engine binds the transform pipeline to an external DSP engine.
//
// The engine itself is a black box reached through the Engine interface and
// addressed by opaque handles. A Registry owns every handle it hands out:
// one live handle per owner, invalidated only by Release, and any call made
// with a released or foreign handle is reported as a contract violation
// instead of reaching the engine.
//
// A process loads the engine once with Init and tears it down with
// Binding.Close after every handle has been released:
//
//	b, err := engine.Init(engine.NewBassBoost())
//	if err != nil {
//	    return err
//	}
//	defer b.Close()
//
//	h, err := b.Registry().Acquire(stage, format)
//	...
//	b.Registry().Release(h)
//
// Two software engines ship with the package: Loudness (fixed gain) and
// BassBoost (per-channel low-shelf biquad).
package engine

import "github.com/wingyippp/pcmchain/pcm"

// RawHandle is the engine-side identifier returned by Configure. It carries
// no meaning outside the engine that produced it.
type RawHandle uint64

// Engine is the call contract of an external processing engine.
type Engine interface {
	// Configure allocates engine state for a stream and returns its handle.
	// It may be expensive and is called exactly once per stage configure.
	Configure(sampleRate, channelCount, bytesPerFrame int) (RawHandle, error)

	// Process transforms in[position:limit] and writes exactly that many
	// transformed bytes to out starting at 0. in and out may alias.
	Process(in, out []byte, position, limit int, enc pcm.Encoding, h RawHandle) error

	// Reset frees the state behind h. It is the only call that invalidates h.
	Reset(h RawHandle) error

	Flush() error
	EndOfStream() error

	// SetParameters retunes the state behind h.
	SetParameters(sampleRate int, gain, frequency, q float32, h RawHandle) error
}
