// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	// ErrStaleHandle marks a call made with a handle that was released,
	// moved away, or belongs to another registry.
	ErrStaleHandle = errors.New("engine: stale handle")
	// ErrHandleLeak marks an Acquire for an owner that still holds a live
	// handle; the caller skipped Release before reconfiguring.
	ErrHandleLeak = errors.New("engine: owner already holds a live handle")

	ErrAlreadyLoaded      = errors.New("engine: binding already loaded")
	ErrNotLoaded          = errors.New("engine: binding not loaded")
	ErrHandlesOutstanding = errors.New("engine: handles still live at teardown")

	// ErrUnknownHandle is returned by the bundled engines for a handle they
	// never issued or already reset.
	ErrUnknownHandle       = errors.New("engine: unknown handle")
	ErrInvalidConfig       = errors.New("engine: invalid stream configuration")
	ErrUnsupportedEncoding = errors.New("engine: unsupported encoding")
)
