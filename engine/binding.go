// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"
	"io"
	"sync"
)

var (
	bindingMu sync.Mutex
	current   *Binding
)

// Binding is the process-wide loaded engine. Stages are constructed only
// after Init and the binding is closed only after every stage released its
// handle.
type Binding struct {
	eng Engine
	reg *Registry
}

// Init loads e as the process engine. It fails with ErrAlreadyLoaded until
// the previous binding is closed.
func Init(e Engine, opts ...Option) (*Binding, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: nil engine", ErrNotLoaded)
	}

	bindingMu.Lock()
	defer bindingMu.Unlock()

	if current != nil {
		return nil, ErrAlreadyLoaded
	}

	current = &Binding{
		eng: e,
		reg: NewRegistry(e, opts...),
	}
	return current, nil
}

// Default returns the loaded binding, or nil before Init and after Close.
func Default() *Binding {
	bindingMu.Lock()
	defer bindingMu.Unlock()
	return current
}

// Registry returns the handle registry of the binding.
func (b *Binding) Registry() *Registry { return b.reg }

// Close unloads the engine. Handles must be released first; Close refuses
// with ErrHandlesOutstanding otherwise and leaves the binding loaded.
func (b *Binding) Close() error {
	bindingMu.Lock()
	defer bindingMu.Unlock()

	if current != b {
		return ErrNotLoaded
	}
	if n := b.reg.Live(); n > 0 {
		return fmt.Errorf("%w: %d live", ErrHandlesOutstanding, n)
	}

	current = nil

	if c, ok := b.eng.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close engine: %w", err)
		}
	}
	return nil
}
