package engine

import (
	"fmt"
	"sync"
)

// table maps engine handles to per-stream state for the bundled engines.
// Handle values are never reused within one table.
type table[S any] struct {
	mtx  sync.Mutex
	next RawHandle
	m    map[RawHandle]*S
}

func (t *table[S]) add(s *S) RawHandle {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.m == nil {
		t.m = make(map[RawHandle]*S)
	}
	t.next++
	t.m[t.next] = s
	return t.next
}

func (t *table[S]) get(h RawHandle) (*S, error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	s, ok := t.m[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	return s, nil
}

func (t *table[S]) remove(h RawHandle) error {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if _, ok := t.m[h]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	delete(t.m, h)
	return nil
}

// each calls fn for every live state while holding the table lock.
func (t *table[S]) each(fn func(*S)) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	for _, s := range t.m {
		fn(s)
	}
}

func (t *table[S]) len() int {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return len(t.m)
}

func (t *table[S]) clear() {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	clear(t.m)
}

func validateStream(sampleRate, channelCount, bytesPerFrame int) error {
	switch {
	case sampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, sampleRate)
	case channelCount <= 0:
		return fmt.Errorf("%w: channel count %d", ErrInvalidConfig, channelCount)
	case bytesPerFrame <= 0 || bytesPerFrame%channelCount != 0:
		return fmt.Errorf("%w: %d bytes per frame for %d channels", ErrInvalidConfig, bytesPerFrame, channelCount)
	}
	return nil
}

func checkRange(in, out []byte, position, limit int) error {
	if position < 0 || limit < position || limit > len(in) {
		return fmt.Errorf("%w: range [%d, %d) of %d bytes", ErrInvalidConfig, position, limit, len(in))
	}
	if len(out) < limit-position {
		return fmt.Errorf("%w: output holds %d of %d bytes", ErrInvalidConfig, len(out), limit-position)
	}
	return nil
}
