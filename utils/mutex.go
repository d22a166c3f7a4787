package utils

import "sync"

// Mutex is a sync.Mutex that internal primitives can assert against.
type Mutex struct {
	sync.Mutex
}

// AssertHeld panics if the mutex is not locked. The check is best
// effort: it asserts that some goroutine holds the lock, not which
// one. Locked internal primitives call it so a path that skips the
// public entry points fails loudly instead of corrupting state.
func (m *Mutex) AssertHeld() {
	if m.TryLock() {
		m.Unlock()
		panic("xlist: mutex is not held")
	}
}
