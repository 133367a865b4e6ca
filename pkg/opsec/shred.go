package opsec

import (
	"runtime"
	"sync"
)

// Shred zeroes a byte slice to clear sensitive data from memory. The
// go:noinline directive prevents the compiler from inlining and optimizing
// away the zeroing; runtime.KeepAlive ensures the slice is not collected
// before zeroing completes.
//
// Shredding is best-effort only: it does not prevent copies retained by the
// garbage collector, prior stack frames, or swapped memory.
//
//go:noinline
func Shred(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// SecretBuffer is a scoped-acquisition wrapper for sensitive bytes. Close
// shreds the backing buffer exactly once, so callers can defer the release
// at acquisition and not rely on manual zeroing at every exit path.
type SecretBuffer struct {
	mu sync.Mutex
	b  []byte
}

// NewSecretBuffer takes ownership of b. The caller must not retain or reuse
// the slice after handing it over.
func NewSecretBuffer(b []byte) *SecretBuffer {
	return &SecretBuffer{b: b}
}

// Bytes returns the live buffer, or nil after Close. The returned slice
// aliases the internal storage and becomes zeroed once Close runs.
func (s *SecretBuffer) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b
}

// Len returns the buffer length, or 0 after Close.
func (s *SecretBuffer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.b)
}

// Close shreds the buffer and drops the reference. Safe to call repeatedly.
func (s *SecretBuffer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	Shred(s.b)
	s.b = nil
	return nil
}

// WithShredded passes buf to fn and guarantees the buffer is shredded
// afterward, even if fn panics. Defer order (LIFO): Shred runs first, then
// recover catches and re-panics.
func WithShredded(buf []byte, fn func([]byte)) {
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		}
	}()
	defer Shred(buf)
	fn(buf)
}
