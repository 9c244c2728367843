// Package secret provides a disciplined wrapper for sensitive configuration
// values, replacing the source's manual zeroization macro (spec.md §9
// "Password handling"). The only value carried today is bind_pw, but the
// wrapper is not bind_pw-specific so any future sensitive option can reuse
// it.
package secret

// String holds a sensitive value as a mutable byte slice so Release can
// scrub it in place. The zero value is an already-released, empty secret.
type String struct {
	buf []byte
}

// New copies plain into a freshly owned buffer. The caller remains
// responsible for scrubbing plain itself if it came from elsewhere.
func New(plain string) String {
	buf := make([]byte, len(plain))
	copy(buf, plain)
	return String{buf: buf}
}

// Expose returns the current value as a string. Every call allocates a new
// Go string copy that Release cannot scrub; callers must not cache it past
// the point Release is called on s.
func (s String) Expose() string {
	if len(s.buf) == 0 {
		return ""
	}
	return string(s.buf)
}

// Len reports the value's length without exposing it.
func (s String) Len() int { return len(s.buf) }

// Release overwrites the backing buffer with zero bytes. Spec.md §8
// property 6 requires that after check-access returns, no memory that
// referenced bind_pw remains readable; Release is how config.Config
// satisfies that at teardown.
func (s *String) Release() {
	for i := range s.buf {
		s.buf[i] = 0
	}
	s.buf = nil
}
