package keygen

import "runtime"

// Zero overwrites b in place. The KeepAlive pins b so the compiler cannot
// elide the wipe as a dead store before the buffer's last use.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// Guard collects key-material buffers so one deferred Wipe covers every
// exit path: success, retry, or error. Replaces ad-hoc per-path cleanup.
//
//	guard := keygen.NewGuard()
//	defer guard.Wipe()
//	guard.Track(pair.Private)
type Guard struct {
	bufs [][]byte
}

// NewGuard returns an empty guard.
func NewGuard() *Guard {
	return &Guard{}
}

// Track registers a buffer for wiping. Nil and empty slices are ignored.
func (g *Guard) Track(b []byte) {
	if len(b) == 0 {
		return
	}
	g.bufs = append(g.bufs, b)
}

// Wipe zeroes every tracked buffer. Safe to call more than once.
func (g *Guard) Wipe() {
	for _, b := range g.bufs {
		Zero(b)
	}
	g.bufs = g.bufs[:0]
}
