// Package session holds the Session value: the run-once bundle of state
// owned by the supervisor for the lifetime of a single traced child.
package session

import (
	"fmt"

	"github.com/venusroot/keyed/internal/fdset"
	"github.com/venusroot/keyed/internal/keyederr"
	"github.com/venusroot/keyed/internal/keystream"
)

// Session is the supervisor's run-once state for one tracee.
type Session struct {
	key     [keystream.KeySize]byte
	Stream  *keystream.Keystream
	Verbose bool
	FakePID *int // nil means getpid emulation is disabled
	Pid     int
	Table   *fdset.Table

	scratch []byte
}

// New creates a Session for a freshly spawned tracee.
func New(key [keystream.KeySize]byte, verbose bool, fakePID *int, pid int, capacity int) *Session {
	return &Session{
		key:     key,
		Stream:  keystream.New(key),
		Verbose: verbose,
		FakePID: fakePID,
		Pid:     pid,
		Table:   fdset.New(capacity),
	}
}

// Scratch returns a reusable buffer of at least n bytes. The buffer is
// grown monotonically and never shrunk, matching spec.md §3's Scratch
// Buffer semantics. It fails with *keyederr.Error of kind Resource if the
// buffer cannot be grown.
func (s *Session) Scratch(n int) (buf []byte, err error) {
	if cap(s.scratch) >= n {
		return s.scratch[:n], nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = keyederr.New(keyederr.Resource, fmt.Sprintf("scratch buffer: %v", r))
		}
	}()
	s.scratch = make([]byte, n)
	return s.scratch, nil
}

// Close zeroises the key material. The tracee itself is expected to have
// already exited or been killed by PTRACE_O_EXITKILL by the time Close is
// called.
func (s *Session) Close() {
	for i := range s.key {
		s.key[i] = 0
	}
}

// Debugf prints a verbose diagnostic line to stderr when Verbose is set.
func (s *Session) Debugf(format string, args ...interface{}) {
	if !s.Verbose {
		return
	}
	debugf(format, args...)
}
