// Package keyederr defines the closed set of fatal error kinds the
// supervisor can report. Every failure path in this module terminates the
// process, so a Kind carries only enough information to pick an exit
// message; it does not model partial recovery.
package keyederr

import "errors"

// Kind is a fatal error category.
type Kind int

// The fatal error kinds. Every error surfaced from the core belongs to
// exactly one of these.
const (
	Invalid Kind = iota
	Usage
	IO
	Kdf
	Spawn
	Trace
	Capacity
	Resource
)

var names = []string{
	"invalid",
	"usage error",
	"i/o error",
	"key derivation failed",
	"spawn failed",
	"trace failed",
	"descriptor table full",
	"resource exhausted",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(names) {
		return names[k]
	}
	return names[Invalid]
}

// Error is a Kind paired with a detail message.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Detail
}

// New builds an *Error of the given kind with the given detail message.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var kerr *Error
	if !errors.As(err, &kerr) {
		return false
	}
	return kerr.Kind == kind
}
