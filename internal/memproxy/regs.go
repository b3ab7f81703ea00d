package memproxy

import "golang.org/x/sys/unix"

// Regs wraps a snapshot of the tracee's saved register block. The
// syscall-number and argument accessors are arch-specific; see
// regs_amd64.go and regs_arm64.go.
type Regs struct {
	raw unix.PtraceRegs
}

// InvalidSyscall is the value written to the original-syscall register to
// neutralise a syscall: the kernel dispatch fails cheaply, but the
// exit stop still occurs (spec.md §4.2, "Emulation mechanics").
const InvalidSyscall = ^uint64(0) // -1

// NewRegs wraps a raw register block. Exported so callers that already
// hold a unix.PtraceRegs (or, in tests, a synthesized one standing in for
// a live tracee's) can build a Regs without going through GetRegs.
func NewRegs(raw unix.PtraceRegs) Regs {
	return Regs{raw: raw}
}
