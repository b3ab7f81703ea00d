package memproxy

// SyscallNo returns the canonical syscall number. On arm64 the kernel
// keeps the syscall number in x8 unchanged across the call (there is no
// separate orig/return split as on x86-64).
func (r Regs) SyscallNo() uint64 {
	return r.raw.Regs[8]
}

// Neutralise marks the register snapshot so that, once written back by
// Proxy.SetRegs, the kernel sees an invalid syscall number. Writing x8
// through the general-purpose register set alone is not honoured for the
// pending syscall on arm64; SetRegs additionally calls fixupSyscallNo,
// which rewrites it through PTRACE_SETREGSET against NT_ARM_SYSTEM_CALL
// (see ptrace_arm64.go).
func (r *Regs) Neutralise() {
	r.raw.Regs[8] = InvalidSyscall
}

// Arg returns the i'th syscall argument (0-indexed): x0..x5.
func (r Regs) Arg(i int) uint64 {
	if i < 0 || i > 5 {
		return 0
	}
	return r.raw.Regs[i]
}

// ReturnValue returns x0, which doubles as the first argument register
// and the return-value register on arm64.
func (r Regs) ReturnValue() int64 {
	return int64(r.raw.Regs[0])
}

// SetReturnValue overwrites x0.
func (r *Regs) SetReturnValue(v int64) {
	r.raw.Regs[0] = uint64(v)
}
