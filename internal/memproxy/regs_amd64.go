package memproxy

// SyscallNo returns the canonical syscall number, taken from the
// original-syscall register (Orig_rax), which the kernel does not
// overwrite with the return value the way it overwrites Rax.
func (r Regs) SyscallNo() uint64 {
	return r.raw.Orig_rax
}

// Neutralise rewrites the original-syscall register to an invalid
// syscall number so the kernel's dispatch of it fails cheaply.
func (r *Regs) Neutralise() {
	r.raw.Orig_rax = InvalidSyscall
}

// Arg returns the i'th syscall argument (0-indexed), per the x86-64
// syscall calling convention: rdi, rsi, rdx, r10, r8, r9.
func (r Regs) Arg(i int) uint64 {
	switch i {
	case 0:
		return r.raw.Rdi
	case 1:
		return r.raw.Rsi
	case 2:
		return r.raw.Rdx
	case 3:
		return r.raw.R10
	case 4:
		return r.raw.R8
	case 5:
		return r.raw.R9
	default:
		return 0
	}
}

// ReturnValue returns the syscall's return value register.
func (r Regs) ReturnValue() int64 {
	return int64(r.raw.Rax)
}

// SetReturnValue overwrites the return value register.
func (r *Regs) SetReturnValue(v int64) {
	r.raw.Rax = uint64(v)
}
