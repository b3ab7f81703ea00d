package memproxy

// fixupSyscallNo is a no-op on amd64: Orig_rax is the single source of
// truth for the in-flight syscall number and is already rewritten as part
// of the general-purpose register set by SetRegs.
func fixupSyscallNo(pid int, no int) error {
	return nil
}
