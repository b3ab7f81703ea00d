package memproxy

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ntArmSystemCall is the NT_ARM_SYSTEM_CALL regset note type used with
// PTRACE_GETREGSET/PTRACE_SETREGSET to read or rewrite the in-flight
// syscall number on arm64. Grounded on the teacher's
// ptracer/ptrace_linux.go, which needs the same note to implement its
// ban-with-fake-return action on arm64.
const ntArmSystemCall = 0x404

// fixupSyscallNo additionally pushes the syscall number through
// NT_ARM_SYSTEM_CALL: on arm64, writing x8 via the general-purpose
// register set alone does not reliably change which syscall the kernel
// dispatches, because the kernel caches the syscall number separately
// during entry. amd64 has no such split and uses a no-op override in
// ptrace_amd64.go.
func fixupSyscallNo(pid int, no int) error {
	iov := unix.Iovec{Base: (*byte)(unsafe.Pointer(&no)), Len: uint64(unsafe.Sizeof(no))}
	_, _, errno := syscall.Syscall6(syscall.SYS_PTRACE, uintptr(unix.PTRACE_SETREGSET),
		uintptr(pid), uintptr(ntArmSystemCall), uintptr(unsafe.Pointer(&iov)), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}
