// Package memproxy is the Tracee Memory Proxy: it copies bytes across the
// process boundary and reads/writes the tracee's saved register block.
// Grounded on the teacher's tracer/context_helper.go (vmRead, vmReadStr)
// and ptracer/ptrace_linux.go (PTRACE_GETREGSET / NT_PRSTATUS).
package memproxy

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/venusroot/keyed/internal/keyederr"
)

var pageSize = os.Getpagesize()

// Proxy reads and writes across the address space of one tracee and
// reads/writes its saved register block.
type Proxy struct {
	Pid int
}

// New returns a Proxy bound to pid.
func New(pid int) *Proxy {
	return &Proxy{Pid: pid}
}

// GetRegs reads the tracee's current register snapshot.
func (p *Proxy) GetRegs() (Regs, error) {
	var raw unix.PtraceRegs
	if err := unix.PtraceGetRegs(p.Pid, &raw); err != nil {
		return Regs{}, keyederr.New(keyederr.Trace, fmt.Sprintf("get regs: %v", err))
	}
	return Regs{raw: raw}, nil
}

// SetRegs writes back a (possibly mutated) register snapshot.
func (p *Proxy) SetRegs(r Regs) error {
	if err := unix.PtraceSetRegs(p.Pid, &r.raw); err != nil {
		return keyederr.New(keyederr.Trace, fmt.Sprintf("set regs: %v", err))
	}
	if r.SyscallNo() == InvalidSyscall {
		if err := fixupSyscallNo(p.Pid, -1); err != nil {
			return keyederr.New(keyederr.Trace, fmt.Sprintf("fixup syscall no: %v", err))
		}
	}
	return nil
}

// PokeReturn overwrites the return-value register of the tracee's saved
// register block in a single read-modify-write cycle.
func (p *Proxy) PokeReturn(value int64) error {
	regs, err := p.GetRegs()
	if err != nil {
		return err
	}
	regs.SetReturnValue(value)
	return p.SetRegs(regs)
}

// ReadBytes copies up to len(buf) bytes from the tracee's address space,
// starting at addr, using PTRACE_PEEKDATA. Short reads are acceptable only
// at page boundaries, as spec.md §4.3 allows.
func (p *Proxy) ReadBytes(addr uintptr, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	n, err := unix.PtracePeekData(p.Pid, addr, buf)
	if err != nil {
		return n, keyederr.New(keyederr.Trace, fmt.Sprintf("read bytes: %v", err))
	}
	return n, nil
}

// WriteBytes copies data into the tracee's address space at addr, one
// word at a time via PTRACE_POKEDATA. A failed or short write is reported
// as an error; the write is not atomic, so words already poked before the
// failure stay written in the tracee.
func (p *Proxy) WriteBytes(addr uintptr, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n, err := unix.PtracePokeData(p.Pid, addr, data)
	if err != nil {
		return keyederr.New(keyederr.Trace, fmt.Sprintf("write bytes: %v", err))
	}
	if n != len(data) {
		return keyederr.New(keyederr.Trace, fmt.Sprintf("short write: wrote %d of %d bytes", n, len(data)))
	}
	return nil
}

// ReadCString reads a NUL-terminated string of at most maxLen bytes from
// the tracee's address space at addr, using process_vm_readv for bulk
// transfer and falling back to PTRACE_PEEKDATA when that syscall is
// unavailable (e.g. kernels built without CONFIG_CROSS_MEMORY_ATTACH).
// Grounded on the teacher's vmReadStr.
func (p *Proxy) ReadCString(addr uintptr, maxLen int) (string, error) {
	buf := make([]byte, maxLen)
	if err := p.vmReadStr(addr, buf); err != nil {
		// Fall back to ptrace peek, one word at a time, matching
		// tingstad-strace's readPtraceText.
		n, rerr := p.ReadBytes(addr, buf)
		if rerr != nil {
			return "", rerr
		}
		buf = buf[:n]
	}
	if i := indexNull(buf); i >= 0 {
		buf = buf[:i]
	}
	return string(buf), nil
}

func indexNull(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}

func (p *Proxy) vmReadStr(addr uintptr, buf []byte) error {
	total := 0
	next := pageSize - int(addr%uintptr(pageSize))
	if next == 0 {
		next = pageSize
	}
	for total < len(buf) {
		chunk := next
		if rest := len(buf) - total; rest < chunk {
			chunk = rest
		}
		n, err := p.vmRead(addr+uintptr(total), buf[total:total+chunk])
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		if indexNull(buf[total:total+n]) >= 0 {
			return nil
		}
		total += n
		next = pageSize
	}
	return nil
}

func (p *Proxy) vmRead(addr uintptr, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	local := []unix.Iovec{{Base: &buf[0], Len: uint64(len(buf))}}
	remote := []unix.Iovec{{Base: (*byte)(unsafe.Pointer(addr)), Len: uint64(len(buf))}}
	n, _, errno := syscall.Syscall6(unix.SYS_PROCESS_VM_READV, uintptr(p.Pid),
		uintptr(unsafe.Pointer(&local[0])), uintptr(len(local)),
		uintptr(unsafe.Pointer(&remote[0])), uintptr(len(remote)), 0)
	if errno != 0 {
		return int(n), errno
	}
	return int(n), nil
}
