package interceptor

import (
	"github.com/venusroot/keyed/internal/sysname"
)

// classify reads the tracee's entry-stop registers and decides what, if
// anything, the interceptor needs to do about this syscall. It never
// mutates any tracee state; callers act on the returned frame.
func classify(regs RegisterView, mem MemoryReader, table Monitored, fakePID *int) frame {
	no := regs.SyscallNo()
	name := sysname.Lookup(no)

	switch name {
	case "open":
		return classifyOpen(name, regs, mem)
	case "close":
		return frame{name: name, class: ClassIgnore, fd: int(regs.Arg(0))}
	case "read":
		return classifyRead(name, regs, table)
	case "getrandom":
		return classifyGetrandom(name, regs)
	case "getpid":
		f := frame{name: name, class: ClassIgnore}
		if fakePID != nil {
			f.class = ClassFakePID
		}
		return f
	case "exit", "exit_group":
		return frame{name: name, class: ClassTerminate, exitCode: int(regs.Arg(0))}
	default:
		return frame{name: name, class: ClassIgnore}
	}
}

func classifyOpen(name string, regs RegisterView, mem MemoryReader) frame {
	addr := uintptr(regs.Arg(0))
	path, err := mem.ReadCString(addr, pathCaptureLen)
	f := frame{name: name, class: ClassIgnore}
	if err == nil && isMonitoredPath(path) {
		f.class = ClassCaptureFD
	}
	return f
}

func classifyRead(name string, regs RegisterView, table Monitored) frame {
	fd := int(regs.Arg(0))
	length := regs.Arg(2)
	f := frame{name: name, class: ClassIgnore, fd: fd}
	if table.Contains(fd) && length > 0 {
		f.class = ClassEmulateRandom
		f.addr = uintptr(regs.Arg(1))
		f.length = length
	}
	return f
}

func classifyGetrandom(name string, regs RegisterView) frame {
	length := regs.Arg(1)
	f := frame{name: name, class: ClassIgnore}
	if length > 0 {
		f.class = ClassEmulateRandom
		f.addr = uintptr(regs.Arg(0))
		f.length = length
	}
	return f
}
