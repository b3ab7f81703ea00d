// Package controller is the Tracee Controller: it manages the lifecycle
// of the child process — spawning it under ptrace, advancing it to its
// next syscall stop, and propagating its exit. Grounded on the reference
// strace tool's main.go (os/exec with SysProcAttr{Ptrace: true}) and the
// teacher's ptracer.TraceRun wait loop and setPtraceOption.
package controller

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/venusroot/keyed/internal/keyederr"
)

// Controller owns the os/exec.Cmd for one traced child.
type Controller struct {
	cmd *exec.Cmd
	Pid int
}

// Spawn forks and execs argv with ptrace enabled. It blocks until the
// initial exec-induced stop, applies PTRACE_O_EXITKILL so the kernel kills
// the tracee if this process dies, and returns with the tracee still
// suspended at that post-exec stop, which is not a syscall stop; the
// first Advance brings it to its first syscall-entry stop.
//
// The calling goroutine's OS thread is locked for the remaining lifetime
// of the Controller: ptrace operations are per-thread, and every
// subsequent Advance/Terminate call must originate from the same thread
// that issued PTRACE_TRACEME's parent-side wait.
func Spawn(argv []string) (*Controller, error) {
	if len(argv) == 0 {
		return nil, keyederr.New(keyederr.Usage, "no command given")
	}
	runtime.LockOSThread()

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Ptrace: true}

	if err := cmd.Start(); err != nil {
		return nil, keyederr.New(keyederr.Spawn, err.Error())
	}

	// cmd.Wait is not used here: the child is stopped by its own
	// PTRACE_TRACEME-induced SIGTRAP on exec, and we need the pid alive
	// under our control rather than reaped by exec.Cmd's bookkeeping.
	pid := cmd.Process.Pid
	var ws unix.WaitStatus
	if _, err := unix.Wait4(pid, &ws, 0, nil); err != nil {
		return nil, keyederr.New(keyederr.Trace, fmt.Sprintf("initial stop: %v", err))
	}
	if !ws.Stopped() {
		return nil, keyederr.New(keyederr.Trace, fmt.Sprintf("expected initial stop, got %v", ws))
	}

	if err := unix.PtraceSetOptions(pid, unix.PTRACE_O_EXITKILL); err != nil {
		return nil, keyederr.New(keyederr.Trace, fmt.Sprintf("set options: %v", err))
	}

	return &Controller{cmd: cmd, Pid: pid}, nil
}

// Stop describes the tracee's state after Advance returns.
type Stop struct {
	Exited     bool
	ExitStatus int
	Signaled   bool
	Signal     unix.Signal
}

// Advance resumes the tracee until its next syscall-entry or
// syscall-exit stop (PTRACE_SYSCALL), then blocks until that stop, the
// tracee's exit, or its death by signal is observed.
func (c *Controller) Advance() (Stop, error) {
	if err := unix.PtraceSyscall(c.Pid, 0); err != nil {
		return Stop{}, keyederr.New(keyederr.Trace, fmt.Sprintf("ptrace syscall: %v", err))
	}
	var ws unix.WaitStatus
	if _, err := unix.Wait4(c.Pid, &ws, 0, nil); err != nil {
		return Stop{}, keyederr.New(keyederr.Trace, fmt.Sprintf("wait4: %v", err))
	}
	switch {
	case ws.Exited():
		return Stop{Exited: true, ExitStatus: ws.ExitStatus()}, nil
	case ws.Signaled():
		return Stop{Signaled: true, Signal: ws.Signal()}, nil
	case ws.Stopped():
		return Stop{}, nil
	default:
		return Stop{}, keyederr.New(keyederr.Trace, fmt.Sprintf("unexpected wait status: %v", ws))
	}
}

// TerminateWith exits the supervisor process with code, the same status
// the tracee itself requested via exit()/exit_group() or its own process
// termination.
func TerminateWith(code int) {
	os.Exit(code)
}
