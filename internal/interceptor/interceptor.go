package interceptor

import (
	"fmt"

	"github.com/venusroot/keyed/internal/controller"
	"github.com/venusroot/keyed/internal/keyederr"
	"github.com/venusroot/keyed/internal/memproxy"
	"github.com/venusroot/keyed/internal/session"
)

// Advancer is the subset of *controller.Controller the interceptor drives.
type Advancer interface {
	Advance() (controller.Stop, error)
}

// Proxy is the subset of *memproxy.Proxy the interceptor drives.
type Proxy interface {
	GetRegs() (memproxy.Regs, error)
	SetRegs(memproxy.Regs) error
	ReadCString(addr uintptr, maxLen int) (string, error)
	WriteBytes(addr uintptr, data []byte) error
	PokeReturn(value int64) error
}

// Interceptor drives one tracee through its syscall stop-pairs, per
// spec.md §4.2's state machine: Entry -> Classified -> (Neutralised?) ->
// Resumed -> ExitObserved -> PostMutated -> Done.
type Interceptor struct {
	ctrl Advancer
	mem  Proxy
	sess *session.Session
}

// New returns an Interceptor bound to ctrl, mem and sess.
func New(ctrl Advancer, mem Proxy, sess *session.Session) *Interceptor {
	return &Interceptor{ctrl: ctrl, mem: mem, sess: sess}
}

// Run loops until the tracee exits or is killed, returning the status the
// supervisor should itself exit with. On any trace failure it returns a
// non-nil error and the caller is expected to terminate.
//
// Like the reference strace tool's main loop, the toggle between
// classifying an entry stop and post-mutating its matching exit stop is
// driven by alternating a single boolean across iterations, rather than
// by two separate loops. As in that reference loop, the tracee is handed
// to Run already parked at the post-exec SIGTRAP (controller.Spawn's
// initial stop), which is not a syscall stop at all; one priming Advance
// discards it and brings the tracee to its true first syscall-entry stop
// before classification starts.
func (in *Interceptor) Run() (int, error) {
	stop, err := in.ctrl.Advance()
	if err != nil {
		return 0, err
	}
	if stop.Exited {
		return stop.ExitStatus, nil
	}
	if stop.Signaled {
		return 128 + int(stop.Signal), nil
	}

	atEntry := true
	var f frame

	for {
		regs, err := in.mem.GetRegs()
		if err != nil {
			return 0, err
		}

		if atEntry {
			f = classify(regs, in.mem, in.sess.Table, in.sess.FakePID)
			in.sess.Debugf("entry: %s class=%d", f.name, f.class)

			if f.class == ClassTerminate {
				controller.TerminateWith(f.exitCode)
				return f.exitCode, nil
			}

			if f.class == ClassEmulateRandom {
				regs.Neutralise()
				if err := in.mem.SetRegs(regs); err != nil {
					return 0, err
				}
			}
		} else {
			if err := in.postMutate(f, regs); err != nil {
				return 0, err
			}
		}
		atEntry = !atEntry

		stop, err := in.ctrl.Advance()
		if err != nil {
			return 0, err
		}
		if stop.Exited {
			return stop.ExitStatus, nil
		}
		if stop.Signaled {
			return 128 + int(stop.Signal), nil
		}
	}
}

// postMutate applies the exit-side effects for a classified frame, once
// the syscall has actually run (or failed to dispatch, for neutralised
// ones) and the tracee is stopped at the matching exit stop.
func (in *Interceptor) postMutate(f frame, exitRegs memproxy.Regs) error {
	switch f.class {
	case ClassCaptureFD:
		ret := exitRegs.ReturnValue()
		if ret >= 0 {
			if err := in.sess.Table.Add(int(ret)); err != nil {
				return err
			}
			in.sess.Debugf("monitoring fd %d", ret)
		}

	case ClassEmulateRandom:
		buf, err := in.sess.Scratch(int(f.length))
		if err != nil {
			return err
		}
		if err := in.sess.Stream.Fill(buf); err != nil {
			return keyederr.New(keyederr.Resource, fmt.Sprintf("keystream fill: %v", err))
		}
		if err := in.mem.WriteBytes(f.addr, buf); err != nil {
			return err
		}
		if err := in.mem.PokeReturn(int64(f.length)); err != nil {
			return err
		}
		in.sess.Debugf("emulated %s(%d) bytes", f.name, f.length)

	case ClassFakePID:
		if in.sess.FakePID != nil {
			if err := in.mem.PokeReturn(int64(*in.sess.FakePID)); err != nil {
				return err
			}
			in.sess.Debugf("getpid() = %d", *in.sess.FakePID)
		}
	}

	if f.name == "close" {
		in.sess.Table.Remove(f.fd)
	}

	return nil
}
