package interceptor

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/venusroot/keyed/internal/controller"
	"github.com/venusroot/keyed/internal/fdset"
	"github.com/venusroot/keyed/internal/keystream"
	"github.com/venusroot/keyed/internal/memproxy"
	"github.com/venusroot/keyed/internal/session"
)

// scriptedProxy replays a fixed sequence of register snapshots, one per
// GetRegs call, and records every mutation the Interceptor makes.
type write struct {
	addr uintptr
	data []byte
}

type scriptedProxy struct {
	regs []memproxy.Regs
	i    int

	setRegs []memproxy.Regs
	writes  []write
	returns []int64
}

func (p *scriptedProxy) GetRegs() (memproxy.Regs, error) {
	r := p.regs[p.i]
	p.i++
	return r, nil
}

func (p *scriptedProxy) SetRegs(r memproxy.Regs) error {
	p.setRegs = append(p.setRegs, r)
	return nil
}

func (p *scriptedProxy) ReadCString(addr uintptr, maxLen int) (string, error) {
	return "/dev/urandom", nil
}

func (p *scriptedProxy) WriteBytes(addr uintptr, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	p.writes = append(p.writes, write{addr, cp})
	return nil
}

func (p *scriptedProxy) PokeReturn(value int64) error {
	p.returns = append(p.returns, value)
	return nil
}

// scriptedAdvancer returns a fixed sequence of stops, one per Advance call.
type scriptedAdvancer struct {
	stops []controller.Stop
	i     int
}

func (a *scriptedAdvancer) Advance() (controller.Stop, error) {
	s := a.stops[a.i]
	a.i++
	return s, nil
}

func regsFor(sysno uint64, args [6]uint64) memproxy.Regs {
	return memproxy.NewRegs(unix.PtraceRegs{
		Orig_rax: sysno,
		Rdi:      args[0],
		Rsi:      args[1],
		Rdx:      args[2],
		R10:      args[3],
		R8:       args[4],
		R9:       args[5],
	})
}

// TestRun_GetrandomEmulated drives one getrandom() entry/exit pair through
// the full Interceptor loop and checks the keystream bytes land in the
// tracee's buffer and the return value is poked to the requested length.
func TestRun_GetrandomEmulated(t *testing.T) {
	entry := regsFor(318 /* getrandom */, [6]uint64{0x4000, 8, 0})
	exit := regsFor(318, [6]uint64{0x4000, 8, 0})

	proxy := &scriptedProxy{regs: []memproxy.Regs{entry, exit}}
	adv := &scriptedAdvancer{stops: []controller.Stop{
		{}, // priming Advance past the post-exec stop
		{},
		{Exited: true, ExitStatus: 0},
	}}

	key := [keystream.KeySize]byte{1, 2, 3}
	sess := session.New(key, false, nil, 1234, fdset.DefaultCapacity)

	ic := New(adv, proxy, sess)
	status, err := ic.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if status != 0 {
		t.Fatalf("Run() status = %d, want 0", status)
	}
	if len(proxy.setRegs) != 1 {
		t.Fatalf("expected one SetRegs call to neutralise the syscall, got %d", len(proxy.setRegs))
	}
	if len(proxy.writes) != 1 || len(proxy.writes[0].data) != 8 {
		t.Fatalf("expected one 8-byte write, got %+v", proxy.writes)
	}
	if len(proxy.returns) != 1 || proxy.returns[0] != 8 {
		t.Fatalf("expected PokeReturn(8), got %v", proxy.returns)
	}

	// Deterministic: an independent keystream with the same key produces
	// the same first 8 bytes.
	want := make([]byte, 8)
	keystream.New(key).Fill(want)
	if string(proxy.writes[0].data) != string(want) {
		t.Errorf("written bytes = %x, want %x", proxy.writes[0].data, want)
	}
}

// TestRun_OpenReadCloseCapturesFd drives open(/dev/urandom) -> read(fd) ->
// close(fd) through the loop and checks the fd is captured, emulated
// against, then released.
func TestRun_OpenReadCloseCapturesFd(t *testing.T) {
	openEntry := regsFor(2 /* open */, [6]uint64{0x1000})
	openExit := regsFor(2, [6]uint64{0x1000})
	openExit.SetReturnValue(4)

	readEntry := regsFor(0 /* read */, [6]uint64{4, 0x2000, 16})
	readExit := regsFor(0, [6]uint64{4, 0x2000, 16})

	closeEntry := regsFor(3 /* close */, [6]uint64{4})
	closeExit := regsFor(3, [6]uint64{4})

	proxy := &scriptedProxy{regs: []memproxy.Regs{
		openEntry, openExit, readEntry, readExit, closeEntry, closeExit,
	}}
	adv := &scriptedAdvancer{stops: []controller.Stop{
		{}, // priming Advance past the post-exec stop
		{}, {}, {}, {}, {},
		{Exited: true, ExitStatus: 0},
	}}

	key := [keystream.KeySize]byte{9}
	sess := session.New(key, false, nil, 1234, fdset.DefaultCapacity)

	ic := New(adv, proxy, sess)
	if _, err := ic.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if sess.Table.Contains(4) {
		t.Errorf("fd 4 still monitored after close")
	}
	if len(proxy.writes) != 1 || len(proxy.writes[0].data) != 16 {
		t.Fatalf("expected one 16-byte emulated read, got %+v", proxy.writes)
	}
}

// TestRun_FakePIDOverridesGetpid checks that with a fake PID configured,
// getpid()'s return value is overwritten on the exit stop.
func TestRun_FakePIDOverridesGetpid(t *testing.T) {
	entry := regsFor(39 /* getpid */, [6]uint64{})
	exit := regsFor(39, [6]uint64{})

	proxy := &scriptedProxy{regs: []memproxy.Regs{entry, exit}}
	adv := &scriptedAdvancer{stops: []controller.Stop{
		{}, // priming Advance past the post-exec stop
		{},
		{Exited: true, ExitStatus: 0},
	}}

	fake := 7
	sess := session.New([keystream.KeySize]byte{}, false, &fake, 1234, fdset.DefaultCapacity)

	ic := New(adv, proxy, sess)
	if _, err := ic.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(proxy.returns) != 1 || proxy.returns[0] != 7 {
		t.Fatalf("PokeReturn calls = %v, want [7]", proxy.returns)
	}
}

// TestRun_PrimesPastPostExecStop checks that Run issues one Advance before
// ever calling GetRegs, discarding the post-exec stop controller.Spawn
// already consumed, so the first classified frame is the tracee's true
// first syscall-entry stop rather than that stale stop.
func TestRun_PrimesPastPostExecStop(t *testing.T) {
	entry := regsFor(39 /* getpid */, [6]uint64{})
	exit := regsFor(39, [6]uint64{})

	proxy := &scriptedProxy{regs: []memproxy.Regs{entry, exit}}
	adv := &scriptedAdvancer{stops: []controller.Stop{
		{}, // priming: discards the post-exec stop
		{},
		{Exited: true, ExitStatus: 0},
	}}

	sess := session.New([keystream.KeySize]byte{}, false, nil, 1234, fdset.DefaultCapacity)
	ic := New(adv, proxy, sess)
	if _, err := ic.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if proxy.i != len(proxy.regs) {
		t.Fatalf("GetRegs called %d times, want %d (one priming Advance should not call GetRegs)", proxy.i, len(proxy.regs))
	}
	if adv.i != len(adv.stops) {
		t.Fatalf("Advance called %d times, want %d", adv.i, len(adv.stops))
	}
}

// TestExitGroup_ClassifiedTerminate checks that an exit_group() entry stop
// is classified as ClassTerminate carrying the tracee's exit code.
func TestExitGroup_ClassifiedTerminate(t *testing.T) {
	entry := regsFor(231 /* exit_group */, [6]uint64{5})

	proxy := &scriptedProxy{regs: []memproxy.Regs{entry}}
	adv := &scriptedAdvancer{} // Advance should never be called

	sess := session.New([keystream.KeySize]byte{}, false, nil, 1234, fdset.DefaultCapacity)
	ic := New(adv, proxy, sess)
	_ = ic

	// On a ClassTerminate frame Run calls controller.TerminateWith, which
	// calls os.Exit, so Run cannot be driven down that path without
	// exiting the test binary. The classification decision is checked
	// directly through classify instead.
	f := classify(entry, proxy, sess.Table, sess.FakePID)
	if f.class != ClassTerminate || f.exitCode != 5 {
		t.Fatalf("classify(exit_group) = %+v, want ClassTerminate exitCode=5", f)
	}
}
