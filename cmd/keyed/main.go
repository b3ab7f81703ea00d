// Command keyed runs a program under ptrace and replaces the kernel
// randomness it observes (getrandom(2), reads from /dev/random and
// /dev/urandom) with a deterministic keystream derived from a passphrase.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/venusroot/keyed/internal/controller"
	"github.com/venusroot/keyed/internal/interceptor"
	"github.com/venusroot/keyed/internal/kdf"
	"github.com/venusroot/keyed/internal/keyederr"
	"github.com/venusroot/keyed/internal/memproxy"
	"github.com/venusroot/keyed/internal/prompt"
	"github.com/venusroot/keyed/internal/session"
)

var (
	help    bool
	keyfile string
	repeat  int
	fakePID fakePIDFlag
	verbose bool
)

// fakePIDFlag implements flag.Value for an optional-argument "-p": a bare
// "-p" means fake pid 2 and "-p=7" sets an explicit value. The merged
// "-p7" form is not accepted: the standard flag package parses it as an
// unknown flag named "p7".
type fakePIDFlag struct {
	set   bool
	value int
}

func (f *fakePIDFlag) String() string {
	if !f.set {
		return ""
	}
	return fmt.Sprintf("%d", f.value)
}

func (f *fakePIDFlag) Set(s string) error {
	f.set = true
	// A bare "-p" reaches Set as "true", the same string flag.Bool
	// flags receive; treat it like the reference CLI's bare "-p"
	// (fake pid 2). An explicit "-p=7" reaches Set as "7".
	if s == "" || s == "true" {
		f.value = 2
		return nil
	}
	var v int
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return fmt.Errorf("invalid pid %q", s)
	}
	f.value = v
	return nil
}

// IsBoolFlag lets "-p" be given without an argument, like flag.Bool, while
// still accepting "-p=7" to set an explicit value.
func (f *fakePIDFlag) IsBoolFlag() bool { return true }

func main() {
	flag.Usage = printUsage
	flag.BoolVar(&help, "h", false, "print this message")
	flag.StringVar(&keyfile, "k", "", "read passphrase from a file")
	flag.IntVar(&repeat, "n", 1, "number of times to repeat the passphrase prompt")
	flag.Var(&fakePID, "p", "also intercept getpid() syscalls, optionally reporting pid")
	flag.BoolVar(&verbose, "v", false, "verbose messages")
	flag.Parse()

	// -h is success, not a usage error: print to standard output and
	// exit 0, distinct from printUsage's stderr/exit-2 path below for
	// malformed flags and a missing command.
	if help {
		writeUsage(os.Stdout)
		os.Exit(0)
	}

	argv := flag.Args()
	if len(argv) == 0 {
		printUsage()
	}

	if err := run(argv); err != nil {
		fatal(err)
	}
}

// writeUsage writes the usage text to w without exiting, so it can be
// shared between the -h success path and the usage-error path below.
func writeUsage(w io.Writer) {
	fmt.Fprintf(w, "usage: %s [-hv] [-n n] [-k file] [-p[=pid]] command [args]\n", os.Args[0])
	old := flag.CommandLine.Output()
	flag.CommandLine.SetOutput(w)
	flag.PrintDefaults()
	flag.CommandLine.SetOutput(old)
}

// printUsage is installed as flag.Usage: it handles malformed flags (and,
// via main, a missing command), both genuine usage errors, so it writes
// to standard error and exits non-zero.
func printUsage() {
	writeUsage(os.Stderr)
	os.Exit(2)
}

func run(argv []string) error {
	passphrase, err := acquirePassphrase()
	if err != nil {
		return err
	}

	key, err := kdf.Derive([]byte(passphrase))
	if err != nil {
		return err
	}

	ctrl, err := controller.Spawn(argv)
	if err != nil {
		return err
	}

	var fakePIDPtr *int
	if fakePID.set {
		v := fakePID.value
		fakePIDPtr = &v
	}

	sess := session.New(key, verbose, fakePIDPtr, ctrl.Pid, 16)
	defer sess.Close()

	mem := memproxy.New(ctrl.Pid)
	ic := interceptor.New(ctrl, mem, sess)

	status, err := ic.Run()
	if err != nil {
		return err
	}
	os.Exit(status)
	return nil
}

func acquirePassphrase() (string, error) {
	if keyfile != "" {
		return prompt.FromFile(keyfile)
	}

	pass, err := prompt.FromTerminal("passphrase: ")
	if err != nil {
		return "", err
	}
	for i := 0; i < repeat; i++ {
		check, err := prompt.FromTerminal("passphrase (again): ")
		if err != nil {
			return "", err
		}
		if check != pass {
			return "", keyederr.New(keyederr.Usage, "passphrases don't match")
		}
	}
	return pass, nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "keyed: %s\n", err)
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	for _, k := range []keyederr.Kind{
		keyederr.Usage, keyederr.IO, keyederr.Kdf, keyederr.Spawn,
		keyederr.Trace, keyederr.Capacity, keyederr.Resource,
	} {
		if keyederr.Is(err, k) {
			return int(k) + 1
		}
	}
	return 1
}
