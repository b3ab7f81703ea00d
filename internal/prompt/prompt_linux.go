// Package prompt reads a passphrase from the controlling terminal without
// echoing it, or from a file. Grounded on the reference implementation's
// get_passphrase (open /dev/tty, disable ECHO, read one line, restore),
// reimplemented on top of golang.org/x/term instead of termios calls made
// by hand.
package prompt

import (
	"bufio"
	"os"

	"golang.org/x/term"

	"github.com/venusroot/keyed/internal/keyederr"
)

// MaxLen bounds a single passphrase line, matching the reference
// implementation's fixed PASSPHRASE_MAX buffer.
const MaxLen = 1024

// FromTerminal opens /dev/tty directly (not stdin, which may be
// redirected), writes prompt, disables echo, reads one line and restores
// the terminal's prior mode before returning.
//
// term.ReadPassword only disables ECHO, leaving canonical line processing
// in place, which matches the reference implementation's termios tweak
// (it clears c_lflag's ECHO bit alone, not the rest of canonical mode).
func FromTerminal(label string) (string, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return "", keyederr.New(keyederr.IO, "/dev/tty: "+err.Error())
	}
	defer tty.Close()

	if _, err := tty.WriteString(label); err != nil {
		return "", keyederr.New(keyederr.IO, "/dev/tty: "+err.Error())
	}

	line, err := term.ReadPassword(int(tty.Fd()))
	tty.WriteString("\n")
	if err != nil {
		return "", keyederr.New(keyederr.IO, "/dev/tty: "+err.Error())
	}
	if len(line) >= MaxLen {
		return "", keyederr.New(keyederr.Usage, "passphrase too long")
	}
	return string(line), nil
}

// FromFile reads a passphrase from the first line of path, matching the
// reference implementation's fread-then-scan-for-newline behavior.
func FromFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", keyederr.New(keyederr.IO, err.Error())
	}
	defer f.Close()

	line, err := readLine(f, MaxLen)
	if err != nil {
		return "", err
	}
	return line, nil
}

func readLine(r *os.File, maxLen int) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, maxLen), maxLen)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", keyederr.New(keyederr.IO, err.Error())
		}
		return "", nil
	}
	line := scanner.Text()
	if len(line) >= maxLen {
		return "", keyederr.New(keyederr.Usage, "passphrase too long")
	}
	return line, nil
}
