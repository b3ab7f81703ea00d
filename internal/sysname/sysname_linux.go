// Package sysname resolves the small, closed set of syscall numbers the
// interceptor classifies into names for verbose diagnostics. Grounded on
// the teacher's pattern of mapping syscall numbers to names for trace
// output (runner/ptrace/handle_linux.go), but scoped to just the table in
// spec.md §4.2 rather than pulling in a full syscall-name library for
// eight names.
package sysname

// Lookup returns a human-readable syscall name, or "sys_unknown" if the
// number is outside the table this tool classifies.
func Lookup(no uint64) string {
	if name, ok := table[no]; ok {
		return name
	}
	return "sys_unknown"
}
