package sysname

import "golang.org/x/sys/unix"

// arm64 has no open(2); only openat(2) exists.
var table = map[uint64]string{
	unix.SYS_OPENAT:     "openat",
	unix.SYS_CLOSE:      "close",
	unix.SYS_READ:       "read",
	unix.SYS_GETRANDOM:  "getrandom",
	unix.SYS_GETPID:     "getpid",
	unix.SYS_EXIT:       "exit",
	unix.SYS_EXIT_GROUP: "exit_group",
}
