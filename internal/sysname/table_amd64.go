package sysname

import "golang.org/x/sys/unix"

var table = map[uint64]string{
	unix.SYS_OPEN:       "open",
	unix.SYS_OPENAT:     "openat",
	unix.SYS_CLOSE:      "close",
	unix.SYS_READ:       "read",
	unix.SYS_GETRANDOM:  "getrandom",
	unix.SYS_GETPID:     "getpid",
	unix.SYS_EXIT:       "exit",
	unix.SYS_EXIT_GROUP: "exit_group",
}
