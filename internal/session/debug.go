package session

import (
	"fmt"
	"os"
)

func debugf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "keyed: "+format+"\n", args...)
}
