// Package term wraps the handful of terminal and process-group primitives
// podsh's job control needs that neither os nor os/exec expose: whether a
// stream is a tty, and the controlling terminal's foreground process
// group.
package term

import (
	"os"

	"golang.org/x/sys/unix"
	xterm "golang.org/x/term"
)

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	return xterm.IsTerminal(int(f.Fd()))
}

// Getpgrp returns the calling process's own process group id.
func Getpgrp() int {
	return unix.Getpgrp()
}

// Tcgetpgrp returns the foreground process group id of the terminal
// connected to fd.
func Tcgetpgrp(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.TIOCGPGRP)
}

// Tcsetpgrp makes pgid the foreground process group of the terminal
// connected to fd.
func Tcsetpgrp(fd int, pgid int) error {
	return unix.IoctlSetPointerInt(fd, unix.TIOCSPGRP, pgid)
}
