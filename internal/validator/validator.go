// Package validator provides an accumulate-first-failure assertion
// harness (Validator/Assert/AssertFunc/Err) and the three built-in
// argument grammars built on it: kill's "[-s SIG] PID", export's
// "NAME[=VALUE]", and fg/bg's bare numeric job id. Each grammar gets its
// own parse function here so internal/shell/builtin never hand-rolls the
// same Assert-then-Err dance three times over.
package validator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrInvalidInput indicates an input validation check failed.
var ErrInvalidInput = errors.New("invalid input")

// NewErrInvalidInput creates a new error wrapping ErrInvalidInput.
func NewErrInvalidInput(msg string) error {
	return fmt.Errorf("%w; msg: %s", ErrInvalidInput, msg)
}

// NewErrInvalidInputf creates a new error wrapping ErrInvalidInput with a
// formatted message.
func NewErrInvalidInputf(format string, args ...interface{}) error {
	return NewErrInvalidInput(fmt.Sprintf(format, args...))
}

// New creates a Validator instance.
func New() *Validator {
	return &Validator{}
}

// Validator provides a set of methods to ensure arbitrary conditions are
// true. Once one condition is false, Validator records the failing
// condition and does not proceed with further checks, so the first
// failure reported is always the first one encountered.
type Validator struct {
	err error
}

// AssertFunc checks that fn returns true; if not, msg is used to construct
// an error to be returned by Validator.Err().
func (v *Validator) AssertFunc(fn func() bool, msg string) {
	if v.err != nil {
		return
	}
	if !fn() {
		v.err = NewErrInvalidInput(msg)
	}
}

// Assert checks that condition is true; if not, msg is used to construct an
// error to be returned by Validator.Err().
func (v *Validator) Assert(condition bool, msg string) {
	if v.err != nil {
		return
	}
	if !condition {
		v.err = NewErrInvalidInput(msg)
	}
}

// Err returns the error encountered during the Validator's checks, if any.
func (v Validator) Err() error {
	return v.err
}

// ParseJID validates and parses the single numeric job id argument fg/bg
// take. cmd is "fg" or "bg", used only to name the built-in in the
// returned usage error.
func ParseJID(cmd string, args []string) (int, error) {
	v := New()
	v.AssertFunc(func() bool { return len(args) == 1 }, fmt.Sprintf("%s: usage: %s JID", cmd, cmd))
	if err := v.Err(); err != nil {
		return 0, err
	}

	jid, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, NewErrInvalidInputf("%s: %s: job id must be numeric", cmd, args[0])
	}
	return jid, nil
}

// ParseExportArg validates and splits export's single "NAME[=VALUE]"
// operand: VALUE defaults to the empty string, and a leading "=" is
// invalid.
func ParseExportArg(args []string) (name, value string, err error) {
	v := New()
	v.Assert(len(args) == 1, "export: usage: export NAME[=VALUE]")
	v.AssertFunc(func() bool { return len(args) != 1 || !strings.HasPrefix(args[0], "=") }, "export: invalid name")
	if err := v.Err(); err != nil {
		return "", "", err
	}

	name, value, _ = strings.Cut(args[0], "=")
	return name, value, nil
}

// signalByName maps the portable signal name set kill accepts to their
// unix.Signal values.
var signalByName = map[string]unix.Signal{
	"SIGHUP":  unix.SIGHUP,
	"SIGINT":  unix.SIGINT,
	"SIGTERM": unix.SIGTERM,
	"SIGKILL": unix.SIGKILL,
	"SIGSTOP": unix.SIGSTOP,
	"SIGCONT": unix.SIGCONT,
	"SIGQUIT": unix.SIGQUIT,
	"SIGALRM": unix.SIGALRM,
	"SIGTSTP": unix.SIGTSTP,
}

// ParseKillArgs validates and parses kill's "[-s SIG] PID" operands: SIG
// defaults to SIGTERM and may be given as a decimal number or one of the
// portable names above; PID must be numeric (its sign/magnitude semantics
// are those of the OS kill(2) syscall, not podsh's concern to validate
// further).
func ParseKillArgs(args []string) (sig unix.Signal, pid int, err error) {
	sig = unix.SIGTERM
	if len(args) >= 2 && args[0] == "-s" {
		name := args[1]
		if s, ok := signalByName[name]; ok {
			sig = s
		} else if n, convErr := strconv.Atoi(name); convErr == nil {
			sig = unix.Signal(n)
		} else {
			return 0, 0, NewErrInvalidInputf("kill: %s: invalid signal specification", name)
		}
		args = args[2:]
	}

	v := New()
	v.Assert(len(args) == 1, "kill: usage: kill [-s SIG] PID")
	if err := v.Err(); err != nil {
		return 0, 0, err
	}

	pid, err = strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, NewErrInvalidInputf("kill: %s: arguments must be process or job IDs", args[0])
	}
	return sig, pid, nil
}
