// Package builtin implements podsh's fixed built-in dispatcher: a closed
// set of single-stage commands executed in-process rather than forked,
// each returning an exit status recorded as the shell's last exit status.
//
// Argument parsing for export/fg/bg/kill is delegated to
// internal/validator, which folds each built-in's grammar into its own
// Validator-backed parse function.
package builtin

import (
	"fmt"
	"io"
	"os"
	"os/user"
	"strconv"
	"strings"

	"github.com/tjper/podsh/internal/errors"
	"github.com/tjper/podsh/internal/shell/banner"
	"github.com/tjper/podsh/internal/shell/job"
	"github.com/tjper/podsh/internal/validator"
	"golang.org/x/sys/unix"
)

// Names is the fixed set of recognized built-in command names. A
// single-stage pipeline whose argv[0] is in this set is short-circuited:
// no fork occurs.
var Names = map[string]bool{
	"cd":     true,
	"exit":   true,
	"help":   true,
	"bg":     true,
	"fg":     true,
	"export": true,
	"jobs":   true,
	"kill":   true,
}

// IsBuiltin reports whether name is one of the fixed built-in commands.
func IsBuiltin(name string) bool {
	return Names[name]
}

// ErrExit is returned by Run's "exit" built-in to signal the REPL that it
// should terminate with Code.
type ErrExit struct{ Code int }

func (e *ErrExit) Error() string { return fmt.Sprintf("exit %d", e.Code) }

// Env is the host surface a built-in needs: the job table (for
// jobs/fg/bg/kill), the terminal/foreground-transfer primitives (for
// fg/bg), and the last exit status (exit's default argument).
type Env struct {
	Table           *job.Table
	Stdout          io.Writer
	Stderr          io.Writer
	LastExitStatus  int
	PutInForeground func(j *job.Job, sendCont bool)
	PutInBackground func(j *job.Job, sendCont bool)
}

// Run dispatches argv (argv[0] must satisfy IsBuiltin) and returns the
// exit status to record as last_exit_status. If argv[0] is "exit", Run
// returns an *ErrExit instead of a status, and the caller must terminate;
// a non-numeric exit argument instead yields an ordinary usage error.
func Run(env *Env, argv []string) (int, error) {
	name, args := argv[0], argv[1:]
	switch name {
	case "cd":
		return cd(env, args)
	case "exit":
		return 0, exit(env, args)
	case "help":
		fmt.Fprint(env.Stdout, banner.Help(""))
		return 0, nil
	case "export":
		return export(env, args)
	case "jobs":
		return jobsCmd(env, args)
	case "fg":
		return fgBg(env, args, true)
	case "bg":
		return fgBg(env, args, false)
	case "kill":
		return killCmd(env, args)
	default:
		return 1, fmt.Errorf("%s: not a builtin", name)
	}
}

// cd implements "cd [PATH]": PATH defaults to $HOME (or the password
// database's home when HOME is unset), a leading "~" in a relative path
// expands to home, and OS errors are reported verbatim.
func cd(env *Env, args []string) (int, error) {
	home := os.Getenv("HOME")
	if home == "" {
		if u, err := user.Current(); err == nil {
			home = u.HomeDir
		}
	}
	target := home
	if len(args) > 0 {
		target = args[0]
	}
	if target == "~" {
		target = home
	} else if strings.HasPrefix(target, "~/") {
		target = home + target[1:]
	}
	if err := os.Chdir(target); err != nil {
		fmt.Fprintf(env.Stderr, "cd: %s\n", err)
		return 1, nil
	}
	return 0, nil
}

// exit implements "exit [N]": N defaults to LastExitStatus, and every Job
// Table entry is freed before exiting.
func exit(env *Env, args []string) error {
	code := env.LastExitStatus
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return errors.Wrapf(err, "exit: %s: numeric argument required", args[0])
		}
		code = n
	}
	for _, j := range env.Table.List() {
		env.Table.Remove(j.JID)
	}
	return &ErrExit{Code: code}
}

// export implements "export NAME[=VALUE]": VALUE defaults to the empty
// string; a leading "=" is invalid.
func export(env *Env, args []string) (int, error) {
	name, value, err := validator.ParseExportArg(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return 1, nil
	}

	if err := os.Setenv(name, value); err != nil {
		fmt.Fprintf(env.Stderr, "export: %s\n", err)
		return 1, nil
	}
	return 0, nil
}

// jobsCmd implements "jobs": JID/STATUS/COMMAND columns for every live
// job.
func jobsCmd(env *Env, _ []string) (int, error) {
	fmt.Fprintln(env.Stdout, job.JobsHeader())
	for _, j := range env.Table.List() {
		fmt.Fprintln(env.Stdout, j.FormatJobsRow())
	}
	return 0, nil
}

// fgBg implements "fg JID" / "bg JID": locate the Job and call
// PutInForeground/PutInBackground with sendCont = true.
func fgBg(env *Env, args []string, foreground bool) (int, error) {
	name := "bg"
	if foreground {
		name = "fg"
	}
	jid, err := validator.ParseJID(name, args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return 1, nil
	}

	j, ok := env.Table.Get(jid)
	if !ok {
		fmt.Fprintf(env.Stderr, "%s: %d: no such job\n", name, jid)
		return 1, nil
	}

	if foreground {
		env.PutInForeground(j, true)
	} else {
		env.PutInBackground(j, true)
	}
	return 0, nil
}

// killCmd implements "kill [-s SIG] PID": SIG defaults to SIGTERM, and
// may be a decimal number or a portable signal name. PID semantics are
// the OS kill(2) semantics (positive=process, 0=own group, -1=all
// permitted, <-1=process group |PID|).
func killCmd(env *Env, args []string) (int, error) {
	sig, pid, err := validator.ParseKillArgs(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return 1, nil
	}

	if err := unix.Kill(pid, sig); err != nil {
		fmt.Fprintf(env.Stderr, "kill: (%d) - %s\n", pid, err)
		return 1, nil
	}
	return 0, nil
}
