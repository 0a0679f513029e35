// Package launch implements podsh's Launcher: turning a resolved Pipeline
// into a running process group, wiring pipes and redirected descriptors
// between stages, and transferring the controlling terminal for
// foreground pipelines.
//
// A job-control shell needs work done between fork and exec in each
// child (setpgid, tcsetpgrp). Go offers no fork hook, but
// os/exec.Cmd.SysProcAttr covers both: the kernel applies Setpgid/Pgid
// and Foreground/Ctty atomically in the cloned child before the exec.
package launch

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/tjper/podsh/internal/errors"
	"github.com/tjper/podsh/internal/shell/job"
	"github.com/tjper/podsh/internal/shell/parse"
	"github.com/tjper/podsh/internal/shell/redirect"
	"github.com/tjper/podsh/internal/shell/signalpolicy"
	"github.com/tjper/podsh/internal/shell/term"
)

// NotFoundError is returned when a pipeline stage names a command that
// cannot be found on PATH. Go's os/exec has no way to report this from
// inside a forked child the way execvp does, since Start's own
// clone+execve handshake would just surface as a generic *exec.Error;
// podsh instead resolves every stage's argv[0] with exec.LookPath before
// forking any stage, so a pipeline either launches in full or not at all,
// rather than partially launching with one stage dead on arrival.
type NotFoundError struct{ Name string }

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s: command not found", e.Name) }

// Launcher owns the state a pipeline launch needs across its whole
// lifetime: the controlling terminal, the shell's own process group, and
// the Job Table every launched Job is inserted into.
type Launcher struct {
	Terminal  *os.File
	ShellPGID int
	Table     *job.Table
	// Out receives the foreground status lines put_in_foreground emits
	// (a signaled pipeline's "Exited (<signal>)" line). os.Stdout outside
	// of tests.
	Out io.Writer

	// interactive is false when Terminal is not a tty (piped input, test
	// harnesses); terminal-ownership transfer is skipped entirely then.
	interactive bool
}

// New creates a Launcher bound to terminal (typically os.Stdin) and table.
func New(terminal *os.File, table *job.Table) (*Launcher, error) {
	return &Launcher{
		Terminal:    terminal,
		ShellPGID:   term.Getpgrp(),
		Table:       table,
		Out:         os.Stdout,
		interactive: term.IsTerminal(terminal),
	}, nil
}

// TakeTerminal waits until the shell's own process group is the
// terminal's foreground group, sending SIGTTIN to that group on each pass
// so a background shell stops until it is resumed in the foreground. This
// relies on SIGTTIN's default disposition, so it must run before
// signalpolicy.IgnoreInShell; with SIGTTIN ignored the loop never ends.
// Call this once at startup, mirroring bash's init_job_control sequence.
func (l *Launcher) TakeTerminal() error {
	for {
		fg, err := term.Tcgetpgrp(int(l.Terminal.Fd()))
		if err != nil {
			return errors.Wrap(err)
		}
		if fg == l.ShellPGID {
			return nil
		}
		if err := unix.Kill(-l.ShellPGID, syscall.SIGTTIN); err != nil {
			return errors.Wrap(err)
		}
	}
}

// Launch runs every stage of p as a single process group, wires desc onto
// the pipeline's endpoints, inserts the resulting Job into the Table, and
// puts it in the foreground or background per p.Foreground. raw is the
// original trimmed input line, carried only for the Job's RawInput field.
func (l *Launcher) Launch(raw string, p *parse.Pipeline, desc *redirect.Descriptors) (*job.Job, error) {
	for _, st := range p.Stages {
		if _, err := exec.LookPath(st.Argv[0]); err != nil {
			return nil, &NotFoundError{Name: st.Argv[0]}
		}
	}

	n := len(p.Stages)
	pipes := make([][2]*os.File, n-1)
	for i := range pipes {
		r, w, err := os.Pipe()
		if err != nil {
			return nil, errors.Wrapf(err, "allocate pipe %d", i)
		}
		pipes[i] = [2]*os.File{r, w}
	}

	procs := make([]job.Process, n)
	cmds := make([]*exec.Cmd, n)
	pgid := 0

	for i, st := range p.Stages {
		cmd := exec.Command(st.Argv[0], st.Argv[1:]...)
		wireStdio(cmd, i, n, pipes, desc)

		attr := &syscall.SysProcAttr{Setpgid: true}
		if i > 0 {
			attr.Pgid = pgid
		}
		// Foreground/Ctty realizes the child-side tcsetpgrp: the runtime
		// issues the TIOCSPGRP ioctl in the forked child before exec and
		// before the fd shuffle, so Ctty is the terminal fd as the parent
		// holds it. One transfer per group is enough -- later stages join
		// the already-foreground group via Setpgid/Pgid. A non-tty stdin
		// must skip this entirely: the ioctl would fail and kill the spawn.
		if p.Foreground && l.interactive && i == 0 {
			attr.Foreground = true
			attr.Ctty = int(l.Terminal.Fd())
		}
		cmd.SysProcAttr = attr

		if err := signalpolicy.AroundFork(cmd.Start); err != nil {
			l.abort(cmds[:i], pgid, pipes)
			return nil, errors.Wrapf(err, "spawn stage %d (%s)", i, st.Argv[0])
		}
		cmds[i] = cmd

		pid := cmd.Process.Pid
		if i == 0 {
			pgid = pid
		}
		// Redundant with SysProcAttr.Setpgid/Pgid, which already won the
		// race atomically in the child; the classic both-sides setpgid,
		// where whichever call lands second fails benignly.
		_ = unix.Setpgid(pid, pgid)

		procs[i] = job.Process{Argv: st.Argv, Pid: pid, HasPipe: st.HasPipe}
	}

	for _, pr := range pipes {
		pr[0].Close()
		pr[1].Close()
	}
	desc.Close()

	j := &job.Job{JID: pgid, Foreground: p.Foreground, RawInput: raw, Processes: procs}
	l.Table.Insert(j)

	if p.Foreground {
		l.PutInForeground(j, false)
	} else {
		l.PutInBackground(j, false)
	}
	return j, nil
}

// wireStdio assigns cmd's Stdin/Stdout/Stderr: interior stages connect to
// their neighbor's pipe end; the first stage's stdin and the last stage's
// stdout/stderr fall back to the resolved redirection descriptors, or the
// shell's own streams if none were given.
func wireStdio(cmd *exec.Cmd, i, n int, pipes [][2]*os.File, desc *redirect.Descriptors) {
	switch {
	case i > 0:
		cmd.Stdin = pipes[i-1][0]
	case desc.In != nil:
		cmd.Stdin = desc.In
	default:
		cmd.Stdin = os.Stdin
	}

	switch {
	case i < n-1:
		cmd.Stdout = pipes[i][1]
	case desc.Out != nil:
		cmd.Stdout = desc.Out
	default:
		cmd.Stdout = os.Stdout
	}

	if i == n-1 && desc.Err != nil {
		cmd.Stderr = desc.Err
	} else {
		cmd.Stderr = os.Stderr
	}
}

// abort is called when a mid-pipeline stage fails to spawn. It kills
// whatever process group was already formed and reaps the
// partially-started stages so none are leaked as orphans.
func (l *Launcher) abort(started []*exec.Cmd, pgid int, pipes [][2]*os.File) {
	if pgid != 0 {
		_ = unix.Kill(-pgid, syscall.SIGKILL)
	}
	for _, c := range started {
		if c != nil {
			_ = c.Wait()
		}
	}
	for _, pr := range pipes {
		pr[0].Close()
		pr[1].Close()
	}
}

// PutInForeground hands the terminal to job's process group, optionally
// sends SIGCONT, blocks until every stage has exited or the group is
// stopped, then hands the terminal back to the shell on every path --
// ownership must be restored even on failure or subsequent input is
// lost. A job whose last stage was killed by a signal gets its
// "Exited (<signal>)" status line here; a normal exit is silent, matching
// interactive-shell convention. Completed jobs are removed from the Table
// before returning, so they never reappear in a later "jobs" listing or
// Poll.
func (l *Launcher) PutInForeground(j *job.Job, sendCont bool) {
	fd := int(l.Terminal.Fd())
	if l.interactive {
		_ = term.Tcsetpgrp(fd, j.JID)
	}
	if sendCont {
		j.MarkContinued()
		_ = unix.Kill(-j.JID, syscall.SIGCONT)
	}
	l.waitForeground(j)
	if l.interactive {
		_ = term.Tcsetpgrp(fd, l.ShellPGID)
	}

	if j.Status() != job.Done {
		return
	}
	if last := j.LastProcess(); last.Signaled {
		name := job.TitleCase(unix.Signal(last.Signal).String())
		fmt.Fprintln(l.Out, job.FormatExitedSignal(j.JID, name, j.RawInput))
	}
	l.Table.Remove(j.JID)
}

// PutInBackground optionally sends SIGCONT and returns immediately,
// leaving the job's completion to the Reaper. The job's bookkeeping is
// deliberately untouched here: the next Poll observes the kernel's
// continued status and prints the Continued transition itself.
func (l *Launcher) PutInBackground(j *job.Job, sendCont bool) {
	if sendCont {
		_ = unix.Kill(-j.JID, syscall.SIGCONT)
	}
}

// waitForeground blocks on the whole process group until the job is Done
// or Stopped. Waiting on the group rather than the last stage alone means
// a pipeline whose first stage outlives the last is still fully reaped
// here, and nothing is left for a later Poll to report as stale.
func (l *Launcher) waitForeground(j *job.Job) {
	for {
		if st := j.Status(); st == job.Done || st == job.Stopped {
			return
		}
		var ws unix.WaitStatus
		wpid, err := unix.Wait4(-j.JID, &ws, unix.WUNTRACED, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			// ECHILD: the group is gone (nothing left to reap). Mark any
			// stage not yet observed as completed so the job retires rather
			// than lingering in the Table unreapable.
			j.MarkOrphaned()
			return
		}
		j.Observe(wpid, ws)
	}
}
