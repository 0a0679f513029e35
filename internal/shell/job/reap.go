package job

import (
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// Poll drives the Reaper: for every live Job, it repeatedly calls Wait4
// with WNOHANG|WUNTRACED|WCONTINUED until no more state changes are
// available, updates the matching Process, then prints a status line for
// the Job if its aggregate Status has transitioned. Jobs that reach Done
// are printed once and removed from the Table.
//
// Poll waits on the whole process group via a negative pid rather than on
// the last stage alone, so every stage's exit is observed and a pipeline
// whose first stage hangs is never misreported as done.
//
// onDone, if non-nil, is called once for each Job that completes during
// this Poll, with the representative (last-stage) Process used to decide
// the status line -- callers use it to update something like a
// last-exit-status variable.
func (t *Table) Poll(w io.Writer, onDone func(j *Job, last Process)) {
	for _, j := range t.List() {
		t.pollJob(w, j, onDone)
	}
}

func (t *Table) pollJob(w io.Writer, j *Job, onDone func(j *Job, last Process)) {
	for {
		var ws unix.WaitStatus
		wpid, err := unix.Wait4(-j.JID, &ws, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
		if err == unix.EINTR {
			continue
		}
		if err == unix.ECHILD {
			// No children left in the group at all: whatever this Job still
			// thought was live can never be reaped, so retire it.
			j.MarkOrphaned()
			break
		}
		if err != nil || wpid <= 0 {
			break
		}
		j.Observe(wpid, ws)
	}

	newStatus := j.Status()
	if newStatus == j.prevStatus {
		return
	}

	switch newStatus {
	case Done:
		last := j.LastProcess()
		if last.Signaled {
			name := TitleCase(unix.Signal(last.Signal).String())
			fmt.Fprintln(w, FormatExitedSignal(j.JID, name, j.RawInput))
		} else {
			fmt.Fprintln(w, FormatExited(j.JID, last.ExitCode, j.RawInput))
		}
		if onDone != nil {
			onDone(j, last)
		}
		t.Remove(j.JID)
		return
	case Stopped:
		fmt.Fprintln(w, FormatStopped(j.JID, j.RawInput))
	case Running:
		if j.prevStatus == Stopped {
			fmt.Fprintln(w, FormatContinued(j.JID, j.RawInput))
		}
	}
	j.prevStatus = newStatus
}
