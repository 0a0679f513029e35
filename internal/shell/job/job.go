// Package job implements podsh's job table and reaper: the data model for
// a launched pipeline, and the state machine that tracks it from launch
// through completion. A Job is an N-stage pipeline sharing a single pgid;
// there is no pending phase, since a Job is only ever constructed once a
// line is ready to launch.
package job

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// Status is the human-readable label a Job carries.
type Status string

const (
	// Running indicates at least one process is neither stopped nor
	// completed.
	Running Status = "Running"
	// Stopped indicates every process is stopped or completed, and at
	// least one is stopped.
	Stopped Status = "Stopped"
	// Done indicates every process has completed.
	Done Status = "Done"
)

// Process is a single stage of a pipeline.
type Process struct {
	// Argv is argv[0..] for this stage; Argv[0] is the command name.
	Argv []string
	// Pid is the OS process id, assigned at fork.
	Pid int
	// HasPipe is true if this stage's stdout is connected to the next
	// stage's stdin.
	HasPipe bool

	Stopped   bool
	Completed bool
	// Signaled is true if the process was terminated by a signal rather
	// than exiting normally.
	Signaled bool
	// ExitCode is the exit code if the process exited normally.
	ExitCode int
	// Signal is the terminating signal number if Signaled is true.
	Signal int
}

// Name returns the process's command name (Argv[0]), or "" if Argv is
// empty.
func (p Process) Name() string {
	if len(p.Argv) == 0 {
		return ""
	}
	return p.Argv[0]
}

// Job is a user-entered command line launched as one or more processes
// sharing a process group.
type Job struct {
	// JID is the job id: the first stage's pid, and the process group id
	// shared by every stage.
	JID int
	// Foreground is false if the raw line ended with "&".
	Foreground bool
	// RawInput is the original trimmed line, preserved verbatim for the
	// jobs listing and status lines.
	RawInput string
	// Processes is the ordered, non-empty sequence of stages.
	Processes []Process

	// prevStatus is the last Status reported by Table.Poll, used to detect
	// transitions worth printing a status line for.
	prevStatus Status
}

// Status recomputes the Job's aggregate status from its Processes:
//
//	Done    <=> every process Completed.
//	Stopped <=> every process Completed||Stopped, and >=1 Stopped.
//	Running otherwise.
func (j Job) Status() Status {
	allCompleted := true
	anyStopped := false
	for _, p := range j.Processes {
		if !p.Completed {
			allCompleted = false
		}
		if p.Stopped && !p.Completed {
			anyStopped = true
		}
	}
	if allCompleted {
		return Done
	}
	if anyStopped {
		allStoppedOrDone := true
		for _, p := range j.Processes {
			if !p.Completed && !p.Stopped {
				allStoppedOrDone = false
				break
			}
		}
		if allStoppedOrDone {
			return Stopped
		}
	}
	return Running
}

// LastProcess returns the pipeline's last stage, the one whose exit code
// stands in for the whole pipeline's.
func (j Job) LastProcess() Process {
	return j.Processes[len(j.Processes)-1]
}

// process returns a pointer to the Process with the given pid, or nil if
// none matches.
func (j *Job) process(pid int) *Process {
	for i := range j.Processes {
		if j.Processes[i].Pid == pid {
			return &j.Processes[i]
		}
	}
	return nil
}

// Observe records a wait status returned for pid (by either the
// Launcher's blocking foreground wait or the Reaper's polling wait) onto
// the matching Process. It is a no-op if pid does not belong to this Job.
func (j *Job) Observe(pid int, ws unix.WaitStatus) {
	p := j.process(pid)
	if p == nil {
		return
	}
	switch {
	case ws.Exited():
		p.Completed = true
		p.ExitCode = ws.ExitStatus()
	case ws.Signaled():
		p.Completed = true
		p.Signaled = true
		p.Signal = int(ws.Signal())
	case ws.Stopped():
		p.Stopped = true
	case ws.Continued():
		p.Stopped = false
	}
}

// MarkContinued clears the Stopped flag on every live process and resets
// the Job's reported status to Running. Called only by a foreground
// resume, so a stale Stopped flag cannot make the foreground wait return
// early, and so a later stop is reported as a fresh transition. A
// background resume must NOT call this: it would pre-empt the
// Stopped-to-Running transition Poll prints the Continued line on.
func (j *Job) MarkContinued() {
	for i := range j.Processes {
		if !j.Processes[i].Completed {
			j.Processes[i].Stopped = false
		}
	}
	j.prevStatus = Running
}

// MarkOrphaned marks every unobserved process as completed. Used when a
// wait on the job's group returns ECHILD: the children are gone and can
// never be reaped, so the Job must retire rather than sit in the Table
// forever.
func (j *Job) MarkOrphaned() {
	for i := range j.Processes {
		j.Processes[i].Completed = true
	}
}

// FormatJobsRow renders one row of the "jobs" built-in's output: JID
// (width 8), STATUS (width 13), COMMAND.
func (j Job) FormatJobsRow() string {
	return fmt.Sprintf("%-8d%-13s%s", j.JID, j.Status(), j.RawInput)
}

// FormatExited renders the "<JID> Exited (<code>) <raw_input>" status
// line.
func FormatExited(jid int, code int, raw string) string {
	return fmt.Sprintf("%d Exited (%d) %s", jid, code, raw)
}

// FormatExitedSignal renders the "<JID> Exited (<signal-name>) <raw_input>"
// status line.
func FormatExitedSignal(jid int, signalName, raw string) string {
	return fmt.Sprintf("%d Exited (%s) %s", jid, signalName, raw)
}

// FormatStopped renders the "<JID> Stopped <raw_input>" status line.
func FormatStopped(jid int, raw string) string {
	return fmt.Sprintf("%d Stopped %s", jid, raw)
}

// FormatContinued renders the "<JID> Continued <raw_input>" status line.
func FormatContinued(jid int, raw string) string {
	return fmt.Sprintf("%d Continued %s", jid, raw)
}

// JobsHeader is the column header row for the "jobs" built-in.
func JobsHeader() string {
	return fmt.Sprintf("%-8s%-13s%s", "JID", "STATUS", "COMMAND")
}

// titleCase capitalizes the first rune of s, leaving the rest untouched.
// Used to turn golang.org/x/sys/unix.Signal's lowercase String() ("interrupt")
// into the capitalized status-line form ("Interrupt").
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// TitleCase exports titleCase for use by the reaper, which formats signal
// names for FormatExitedSignal.
func TitleCase(s string) string { return titleCase(s) }
