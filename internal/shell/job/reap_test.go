package job_test

import (
	"bytes"
	"os/exec"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/tjper/podsh/internal/shell/job"
	"golang.org/x/sys/unix"
)

// startGroup launches name/args as the leader of its own new process group
// (mirroring what the Launcher's first stage does) and returns its pid.
func startGroup(t *testing.T, name string, args ...string) (*exec.Cmd, int) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		t.Fatalf("Start(%s): %v", name, err)
	}
	return cmd, cmd.Process.Pid
}

func pollUntil(t *testing.T, tbl *job.Table, buf *bytes.Buffer, want func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		tbl.Poll(buf, nil)
		if want() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline; log so far: %q", buf.String())
}

func TestPollReapsExitedJob(t *testing.T) {
	_, pid := startGroup(t, "true")
	tbl := job.NewTable()
	j := &job.Job{JID: pid, RawInput: "true", Processes: []job.Process{{Pid: pid, Argv: []string{"true"}}}}
	tbl.Insert(j)

	var buf bytes.Buffer
	pollUntil(t, tbl, &buf, func() bool { return tbl.Len() == 0 })

	if got := buf.String(); !strings.Contains(got, job.FormatExited(pid, 0, "true")) {
		t.Fatalf("Poll log = %q; want it to contain an Exited(0) line", got)
	}
}

func TestPollReportsStoppedAndContinued(t *testing.T) {
	_, pid := startGroup(t, "sleep", "5")
	tbl := job.NewTable()
	j := &job.Job{JID: pid, RawInput: "sleep 5", Processes: []job.Process{{Pid: pid, Argv: []string{"sleep", "5"}}}}
	tbl.Insert(j)

	var buf bytes.Buffer
	if err := unix.Kill(-pid, syscall.SIGSTOP); err != nil {
		t.Fatalf("Kill(SIGSTOP): %v", err)
	}
	pollUntil(t, tbl, &buf, func() bool { return strings.Contains(buf.String(), "Stopped") })

	if err := unix.Kill(-pid, syscall.SIGCONT); err != nil {
		t.Fatalf("Kill(SIGCONT): %v", err)
	}
	pollUntil(t, tbl, &buf, func() bool { return strings.Contains(buf.String(), "Continued") })

	if err := unix.Kill(-pid, syscall.SIGKILL); err != nil {
		t.Fatalf("Kill(SIGKILL): %v", err)
	}
	pollUntil(t, tbl, &buf, func() bool { return tbl.Len() == 0 })
}

func TestPollReportsSignaledExit(t *testing.T) {
	_, pid := startGroup(t, "sleep", "5")
	tbl := job.NewTable()
	j := &job.Job{JID: pid, RawInput: "sleep 5", Processes: []job.Process{{Pid: pid, Argv: []string{"sleep", "5"}}}}
	tbl.Insert(j)

	var buf bytes.Buffer
	if err := unix.Kill(-pid, syscall.SIGTERM); err != nil {
		t.Fatalf("Kill(SIGTERM): %v", err)
	}
	pollUntil(t, tbl, &buf, func() bool { return tbl.Len() == 0 })

	if got := buf.String(); !strings.Contains(got, "Exited (Terminated)") {
		t.Fatalf("Poll log = %q; want a Terminated signal line", got)
	}
}

func TestPollDoesNotPrintWithoutTransition(t *testing.T) {
	_, pid := startGroup(t, "sleep", "1")
	tbl := job.NewTable()
	j := &job.Job{JID: pid, RawInput: "sleep 1", Processes: []job.Process{{Pid: pid, Argv: []string{"sleep", "1"}}}}
	tbl.Insert(j)

	var buf bytes.Buffer
	tbl.Poll(&buf, nil)
	if buf.Len() != 0 {
		t.Fatalf("Poll printed before any state change: %q", buf.String())
	}

	pollUntil(t, tbl, &buf, func() bool { return tbl.Len() == 0 })
}

func TestPollOnDoneCallback(t *testing.T) {
	_, pid := startGroup(t, "false")
	tbl := job.NewTable()
	j := &job.Job{JID: pid, RawInput: "false", Processes: []job.Process{{Pid: pid, Argv: []string{"false"}}}}
	tbl.Insert(j)

	var buf bytes.Buffer
	var gotCode int
	var called bool
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) && !called {
		tbl.Poll(&buf, func(_ *job.Job, last job.Process) {
			called = true
			gotCode = last.ExitCode
		})
		time.Sleep(10 * time.Millisecond)
	}
	if !called {
		t.Fatal("onDone callback never invoked")
	}
	if gotCode != 1 {
		t.Fatalf("onDone exit code = %d; want 1", gotCode)
	}
}
