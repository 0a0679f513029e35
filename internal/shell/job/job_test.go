package job_test

import (
	"testing"

	"github.com/tjper/podsh/internal/shell/job"
)

func TestStatusRunning(t *testing.T) {
	j := job.Job{Processes: []job.Process{{Pid: 1}, {Pid: 2}}}
	if got := j.Status(); got != job.Running {
		t.Fatalf("Status() = %v; want Running", got)
	}
}

func TestStatusDone(t *testing.T) {
	j := job.Job{Processes: []job.Process{
		{Pid: 1, Completed: true, ExitCode: 0},
		{Pid: 2, Completed: true, ExitCode: 1},
	}}
	if got := j.Status(); got != job.Done {
		t.Fatalf("Status() = %v; want Done", got)
	}
}

func TestStatusStoppedRequiresAllStoppedOrDone(t *testing.T) {
	j := job.Job{Processes: []job.Process{
		{Pid: 1, Stopped: true},
		{Pid: 2},
	}}
	if got := j.Status(); got != job.Running {
		t.Fatalf("Status() = %v; want Running (one stage still running)", got)
	}

	j.Processes[1].Stopped = true
	if got := j.Status(); got != job.Stopped {
		t.Fatalf("Status() = %v; want Stopped", got)
	}
}

func TestStatusStoppedToleratesCompletedStages(t *testing.T) {
	j := job.Job{Processes: []job.Process{
		{Pid: 1, Completed: true, ExitCode: 0},
		{Pid: 2, Stopped: true},
	}}
	if got := j.Status(); got != job.Stopped {
		t.Fatalf("Status() = %v; want Stopped", got)
	}
}

func TestMarkContinued(t *testing.T) {
	j := job.Job{Processes: []job.Process{
		{Pid: 1, Stopped: true},
		{Pid: 2, Completed: true, ExitCode: 0},
	}}
	if got := j.Status(); got != job.Stopped {
		t.Fatalf("setup: Status() = %v; want Stopped", got)
	}
	j.MarkContinued()
	if j.Processes[0].Stopped {
		t.Fatal("MarkContinued left a live process Stopped")
	}
	if got := j.Status(); got != job.Running {
		t.Fatalf("Status() = %v; want Running after MarkContinued", got)
	}
}

func TestMarkOrphaned(t *testing.T) {
	j := job.Job{Processes: []job.Process{{Pid: 1}, {Pid: 2, Completed: true}}}
	j.MarkOrphaned()
	if got := j.Status(); got != job.Done {
		t.Fatalf("Status() = %v; want Done after MarkOrphaned", got)
	}
}

func TestLastProcess(t *testing.T) {
	j := job.Job{Processes: []job.Process{{Pid: 1}, {Pid: 2}, {Pid: 3}}}
	if got := j.LastProcess().Pid; got != 3 {
		t.Fatalf("LastProcess().Pid = %d; want 3", got)
	}
}

func TestFormatJobsRow(t *testing.T) {
	j := job.Job{JID: 7, RawInput: "sleep 10 &", Processes: []job.Process{{Pid: 7}}}
	got := j.FormatJobsRow()
	want := job.JobsHeader()
	if len(got) < len(want) {
		t.Fatalf("FormatJobsRow() = %q; want at least as wide as header %q", got, want)
	}
}

func TestFormatExited(t *testing.T) {
	if got, want := job.FormatExited(3, 0, "ls"), "3 Exited (0) ls"; got != want {
		t.Fatalf("FormatExited() = %q; want %q", got, want)
	}
}

func TestFormatExitedSignal(t *testing.T) {
	if got, want := job.FormatExitedSignal(3, "Interrupt", "sleep 10"), "3 Exited (Interrupt) sleep 10"; got != want {
		t.Fatalf("FormatExitedSignal() = %q; want %q", got, want)
	}
}

func TestTitleCase(t *testing.T) {
	cases := map[string]string{
		"interrupt": "Interrupt",
		"":          "",
		"Killed":    "Killed",
	}
	for in, want := range cases {
		if got := job.TitleCase(in); got != want {
			t.Errorf("TitleCase(%q) = %q; want %q", in, got, want)
		}
	}
}
