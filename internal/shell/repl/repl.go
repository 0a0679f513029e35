// Package repl owns podsh's read-eval loop and continuation protocol:
// reading lines via a readline terminal, joining continuation lines,
// building and validating pipelines, resolving redirections, dispatching
// built-ins or launching pipelines, and polling the job table once per
// iteration.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tjper/podsh/internal/log"
	"github.com/tjper/podsh/internal/shell/banner"
	"github.com/tjper/podsh/internal/shell/builtin"
	"github.com/tjper/podsh/internal/shell/job"
	"github.com/tjper/podsh/internal/shell/launch"
	"github.com/tjper/podsh/internal/shell/parse"
	"github.com/tjper/podsh/internal/shell/redirect"
	"github.com/tjper/podsh/internal/shell/signalpolicy"
	"github.com/tjper/podsh/internal/shell/term"
	"github.com/tjper/podsh/internal/shell/token"
)

// Shell owns podsh's runtime state for the lifetime of one process: the
// job table, the launcher bound to the controlling terminal, the
// readline instance, and the last_exit_status built-ins like "exit"
// default from.
type Shell struct {
	terminal *readline.Instance
	launcher *launch.Launcher
	table    *job.Table
	log      *log.Logger

	lastExitStatus int
}

// New constructs a Shell reading from stdin/writing to stdout, installing
// the parent-side signal policy and, if stdin is a terminal, taking
// ownership of it.
func New() (*Shell, error) {
	table := job.NewTable()
	l, err := launch.New(os.Stdin, table)
	if err != nil {
		return nil, err
	}

	// TakeTerminal's negotiation loop relies on SIGTTIN's default
	// disposition (stopping the shell until a job-control ancestor resumes
	// it in the foreground) when podsh itself isn't yet the foreground
	// process group; IgnoreInShell must not take effect until after that
	// negotiation succeeds, or the shell's self-sent SIGTTIN is a no-op and
	// the loop spins forever.
	if term.IsTerminal(os.Stdin) {
		if err := l.TakeTerminal(); err != nil {
			return nil, err
		}
	}
	signalpolicy.IgnoreInShell()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 promptFor(),
		HistoryFile:            "",
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
		EOFPrompt:              "exit",
	})
	if err != nil {
		return nil, err
	}

	return &Shell{
		terminal: rl,
		launcher: l,
		table:    table,
		log:      log.New(os.Stderr, "podsh ").WithDebug(os.Getenv("PODSH_DEBUG") != ""),
	}, nil
}

// promptFor renders the fresh-line prompt, showing $HOME as "~" in the
// current working directory.
func promptFor() string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "?"
	}
	if home := os.Getenv("HOME"); home != "" && strings.HasPrefix(cwd, home) {
		cwd = "~" + strings.TrimPrefix(cwd, home)
	}
	return banner.Prompt(cwd)
}

// Close releases the readline terminal.
func (s *Shell) Close() { s.terminal.Close() }

// Run drives the read-eval loop until EOF on stdin or an "exit" built-in,
// and returns the process's final exit code.
func (s *Shell) Run() int {
	fmt.Fprint(os.Stdout, banner.Banner)

	for {
		s.table.Poll(os.Stdout, func(j *job.Job, last job.Process) {
			s.lastExitStatus = exitStatus(last)
		})

		line, err := s.readLogicalLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return s.lastExitStatus
			}
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			s.log.Errorf("readline: %s", err)
			return 1
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if code, exit := s.eval(line); exit {
			return code
		}
	}
}

// readLogicalLine reads one line and keeps reading and joining
// continuation lines (an odd quote count, or a trailing "|") until the
// accumulated text is complete.
func (s *Shell) readLogicalLine() (string, error) {
	s.terminal.SetPrompt(promptFor())
	line, err := s.terminal.Readline()
	if err != nil {
		return "", err
	}

	for parse.NeedsContinuation(line) {
		s.log.Debugf("continuation requested for %q", line)
		s.terminal.SetPrompt(banner.ContinuationPrompt)
		next, err := s.terminal.Readline()
		if err != nil {
			return "", err
		}
		line = parse.Join(line, strings.TrimSpace(next))
	}
	return line, nil
}

// eval tokenizes, builds, validates, and (if the pipeline is legal)
// resolves and launches or dispatches line. It returns the exit code to
// use if the REPL should terminate (the "exit" built-in), and whether it
// should terminate at all.
func (s *Shell) eval(line string) (int, bool) {
	toks := token.Tokenize(line)

	p, err := parse.Build(toks)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid command syntax")
		s.lastExitStatus = 1
		return 0, false
	}
	if err := parse.Validate(line, toks); err != nil {
		fmt.Fprintln(os.Stderr, "Invalid command syntax")
		s.lastExitStatus = 1
		return 0, false
	}

	if len(p.Stages) == 1 && builtin.IsBuiltin(p.Stages[0].Argv[0]) {
		return s.runBuiltin(p)
	}

	desc, err := redirect.Resolve(p)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		s.lastExitStatus = 1
		return 0, false
	}

	s.log.Debugf("launching %q (foreground=%v, stages=%d)", line, p.Foreground, len(p.Stages))
	j, err := s.launcher.Launch(line, p, desc)
	if err != nil {
		var nf *launch.NotFoundError
		if errors.As(err, &nf) {
			fmt.Fprintln(os.Stdout, nf.Error())
			s.lastExitStatus = 1
			return 0, false
		}
		s.log.Errorf("launch: %s", err)
		return 1, true
	}

	// PutInForeground already retired the job from the table if it ran to
	// completion; only the exit status is left to record here.
	if p.Foreground && j.Status() == job.Done {
		s.lastExitStatus = exitStatus(j.LastProcess())
	}
	return 0, false
}

// runBuiltin resolves any redirections and hands the opened output and
// error files to the built-in as its Stdout/Stderr writers, then
// dispatches through the builtin package. The shell's own stdio is never
// rebound, so it is unchanged once the call returns; a "<" file is opened
// (and must exist) but no built-in reads from it.
func (s *Shell) runBuiltin(p *parse.Pipeline) (int, bool) {
	desc, err := redirect.Resolve(p)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		s.lastExitStatus = 1
		return 0, false
	}
	defer desc.Close()

	stdout := io.Writer(os.Stdout)
	stderr := io.Writer(os.Stderr)
	if desc.Out != nil {
		stdout = desc.Out
	}
	if desc.Err != nil {
		stderr = desc.Err
	}

	env := &builtin.Env{
		Table:           s.table,
		Stdout:          stdout,
		Stderr:          stderr,
		LastExitStatus:  s.lastExitStatus,
		PutInForeground: s.launcher.PutInForeground,
		PutInBackground: s.launcher.PutInBackground,
	}

	code, err := builtin.Run(env, p.Stages[0].Argv)
	var exitErr *builtin.ErrExit
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		code = 1
	}
	s.lastExitStatus = code
	return 0, false
}

// exitStatus derives an integer status from a completed Process: its exit
// code, or 128+signal for a signaled process (the conventional POSIX
// shell encoding).
func exitStatus(p job.Process) int {
	if p.Signaled {
		return 128 + p.Signal
	}
	return p.ExitCode
}
