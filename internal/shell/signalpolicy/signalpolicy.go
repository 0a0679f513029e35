// Package signalpolicy implements the shell's parent/child signal
// disposition rules: the shell ignores the signals that job control and
// interactive editing generate against its own controlling terminal, and
// every launched child must see those signals restored to their default
// disposition before it execs.
package signalpolicy

import (
	"os"
	"os/signal"
	"syscall"
)

// Signals is the fixed set covering both the parent's ignore-list and
// the child's pre-exec reset.
var Signals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGQUIT,
	syscall.SIGTSTP,
	syscall.SIGTTIN,
	syscall.SIGTTOU,
	syscall.SIGPIPE,
}

// IgnoreInShell installs the shell's own disposition: every signal in
// Signals is ignored, so moving a pipeline in and out of the foreground
// process group never delivers SIGTTOU/SIGTTIN to the shell itself, and
// Ctrl-C/Ctrl-Z at the terminal only ever reach the foreground pipeline.
func IgnoreInShell() {
	signal.Ignore(Signals...)
}

// AroundFork resets Signals and SIGCHLD to default disposition, invokes
// start (expected to be an *exec.Cmd's Start method, which forks and
// execs back to back), then restores the shell's ignore policy.
//
// Go offers no hook to run code between fork and exec in the child, so
// the child always inherits whatever disposition the parent held at the
// moment of fork. Bracketing Reset/Ignore around
// Start is the closest equivalent: the window between Reset and the
// actual fork is a bounded race where a signal delivered to the shell
// process runs with default disposition instead of being ignored, for
// however long Start takes to reach the underlying clone/execve. This is
// documented, not hidden: podsh accepts it rather than fabricate a
// pre-exec hook that does not exist in the language.
func AroundFork(start func() error) error {
	reset := make([]os.Signal, 0, len(Signals)+1)
	reset = append(reset, Signals...)
	reset = append(reset, syscall.SIGCHLD)
	signal.Reset(reset...)
	defer IgnoreInShell()
	return start()
}
