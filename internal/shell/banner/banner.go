// Package banner renders podsh's startup banner, prompt strings, and the
// fixed help text behind the "help" built-in.
package banner

import (
	"fmt"
	"strings"
)

// Help renders the "help" built-in's usage blurb. notice, if non-empty,
// is prepended as a single warning line.
func Help(notice string) string {
	var b strings.Builder
	if notice != "" {
		fmt.Fprintf(&b, "\nNotice: %s\n", notice)
	}

	b.WriteString(`
podsh is a POSIX-style interactive shell with pipelines, redirection,
and job control.

Usage:
  command [args...] [< infile] [> outfile] [>> outfile] [e> errfile] [e>> errfile] [&]
  cmd1 [args...] | cmd2 [args...] | ... [redirections] [&]

Built-in commands:
  cd [PATH]        change directory; PATH defaults to $HOME
  export NAME[=VAL] set an environment variable
  jobs              list active jobs
  fg JID            resume a job in the foreground
  bg JID            resume a job in the background
  kill [-s SIG] PID send SIG (default SIGTERM) to PID
  help              show this message
  exit [N]          exit the shell; N defaults to the last exit status
`)
	return b.String()
}

// Banner is printed once at startup, before the first prompt.
const Banner = `                 _     _
 _ __   ___   __| |___| |__
| '_ \ / _ \ / _` + "`" + ` / __| '_ \
| |_) | (_) | (_| \__ \ | | |
| .__/ \___/ \__,_|___/_| |_|
|_|
Type "help" for a list of built-in commands.

`

// Prompt renders the fresh-line prompt for cwd.
func Prompt(cwd string) string {
	return fmt.Sprintf("podsh:%s$ ", cwd)
}

// ContinuationPrompt renders the prompt shown while a line awaits
// continuation (an open quote or a trailing "|").
const ContinuationPrompt = "> "
