package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tjper/podsh/internal/shell/token"
)

var (
	// errEmptyStage indicates a "|" appeared with no command on one side of
	// it (e.g. leading/trailing/doubled pipe).
	errEmptyStage = errors.New("empty pipeline segment")
	// errMultipleRedirect indicates more than one redirect was given for the
	// same stream.
	errMultipleRedirect = errors.New("multiple redirects for the same stream")
	// errMissingOperand indicates a redirection operator was the last token
	// on the line, with no file path following it.
	errMissingOperand = errors.New("redirect requires a file path")
)

// ErrInvalidSyntax is the sentinel the REPL reports as "Invalid command
// syntax".
var ErrInvalidSyntax = errors.New("invalid command syntax")

// NeedsContinuation reports whether line is incomplete and the REPL should
// read another line and append it: an odd quote count, or a trailing "|"
// as the last non-whitespace token.
func NeedsContinuation(line string) bool {
	if token.QuoteCount(line)%2 != 0 {
		return true
	}
	toks := token.Tokenize(line)
	if len(toks) == 0 {
		return false
	}
	return toks[len(toks)-1] == token.Pipe
}

// Join appends next to line per the continuation-joining rule: a space is
// inserted after a hanging "|", but nothing is inserted after a hanging
// (unterminated) quote.
func Join(line, next string) string {
	if token.QuoteCount(line)%2 != 0 {
		return line + next
	}
	return line + " " + next
}

// Validate checks toks for the requirements of a complete, legal line:
// even quote count, no leading/trailing "|", and at most one redirect per
// stream. It returns ErrInvalidSyntax (wrapped with context) on failure.
func Validate(line string, toks []string) error {
	if token.QuoteCount(line)%2 != 0 {
		return wrapInvalid("unbalanced quotes")
	}
	if len(toks) == 0 {
		return nil
	}
	if strings.TrimSpace(toks[0]) == token.Pipe {
		return wrapInvalid("pipeline cannot start with |")
	}
	last := toks[len(toks)-1]
	if last == token.Pipe {
		return wrapInvalid("pipeline cannot end with |")
	}

	var sawIn, sawOut, sawErr bool
	for i := 0; i < len(toks); i++ {
		switch toks[i] {
		case token.RedirectIn:
			if sawIn {
				return wrapInvalid("multiple < redirects")
			}
			sawIn = true
			i++
		case token.RedirectOut, token.AppendOut:
			if sawOut {
				return wrapInvalid("multiple >/>> redirects")
			}
			sawOut = true
			i++
		case token.RedirectErr, token.AppendErr:
			if sawErr {
				return wrapInvalid("multiple e>/e>> redirects")
			}
			sawErr = true
			i++
		}
	}

	return nil
}

func wrapInvalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidSyntax, msg)
}
