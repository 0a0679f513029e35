// Package parse implements podsh's pipeline builder and validator:
// folding a token sequence into a Pipeline value, and deciding whether a
// line is complete or needs continuation.
package parse

import "github.com/tjper/podsh/internal/shell/token"

// Redirect describes a single-target redirection for one stream.
type Redirect struct {
	// Path is the file path operand. Empty means no redirect was given.
	Path string
	// Append is true for ">>"/"e>>"; irrelevant to RedirectIn.
	Append bool
}

// Stage is a single command in a pipeline: argv plus whether its stdout
// feeds the next stage.
type Stage struct {
	Argv    []string
	HasPipe bool
}

// Pipeline is the result of folding a token sequence into stages plus a
// pipeline-wide redirection spec.
type Pipeline struct {
	Stages     []Stage
	Foreground bool

	In  Redirect // applies to Stages[0] only
	Out Redirect // applies to the last Stage only
	Err Redirect // applies to the last Stage only
}

// Build folds toks into a Pipeline. Tokens are
// partitioned on "|"; within a partition, redirection operators consume
// the following token as their operand rather than contributing to argv.
// A trailing "&" sets Foreground = false. Build returns an error for an
// empty stage (including a leading, trailing or doubled "|"), a redirect
// operator with no operand, and a second redirect for the same stream;
// quote balance is not checked here — call Validate for that.
func Build(toks []string) (*Pipeline, error) {
	p := &Pipeline{Foreground: true}

	if len(toks) > 0 && toks[len(toks)-1] == token.Background {
		p.Foreground = false
		toks = toks[:len(toks)-1]
	}

	var current []string
	flushStage := func(isLast bool) error {
		if len(current) == 0 {
			return errEmptyStage
		}
		p.Stages = append(p.Stages, Stage{Argv: current, HasPipe: !isLast})
		current = nil
		return nil
	}

	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		switch tok {
		case token.Pipe:
			if err := flushStage(false); err != nil {
				return nil, err
			}
		case token.RedirectIn:
			path, err := operand(toks, &i)
			if err != nil {
				return nil, err
			}
			if p.In.Path != "" {
				return nil, errMultipleRedirect
			}
			p.In = Redirect{Path: path}
		case token.RedirectOut, token.AppendOut:
			path, err := operand(toks, &i)
			if err != nil {
				return nil, err
			}
			if p.Out.Path != "" {
				return nil, errMultipleRedirect
			}
			p.Out = Redirect{Path: path, Append: tok == token.AppendOut}
		case token.RedirectErr, token.AppendErr:
			path, err := operand(toks, &i)
			if err != nil {
				return nil, err
			}
			if p.Err.Path != "" {
				return nil, errMultipleRedirect
			}
			p.Err = Redirect{Path: path, Append: tok == token.AppendErr}
		default:
			current = append(current, tok)
		}
	}
	if err := flushStage(true); err != nil {
		return nil, err
	}

	return p, nil
}

// operand returns the token following toks[*i], consuming it (advancing
// *i), or an error if the operator is the last token.
func operand(toks []string, i *int) (string, error) {
	if *i+1 >= len(toks) {
		return "", errMissingOperand
	}
	*i++
	return toks[*i], nil
}
