// Package redirect implements podsh's redirection resolver: opening or
// creating the files named by a Pipeline's redirect spec before any stage
// is forked, so a failure aborts the launch with no children created.
package redirect

import (
	"errors"
	"fmt"
	"os"

	"github.com/tjper/podsh/internal/shell/parse"
)

const (
	truncateMode = 0o644
	appendMode   = 0o666
)

// ErrNoSuchFile indicates a "<file" redirect named a file that does not
// exist. The wording matches the OS's own "No such file or directory"
// text so the message reads like any other shell's.
var ErrNoSuchFile = errors.New("No such file or directory")

// Descriptors holds the three resolved streams for a pipeline launch. Each
// field is either nil (inherit the shell's own stream) or an open *os.File
// that the Launcher duplicates onto the appropriate stage.
type Descriptors struct {
	In  *os.File
	Out *os.File
	Err *os.File
}

// Close closes every non-nil descriptor. Safe to call multiple times.
func (d *Descriptors) Close() {
	for _, f := range []*os.File{d.In, d.Out, d.Err} {
		if f != nil {
			f.Close()
		}
	}
}

// Resolve opens the files named by p's redirect spec and returns the
// resulting Descriptors. On any error, every descriptor already opened is
// closed before returning, so the caller never leaks an fd when a job is
// abandoned before any fork.
func Resolve(p *parse.Pipeline) (*Descriptors, error) {
	d := &Descriptors{}

	if p.In.Path != "" {
		f, err := os.OpenFile(p.In.Path, os.O_RDONLY, 0)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", p.In.Path, ErrNoSuchFile)
		}
		if err != nil {
			return nil, fmt.Errorf("'%s' cannot be opened: %w", p.In.Path, err)
		}
		d.In = f
	}

	if p.Out.Path != "" {
		f, err := openOutput(p.Out.Path, p.Out.Append)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("'%s' cannot be opened: %w", p.Out.Path, err)
		}
		d.Out = f
	}

	if p.Err.Path != "" {
		f, err := openOutput(p.Err.Path, p.Err.Append)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("'%s' cannot be opened: %w", p.Err.Path, err)
		}
		d.Err = f
	}

	return d, nil
}

func openOutput(path string, doAppend bool) (*os.File, error) {
	if doAppend {
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, appendMode)
	}
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, truncateMode)
}
