// Command podsh is a POSIX-style interactive job-control shell:
// invocation takes no arguments; the process drops straight into the
// read-eval loop and runs until EOF on stdin or "exit".
package main

import (
	"fmt"
	"os"

	"github.com/tjper/podsh/internal/shell/repl"
)

func main() {
	os.Exit(run())
}

func run() int {
	shell, err := repl.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "podsh: %s\n", err)
		return 1
	}
	defer shell.Close()

	return shell.Run()
}
