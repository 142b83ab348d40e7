// Command patchbind binds and wires live-coding audio patches.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/patchbind/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	err := cmd.Execute()
	if err == nil {
		return
	}

	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}
	// Flag and argument errors are not reported by the commands themselves.
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(cli.ExitCommandError)
}
