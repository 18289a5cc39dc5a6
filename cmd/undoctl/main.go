// Command undoctl runs and validates undo/redo scenarios and inspects the
// history journals they write.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/undoable/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
