// Command qanotes renders release databases into QA Notes HTML pages.
package main

import (
	"os"

	"github.com/Iron-Ham/qanotes/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		cmd.PrintError(os.Stderr, err)
		os.Exit(cmd.ExitCode(err))
	}
}
