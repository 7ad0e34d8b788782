package main

import (
	"os"

	"github.com/clockhand/clockhand/internal/cli"
	"github.com/clockhand/clockhand/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps its outcome to a process exit code.
// Cobra has already printed the error by the time Execute returns.
func run() int {
	root := cli.NewRootCmd(version.GetVersion())
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
