package cli

import (
	"github.com/dbfwd/dbfwd/core/cli/cmd"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	return cmd.Execute()
}
