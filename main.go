package main

import (
	"os"

	"github.com/dbfwd/dbfwd/core/cli"
	"github.com/dbfwd/dbfwd/core/cli/cmd"
)

// Version can be set at build time using -ldflags
var Version = "dev"

func init() {
	// Set the version in cmd package so it can be accessed by commands
	cmd.SetVersion(Version)
}

func main() {
	os.Exit(cli.Execute())
}
