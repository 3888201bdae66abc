// Command steamctl installs Steam apps and workshop items by driving the
// SteamCMD binary.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gameops/steamctl/internal/cli"
	"github.com/gameops/steamctl/internal/steamcmd"
	"github.com/gameops/steamctl/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps errors to process exit codes.
// A SteamCMD failure propagates SteamCMD's own exit code; everything else
// exits 1.
func run() int {
	root := cli.NewRootCmd(version.GetVersion())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitCode(err)
	}
	return 0
}

// exitCode extracts SteamCMD's exit code from the error chain, defaulting
// to 1 for all other failures.
func exitCode(err error) int {
	var exitErr *steamcmd.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode != 0 {
		return exitErr.ExitCode
	}
	return 1
}
