// Package cli wires the steamctl Cobra commands: install, ensure, and list.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gameops/steamctl/internal/config"
	"github.com/gameops/steamctl/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// settings holds the loaded configuration for the lifetime of a CLI invocation.
var settings *config.Settings //nolint:gochecknoglobals // Set once in PersistentPreRunE

// NewRootCmd creates the root Cobra command for the steamctl CLI.
// It loads configuration, wires up logging and tracing, and registers
// the install, ensure, and list subcommands.
func NewRootCmd(ver string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "steamctl",
		Short:   "SteamCMD orchestration CLI",
		Long:    "steamctl: install Steam apps and workshop items by driving SteamCMD",
		Version: ver,
		Example: rootCmdExample,
		// main prints errors itself so exit codes and messages stay together.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			settings = loaded
			return setupLogging(cmd)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().Bool("no-tui", false, "disable the interactive progress view")
	cmd.AddCommand(newInstallCmd(), newEnsureCmd(), newListCmd())

	return cmd
}

// setupLogging configures logging from the loaded settings and CLI flags,
// then stores a trace-carrying logger context on the command.
func setupLogging(cmd *cobra.Command) error {
	loggingCfg := logging.Config{
		Level:  settings.Logging.Level,
		Format: settings.Logging.Format,
		File:   settings.Logging.File,
	}

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = "console"
		loggingCfg.File = ""
	}

	logger = logging.ComponentLogger(logging.New(loggingCfg), "cli")

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = logger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Debug().Ctx(ctx).Str("command", cmd.Name()).Msg("command started")
	return nil
}

// useTUI reports whether a command should render the interactive view.
func useTUI(cmd *cobra.Command) bool {
	noTUI, _ := cmd.Flags().GetBool("no-tui")
	return !noTUI && isTerminal(os.Stdout)
}

const rootCmdExample = `  # Install a dedicated server anonymously
  steamctl install --app 740 --dir ./csgo-ds

  # Install a workshop item for an app
  steamctl install --app 107410 --workshop 450814997 --dir ./arma3

  # Install as a specific user, forcing the Windows depot
  steamctl install --app 740 --dir ./csgo-ds --username alice --platform windows

  # Pre-install the SteamCMD binary without running anything
  steamctl ensure

  # List apps installed under a directory
  steamctl list --dir ./csgo-ds`
