package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gameops/steamctl/internal/installer"
	"github.com/gameops/steamctl/internal/logging"
	"github.com/gameops/steamctl/internal/steamcmd"
	"github.com/gameops/steamctl/internal/tui"
)

// ErrCancelled is returned when the user aborts an interactive install.
var ErrCancelled = errors.New("install cancelled")

// installFlags holds the raw flag values for the install command.
type installFlags struct {
	app       string
	workshop  string
	dir       string
	username  string
	password  string
	guardCode string
	platform  string
}

func newInstallCmd() *cobra.Command {
	flags := &installFlags{}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install or update a Steam app or workshop item",
		Long: "Install downloads the SteamCMD binary if needed, then drives it to " +
			"install or update the requested app or workshop item.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.toOptions()
			if err != nil {
				return err
			}
			return runInstall(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&flags.app, "app", "", "Steam app ID to install (required)")
	cmd.Flags().StringVar(&flags.workshop, "workshop", "", "workshop item ID to install for the app")
	cmd.Flags().StringVar(&flags.dir, "dir", "", "installation directory (required)")
	cmd.Flags().StringVar(&flags.username, "username", "", "Steam account name (default anonymous)")
	cmd.Flags().StringVar(&flags.password, "password", "", "Steam account password")
	cmd.Flags().StringVar(&flags.guardCode, "guard-code", "", "Steam Guard code for the account")
	cmd.Flags().StringVar(&flags.platform, "platform", "",
		"force the depot platform (windows, macos, linux)")
	_ = cmd.MarkFlagRequired("app")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}

// toOptions converts flag strings into validated install options. ID parsing
// happens here so malformed values fail before SteamCMD is touched.
func (f *installFlags) toOptions() (steamcmd.InstallOptions, error) {
	opts := steamcmd.InstallOptions{
		Dir:       f.dir,
		Username:  f.username,
		Password:  f.password,
		GuardCode: f.guardCode,
		Platform:  steamcmd.Platform(f.platform),
	}

	appID, err := steamcmd.ParseID(f.app)
	if err != nil {
		return steamcmd.InstallOptions{}, err
	}
	opts.AppID = appID

	if f.workshop != "" {
		workshopID, wsErr := steamcmd.ParseWorkshopID(f.workshop)
		if wsErr != nil {
			return steamcmd.InstallOptions{}, wsErr
		}
		opts.WorkshopID = workshopID
	}

	if err = opts.Validate(); err != nil {
		return steamcmd.InstallOptions{}, err
	}
	return opts, nil
}

func runInstall(cmd *cobra.Command, opts steamcmd.InstallOptions) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	installDir, err := settings.InstallDir()
	if err != nil {
		return err
	}
	env := installer.NewEnvironment(installDir)
	inst := installer.New(env)

	log.Info().
		Int64("app_id", opts.AppID).
		Int64("workshop_id", opts.WorkshopID).
		Str("dir", opts.Dir).
		Msg("starting install")

	if useTUI(cmd) {
		return runInstallTUI(ctx, cmd, inst, env.ExecutablePath(), opts)
	}
	return runInstallPlain(ctx, cmd, inst, env.ExecutablePath(), opts)
}

// runInstallTUI drives the run behind a Bubble Tea progress view. SteamCMD
// events are forwarded into the program; quitting the view cancels the run.
func runInstallTUI(
	ctx context.Context,
	cmd *cobra.Command,
	inst *installer.Installer,
	executablePath string,
	opts steamcmd.InstallOptions,
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := tui.NewInstallModel(installTitle(opts))
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(cmd.OutOrStdout()))

	go func() {
		program.Send(tui.StatusMsg("Ensuring SteamCMD is installed..."))
		if err := inst.EnsureInstalled(ctx, func(msg string) {
			program.Send(tui.StatusMsg(msg))
		}); err != nil {
			program.Send(tui.DoneMsg{Err: err})
			return
		}

		program.Send(tui.StatusMsg("Starting SteamCMD..."))
		opts.OnProgress = func(p steamcmd.Progress) {
			program.Send(tui.ProgressMsg(p))
		}
		opts.OnOutput = func(line string, _ steamcmd.OutputStream) {
			program.Send(tui.OutputMsg(line))
		}
		program.Send(tui.DoneMsg{Err: steamcmd.Run(ctx, executablePath, opts)})
	}()

	final, err := program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}

	finalModel, ok := final.(*tui.InstallModel)
	if !ok {
		return ErrCancelled
	}
	switch finalModel.State() {
	case tui.InstallStateQuitting:
		cancel()
		return ErrCancelled
	case tui.InstallStateFailed:
		return wrapInstallError(finalModel.Err())
	default:
		return nil
	}
}

// runInstallPlain drives the run through the event stream, printing one line
// per progress report.
func runInstallPlain(
	ctx context.Context,
	cmd *cobra.Command,
	inst *installer.Installer,
	executablePath string,
	opts steamcmd.InstallOptions,
) error {
	out := cmd.OutOrStdout()

	if err := inst.EnsureInstalled(ctx, func(msg string) {
		infoLine(out, "%s\n", msg)
	}); err != nil {
		errorLine(cmd.ErrOrStderr(), "SteamCMD install failed: %v\n", err)
		return wrapInstallError(err)
	}

	job, err := steamcmd.Start(ctx, executablePath, opts)
	if err != nil {
		return wrapInstallError(err)
	}

	for ev := range job.Events() {
		switch ev.Kind {
		case steamcmd.EventProgress:
			if ev.Progress.TotalBytes > 0 {
				infoLine(out, "%s %d%% (%s)\n", ev.Progress.Phase, ev.Progress.Percent,
					tui.FormatBytesProgress(ev.Progress.BytesDownloaded, ev.Progress.TotalBytes))
			} else {
				infoLine(out, "%s %d%%\n", ev.Progress.Phase, ev.Progress.Percent)
			}
		case steamcmd.EventOutput:
			if ev.Stream == steamcmd.StreamStderr {
				warnLine(cmd.ErrOrStderr(), "%s\n", ev.Line)
			}
		case steamcmd.EventError:
			errorLine(cmd.ErrOrStderr(), "install failed: %v\n", ev.Err)
		case steamcmd.EventComplete:
			infoLine(out, "Install complete.\n")
		}
	}

	return wrapInstallError(job.Wait())
}

// wrapInstallError adds install context while keeping the original error
// chain intact so exit codes survive to main.
func wrapInstallError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("install failed: %w", err)
}

func installTitle(opts steamcmd.InstallOptions) string {
	if opts.WorkshopID != 0 {
		return fmt.Sprintf("Installing workshop item %d for app %d", opts.WorkshopID, opts.AppID)
	}
	return fmt.Sprintf("Installing app %d", opts.AppID)
}
