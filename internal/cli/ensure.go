package cli

import (
	"github.com/spf13/cobra"

	"github.com/gameops/steamctl/internal/installer"
)

func newEnsureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure",
		Short: "Download and install the SteamCMD binary if missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			installDir, err := settings.InstallDir()
			if err != nil {
				return err
			}
			env := installer.NewEnvironment(installDir)
			inst := installer.New(env)

			out := cmd.OutOrStdout()
			if inst.IsInstalled() {
				infoLine(out, "SteamCMD already installed at %s\n", env.ExecutablePath())
				return nil
			}

			if err = inst.EnsureInstalled(cmd.Context(), func(msg string) {
				infoLine(out, "%s\n", msg)
			}); err != nil {
				return err
			}
			infoLine(out, "SteamCMD installed at %s\n", env.ExecutablePath())
			return nil
		},
	}
}
