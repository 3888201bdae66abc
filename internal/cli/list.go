package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gameops/steamctl/internal/manifest"
	"github.com/gameops/steamctl/internal/tui"
)

func newListCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List apps installed under a directory",
		Long: "List reads the appmanifest files SteamCMD wrote under a directory's " +
			"steamapps folder and prints one line per installed app.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			apps, warnings, err := manifest.List(filepath.Join(dir, "steamapps"))
			if err != nil {
				return err
			}

			for _, warning := range warnings {
				warnLine(cmd.ErrOrStderr(), "%s\n", warning)
			}

			out := cmd.OutOrStdout()
			if len(apps) == 0 {
				fmt.Fprintln(out, "No apps installed.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "APP ID\tNAME\tBUILD\tSIZE\tUPDATED")
			for _, app := range apps {
				updated := "-"
				if !app.LastUpdated.IsZero() {
					updated = app.LastUpdated.Format("2006-01-02")
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
					app.AppID, app.Name, app.BuildID, tui.FormatBytes(app.SizeOnDisk), updated)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "installation directory to inspect (required)")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}
