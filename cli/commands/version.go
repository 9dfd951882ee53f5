package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/querykit/cli/internal/ui"
	"github.com/satishbabariya/querykit/cli/internal/update"
	"github.com/satishbabariya/querykit/cli/internal/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version details",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(check)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Also check whether a newer release exists")
	return cmd
}

func runVersion(check bool) error {
	info := version.Get()
	fmt.Println(info.FullString())
	if !check {
		return nil
	}

	latest, newer, err := update.Check(info.Version)
	if err != nil {
		return err
	}
	if newer {
		ui.PrintWarning("a newer release is available: %s", latest)
		ui.PrintInfo("download: %s", update.DownloadURL(latest))
		return nil
	}
	ui.PrintSuccess("you are on the latest release")
	return nil
}
