// Package commands assembles the querykit command tree.
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/querykit/cli/internal/ui"
	"github.com/satishbabariya/querykit/cli/internal/version"
	"github.com/satishbabariya/querykit/config"
	"github.com/satishbabariya/querykit/internal/debug"
	"github.com/satishbabariya/querykit/runtime/client"
)

var errNoDSN = errors.New("no database DSN configured, set QUERYKIT_DSN or DATABASE_URL")

// NewRootCommand builds the root command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "querykit",
		Short:         "Build, run and migrate SQL across MySQL, Postgres and SQLite",
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(NewInitCommand())
	root.AddCommand(NewDBCommand())
	root.AddCommand(NewMigrateCommand())
	root.AddCommand(NewVersionCommand())
	return root
}

// Execute runs the CLI and prints failures through the ui package.
func Execute() error {
	err := NewRootCommand().Execute()
	if err != nil {
		ui.PrintError("%v", err)
	}
	return err
}

// openClient loads the configuration and connects a client from it.
func openClient() (*client.Client, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	debug.Init(cfg.Debug)

	if cfg.DSN == "" {
		return nil, nil, errNoDSN
	}
	c, err := client.FromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}
	return c, cfg, nil
}
