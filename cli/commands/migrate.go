package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/querykit/cli/internal/ui"
	"github.com/satishbabariya/querykit/config"
	"github.com/satishbabariya/querykit/migrate"
)

// NewMigrateCommand groups the migration commands.
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back and inspect SQL migrations",
	}

	cmd.AddCommand(NewMigrateUpCommand())
	cmd.AddCommand(NewMigrateDownCommand())
	cmd.AddCommand(NewMigrateStatusCommand())
	cmd.AddCommand(NewMigrateCreateCommand())
	return cmd
}

// NewMigrateUpCommand creates the migrate up command.
func NewMigrateUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateUp(cmd.Context())
		},
	}
}

func runMigrateUp(ctx context.Context) error {
	c, cfg, err := openClient()
	if err != nil {
		return err
	}
	defer c.Close()

	applied, err := migrate.New(c, cfg.MigrationsDir).Up(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		ui.PrintInfo("database is up to date")
		return nil
	}
	ui.PrintSuccess("applied %d migrations", len(applied))
	ui.PrintList(applied)
	return nil
}

// NewMigrateDownCommand creates the migrate down command.
func NewMigrateDownCommand() *cobra.Command {
	var step int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last batch, or the last --step migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateDown(cmd.Context(), step)
		},
	}

	cmd.Flags().IntVar(&step, "step", 0, "How many migrations to roll back (0 rolls back the whole last batch)")
	return cmd
}

func runMigrateDown(ctx context.Context, step int) error {
	c, cfg, err := openClient()
	if err != nil {
		return err
	}
	defer c.Close()

	rolled, err := migrate.New(c, cfg.MigrationsDir).Down(ctx, step)
	if err != nil {
		return err
	}
	if len(rolled) == 0 {
		ui.PrintInfo("nothing to roll back")
		return nil
	}
	ui.PrintSuccess("rolled back %d migrations", len(rolled))
	ui.PrintList(rolled)
	return nil
}

// NewMigrateStatusCommand creates the migrate status command.
func NewMigrateStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which migrations have been applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateStatus(cmd.Context())
		},
	}
}

func runMigrateStatus(ctx context.Context) error {
	c, cfg, err := openClient()
	if err != nil {
		return err
	}
	defer c.Close()

	statuses, err := migrate.New(c, cfg.MigrationsDir).Status(ctx)
	if err != nil {
		return err
	}
	if len(statuses) == 0 {
		ui.PrintInfo("no migrations in %q", cfg.MigrationsDir)
		return nil
	}

	rows := make([][]string, len(statuses))
	for i, status := range statuses {
		batch := ""
		if status.Applied {
			batch = strconv.Itoa(status.Batch)
		}
		rows[i] = []string{status.Name, ui.StatusBadge(status.Applied), batch}
	}
	ui.PrintTable([]string{"migration", "status", "batch"}, rows)
	return nil
}

// NewMigrateCreateCommand creates the migrate create command.
func NewMigrateCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Write an empty up/down migration pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateCreate(args[0])
		},
	}
}

func runMigrateCreate(name string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	up, down, err := migrate.New(nil, cfg.MigrationsDir).Create(name)
	if err != nil {
		return err
	}
	ui.PrintSuccess("created %s", up)
	ui.PrintSuccess("created %s", down)
	return nil
}
