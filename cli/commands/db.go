package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/querykit/cli/internal/ui"
	"github.com/satishbabariya/querykit/schema"
)

// NewDBCommand groups the database inspection and execution commands.
func NewDBCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect and run SQL against the configured database",
	}

	cmd.AddCommand(NewDBPingCommand())
	cmd.AddCommand(NewDBExecCommand())
	cmd.AddCommand(NewDBTablesCommand())
	return cmd
}

// NewDBPingCommand creates the db ping command.
func NewDBPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured database answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBPing(cmd.Context())
		},
	}
}

func runDBPing(ctx context.Context) error {
	c, cfg, err := openClient()
	if err != nil {
		return err
	}
	defer c.Close()

	spinner := ui.Spinner("pinging " + cfg.Driver)
	start := time.Now()
	if err := c.Ping(ctx); err != nil {
		spinner.Fail("no answer")
		return err
	}
	spinner.Success(fmt.Sprintf("%s answered in %s", cfg.Driver, time.Since(start).Round(time.Millisecond)))
	return nil
}

// NewDBExecCommand creates the db exec command.
func NewDBExecCommand() *cobra.Command {
	var file string
	var rawSQL string
	var yes bool

	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Run SQL statements from --sql or --file",
		Long: `Run one or more semicolon-separated SQL statements against the
configured database. Statements starting with drop, truncate or delete
prompt for confirmation unless --yes is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBExec(cmd.Context(), file, rawSQL, yes)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to a SQL file to run")
	cmd.Flags().StringVar(&rawSQL, "sql", "", "SQL to run")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the destructive statement confirmation")
	return cmd
}

func runDBExec(ctx context.Context, file, rawSQL string, yes bool) error {
	if (file == "") == (rawSQL == "") {
		return fmt.Errorf("exactly one of --file or --sql is required")
	}
	content := rawSQL
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %q: %w", file, err)
		}
		content = string(raw)
	}

	statements := splitSQL(content)
	if len(statements) == 0 {
		ui.PrintWarning("nothing to run")
		return nil
	}

	if destructive := countDestructive(statements); destructive > 0 && !yes {
		confirmed := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("%d of %d statements are destructive, run anyway?", destructive, len(statements)),
		}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			ui.PrintWarning("aborted")
			return nil
		}
	}

	c, _, err := openClient()
	if err != nil {
		return err
	}
	defer c.Close()

	for _, statement := range statements {
		result, err := c.Exec(ctx, statement)
		if err != nil {
			return fmt.Errorf("%q: %w", statement, err)
		}
		affected, _ := result.RowsAffected()
		ui.PrintSuccess("%s (%d rows)", statement, affected)
	}
	return nil
}

// NewDBTablesCommand creates the db tables command.
func NewDBTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables in the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBTables(cmd.Context())
		},
	}
}

func runDBTables(ctx context.Context) error {
	c, _, err := openClient()
	if err != nil {
		return err
	}
	defer c.Close()

	tables, err := schema.NewBuilder(c).Tables(ctx)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		ui.PrintInfo("no tables yet")
		return nil
	}

	rows := make([][]string, len(tables))
	for i, table := range tables {
		rows[i] = []string{table}
	}
	ui.PrintTable([]string{"table"}, rows)
	return nil
}

// splitSQL strips comment and blank lines, then splits on semicolons.
func splitSQL(content string) []string {
	var clean []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		clean = append(clean, trimmed)
	}

	var statements []string
	for _, statement := range strings.Split(strings.Join(clean, " "), ";") {
		if statement = strings.TrimSpace(statement); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

var destructiveVerbs = []string{"drop ", "truncate ", "delete "}

func countDestructive(statements []string) int {
	count := 0
	for _, statement := range statements {
		lowered := strings.ToLower(statement)
		for _, verb := range destructiveVerbs {
			if strings.HasPrefix(lowered, verb) {
				count++
				break
			}
		}
	}
	return count
}
