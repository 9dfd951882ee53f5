// Package migrate discovers plain-SQL migration files and applies them in
// order. Files pair up as NNNN_name.up.sql and NNNN_name.down.sql; applied
// migrations are tracked in a history table so Up and Down are repeatable.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/satishbabariya/querykit/internal/debug"
	"github.com/satishbabariya/querykit/runtime/client"
	"github.com/satishbabariya/querykit/schema"
)

// HistoryTable records applied migrations (subject to the client's table
// prefix).
const HistoryTable = "querykit_migrations"

var (
	// ErrMissingDownFile reports a rollback without a .down.sql file.
	ErrMissingDownFile = errors.New("missing down migration")

	upFilePattern = regexp.MustCompile(`^(\d+)_.+\.up\.sql$`)
	sequencePart  = regexp.MustCompile(`^(\d+)_`)
)

// Migration is one discovered up/down pair.
type Migration struct {
	Name     string // file stem, e.g. "0001_create_users"
	UpPath   string
	DownPath string
}

// Status pairs a migration name with its applied state.
type Status struct {
	Name    string
	Applied bool
	Batch   int
}

// Migrator applies migrations from a directory to the client's database.
type Migrator struct {
	fs     afero.Fs
	dir    string
	client *client.Client
	schema *schema.Builder
}

// Option configures a migrator.
type Option func(*Migrator)

// WithFs swaps the filesystem the migrator reads from.
func WithFs(fs afero.Fs) Option {
	return func(m *Migrator) { m.fs = fs }
}

// New builds a migrator over dir. A nil client is fine for Create and
// Migrations; Up, Down and Status need a connected one.
func New(c *client.Client, dir string, opts ...Option) *Migrator {
	m := &Migrator{
		fs:     afero.NewOsFs(),
		dir:    dir,
		client: c,
	}
	if c != nil {
		m.schema = schema.NewBuilder(c)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Migrations lists the discovered pairs in apply order.
func (m *Migrator) Migrations() ([]Migration, error) {
	entries, err := afero.ReadDir(m.fs, m.dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir %q: %w", m.dir, err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !upFilePattern.MatchString(entry.Name()) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".up.sql")
		migrations = append(migrations, Migration{
			Name:     name,
			UpPath:   filepath.Join(m.dir, entry.Name()),
			DownPath: filepath.Join(m.dir, name+".down.sql"),
		})
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Name < migrations[j].Name })
	return migrations, nil
}

// Up applies every pending migration in one batch and returns the applied
// names in order.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	if err := m.ensureHistory(ctx); err != nil {
		return nil, err
	}
	migrations, err := m.Migrations()
	if err != nil {
		return nil, err
	}
	applied, err := m.appliedBatches(ctx)
	if err != nil {
		return nil, err
	}

	batch := 1
	for _, b := range applied {
		if b >= batch {
			batch = b + 1
		}
	}

	var ran []string
	for _, migration := range migrations {
		if _, ok := applied[migration.Name]; ok {
			continue
		}
		if err := m.apply(ctx, migration, batch); err != nil {
			return ran, err
		}
		ran = append(ran, migration.Name)
	}
	return ran, nil
}

// Down rolls back the most recent migrations: the whole last batch when
// step is zero or negative, otherwise the last step migrations.
func (m *Migrator) Down(ctx context.Context, step int) ([]string, error) {
	if err := m.ensureHistory(ctx); err != nil {
		return nil, err
	}
	migrations, err := m.Migrations()
	if err != nil {
		return nil, err
	}
	applied, err := m.appliedBatches(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]Migration, len(migrations))
	for _, migration := range migrations {
		byName[migration.Name] = migration
	}

	targets := rollbackTargets(applied, step)
	var rolled []string
	for _, name := range targets {
		migration, ok := byName[name]
		if !ok {
			return rolled, fmt.Errorf("%w: %s", ErrMissingDownFile, name)
		}
		if err := m.revert(ctx, migration); err != nil {
			return rolled, err
		}
		rolled = append(rolled, name)
	}
	return rolled, nil
}

// Status reports every discovered migration with its applied state, plus
// history rows whose files have gone missing.
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	if err := m.ensureHistory(ctx); err != nil {
		return nil, err
	}
	migrations, err := m.Migrations()
	if err != nil {
		return nil, err
	}
	applied, err := m.appliedBatches(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]Status, 0, len(migrations))
	seen := make(map[string]bool, len(migrations))
	for _, migration := range migrations {
		batch, ok := applied[migration.Name]
		statuses = append(statuses, Status{Name: migration.Name, Applied: ok, Batch: batch})
		seen[migration.Name] = true
	}

	var orphans []string
	for name := range applied {
		if !seen[name] {
			orphans = append(orphans, name)
		}
	}
	sort.Strings(orphans)
	for _, name := range orphans {
		statuses = append(statuses, Status{Name: name, Applied: true, Batch: applied[name]})
	}
	return statuses, nil
}

// Create writes an empty up/down pair with the next sequence number and
// returns both paths.
func (m *Migrator) Create(name string) (string, string, error) {
	migrations, err := m.Migrations()
	if err != nil {
		if err := m.fs.MkdirAll(m.dir, 0o755); err != nil {
			return "", "", err
		}
		migrations = nil
	}

	sequence := 0
	for _, migration := range migrations {
		if match := sequencePart.FindStringSubmatch(migration.Name); match != nil {
			var n int
			fmt.Sscan(match[1], &n)
			if n > sequence {
				sequence = n
			}
		}
	}

	stem := fmt.Sprintf("%04d_%s", sequence+1, slugify(name))
	upPath := filepath.Join(m.dir, stem+".up.sql")
	downPath := filepath.Join(m.dir, stem+".down.sql")

	if err := afero.WriteFile(m.fs, upPath, []byte("-- "+stem+"\n"), 0o644); err != nil {
		return "", "", err
	}
	if err := afero.WriteFile(m.fs, downPath, []byte("-- revert "+stem+"\n"), 0o644); err != nil {
		return "", "", err
	}
	return upPath, downPath, nil
}

func (m *Migrator) apply(ctx context.Context, migration Migration, batch int) error {
	statements, err := m.readStatements(migration.UpPath)
	if err != nil {
		return err
	}
	debug.Debug("applying migration", "name", migration.Name, "statements", len(statements))

	return m.client.Transaction(ctx, func(tx *client.Tx) error {
		for _, statement := range statements {
			if _, err := tx.Exec(ctx, statement); err != nil {
				return fmt.Errorf("%s: %w", migration.Name, err)
			}
		}
		return tx.Insert(ctx, tx.Table(HistoryTable), map[string]any{
			"migration": migration.Name,
			"batch":     batch,
		})
	})
}

func (m *Migrator) revert(ctx context.Context, migration Migration) error {
	exists, err := afero.Exists(m.fs, migration.DownPath)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrMissingDownFile, migration.Name)
	}
	statements, err := m.readStatements(migration.DownPath)
	if err != nil {
		return err
	}
	debug.Debug("reverting migration", "name", migration.Name, "statements", len(statements))

	return m.client.Transaction(ctx, func(tx *client.Tx) error {
		for _, statement := range statements {
			if _, err := tx.Exec(ctx, statement); err != nil {
				return fmt.Errorf("%s: %w", migration.Name, err)
			}
		}
		_, err := tx.Delete(ctx, tx.Table(HistoryTable).Where("migration", "=", migration.Name))
		return err
	})
}

func (m *Migrator) ensureHistory(ctx context.Context) error {
	exists, err := m.schema.HasTable(ctx, HistoryTable)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return m.schema.Create(ctx, HistoryTable, func(bp *schema.Blueprint) {
		bp.ID()
		bp.String("migration")
		bp.Integer("batch")
		bp.Timestamp("applied_at").UseCurrent()
	})
}

func (m *Migrator) appliedBatches(ctx context.Context) (map[string]int, error) {
	rows, err := m.client.Select(ctx, m.client.Table(HistoryTable).Select("migration", "batch"))
	if err != nil {
		return nil, err
	}
	applied := make(map[string]int, len(rows))
	for _, row := range rows {
		name, _ := row["migration"].(string)
		applied[name] = asInt(row["batch"])
	}
	return applied, nil
}

func (m *Migrator) readStatements(path string) ([]string, error) {
	content, err := afero.ReadFile(m.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read migration %q: %w", path, err)
	}
	return splitStatements(string(content)), nil
}

// splitStatements strips comment and blank lines, then splits the remainder
// on semicolons.
func splitStatements(content string) []string {
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

// rollbackTargets orders applied names newest first and cuts the list to
// the requested step, or to the last batch when step is not positive.
func rollbackTargets(applied map[string]int, step int) []string {
	names := make([]string, 0, len(applied))
	for name := range applied {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if applied[names[i]] != applied[names[j]] {
			return applied[names[i]] > applied[names[j]]
		}
		return names[i] > names[j]
	})

	if step > 0 {
		if step > len(names) {
			step = len(names)
		}
		return names[:step]
	}

	if len(names) == 0 {
		return nil
	}
	last := applied[names[0]]
	var targets []string
	for _, name := range names {
		if applied[name] != last {
			break
		}
		targets = append(targets, name)
	}
	return targets
}

func asInt(value any) int {
	switch v := value.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case string:
		var n int
		fmt.Sscan(v, &n)
		return n
	default:
		return 0
	}
}

func slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return name
}
