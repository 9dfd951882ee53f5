package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/querykit/config"
)

func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	previous := config.AppFs
	config.AppFs = fs
	t.Cleanup(func() { config.AppFs = previous })
	return fs
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	return home
}

func TestLoadDefaults(t *testing.T) {
	useMemFs(t)
	isolateHome(t)
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Driver)
	assert.Equal(t, "", cfg.DSN)
	assert.Equal(t, "migrations", cfg.MigrationsDir)
	assert.Equal(t, 10, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, time.Hour, cfg.ConnMaxLifetime)
	assert.False(t, cfg.Debug)
}

func TestLoadReadsEnvironment(t *testing.T) {
	useMemFs(t)
	isolateHome(t)
	t.Setenv("QUERYKIT_DRIVER", "postgres")
	t.Setenv("QUERYKIT_DSN", "postgres://localhost/app")
	t.Setenv("QUERYKIT_PREFIX", "wp_")
	t.Setenv("QUERYKIT_DEBUG", "true")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Driver)
	assert.Equal(t, "postgres://localhost/app", cfg.DSN)
	assert.Equal(t, "wp_", cfg.Prefix)
	assert.True(t, cfg.Debug)
}

func TestLoadFallsBackToDatabaseURL(t *testing.T) {
	useMemFs(t)
	isolateHome(t)
	t.Setenv("QUERYKIT_DSN", "")
	t.Setenv("DATABASE_URL", "mysql://root@localhost/app")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "mysql://root@localhost/app", cfg.DSN)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	fs := useMemFs(t)
	home := isolateHome(t)

	err := config.Save(&config.Config{
		Driver:          "mysql",
		DSN:             "root@tcp(localhost)/app",
		Prefix:          "app_",
		MigrationsDir:   "db/migrations",
		MaxOpenConns:    20,
		MaxIdleConns:    4,
		ConnMaxLifetime: 30 * time.Minute,
	})
	require.NoError(t, err)

	written, err := afero.Exists(fs, filepath.Join(home, ".config", "querykit", ".querykit.yaml"))
	require.NoError(t, err)
	assert.True(t, written)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Driver)
	assert.Equal(t, "root@tcp(localhost)/app", cfg.DSN)
	assert.Equal(t, "app_", cfg.Prefix)
	assert.Equal(t, "db/migrations", cfg.MigrationsDir)
	assert.Equal(t, 20, cfg.MaxOpenConns)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
}
