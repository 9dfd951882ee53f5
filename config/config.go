// Package config loads querykit connection settings from config files,
// .env files and QUERYKIT_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem the loader reads and writes through. Tests swap in
// an in-memory filesystem.
var AppFs = afero.NewOsFs()

// Config holds everything needed to open and tune a database connection.
type Config struct {
	Driver          string
	DSN             string
	Prefix          string
	MigrationsDir   string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Debug           bool
}

// Load reads the configuration in priority order: QUERYKIT_* environment
// variables, then .querykit.yaml (working directory, home, or
// ~/.config/querykit), then defaults. A .env file is loaded first and
// .env.local on top of it, so DATABASE_URL can live there.
func Load() (*Config, error) {
	loadDotenv()

	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigName(".querykit")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "querykit"))

	v.SetEnvPrefix("QUERYKIT")
	v.AutomaticEnv()

	v.SetDefault("driver", "sqlite")
	v.SetDefault("dsn", "")
	v.SetDefault("prefix", "")
	v.SetDefault("migrations_dir", "migrations")
	v.SetDefault("max_open_conns", 10)
	v.SetDefault("max_idle_conns", 5)
	v.SetDefault("conn_max_lifetime", time.Hour)
	v.SetDefault("debug", false)

	// Missing config files are fine; env vars and defaults still apply.
	_ = v.ReadInConfig()

	cfg := &Config{
		Driver:          v.GetString("driver"),
		DSN:             v.GetString("dsn"),
		Prefix:          v.GetString("prefix"),
		MigrationsDir:   v.GetString("migrations_dir"),
		MaxOpenConns:    v.GetInt("max_open_conns"),
		MaxIdleConns:    v.GetInt("max_idle_conns"),
		ConnMaxLifetime: v.GetDuration("conn_max_lifetime"),
		Debug:           v.GetBool("debug"),
	}
	if cfg.DSN == "" {
		cfg.DSN = os.Getenv("DATABASE_URL")
	}
	return cfg, nil
}

func loadDotenv() {
	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}
}

// Save writes the configuration to ~/.config/querykit/.querykit.yaml.
func Save(cfg *Config) error {
	home, err := homedir.Dir()
	if err != nil {
		return err
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigType("yaml")
	v.Set("driver", cfg.Driver)
	v.Set("dsn", cfg.DSN)
	v.Set("prefix", cfg.Prefix)
	v.Set("migrations_dir", cfg.MigrationsDir)
	v.Set("max_open_conns", cfg.MaxOpenConns)
	v.Set("max_idle_conns", cfg.MaxIdleConns)
	v.Set("conn_max_lifetime", cfg.ConnMaxLifetime)
	v.Set("debug", cfg.Debug)

	dir := filepath.Join(home, ".config", "querykit")
	if err := AppFs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return v.WriteConfigAs(filepath.Join(dir, ".querykit.yaml"))
}
