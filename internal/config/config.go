// Package config loads tusitala settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigFile is read from the working directory when no path is given.
const DefaultConfigFile = "tusitala.toml"

type Server struct {
	Addr      string `toml:"addr"`
	PublicDir string `toml:"public_dir"`
}

// WordPress holds the remote blog credentials. AppPassword is a WordPress
// application password, not the account password.
type WordPress struct {
	BaseURL        string `toml:"base_url"`
	Username       string `toml:"username"`
	AppPassword    string `toml:"app_password"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type Database struct {
	Path string `toml:"path"`
}

type Publish struct {
	// MigrationConcurrency bounds parallel in-body image uploads. Default: 4
	MigrationConcurrency int `toml:"migration_concurrency"`
	// MaxAssetBytes caps images accepted into the local asset store. Default: 10 MiB
	MaxAssetBytes int64 `toml:"max_asset_bytes"`
	// MaxMediaBytes caps direct uploads to the remote media library. Default: 5 MiB
	MaxMediaBytes int64 `toml:"max_media_bytes"`
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // auto, console or json
}

// Config encapsulates all configuration values for tusitala.
type Config struct {
	Server    Server    `toml:"server"`
	WordPress WordPress `toml:"wordpress"`
	Database  Database  `toml:"database"`
	Publish   Publish   `toml:"publish"`
	Logging   Logging   `toml:"logging"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: Server{
			Addr:      ":8080",
			PublicDir: "./public",
		},
		WordPress: WordPress{
			TimeoutSeconds: 30,
		},
		Database: Database{
			Path: "./tusitala.db",
		},
		Publish: Publish{
			MigrationConcurrency: 4,
			MaxAssetBytes:        10 << 20,
			MaxMediaBytes:        5 << 20,
		},
		Logging: Logging{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result. An empty path reads DefaultConfigFile
// when it exists.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(lookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv(lookupEnv func(string) (string, bool)) error {
	strOverrides := map[string]*string{
		"WP_BASE_URL":         &c.WordPress.BaseURL,
		"WP_USERNAME":         &c.WordPress.Username,
		"WP_APP_PASSWORD":     &c.WordPress.AppPassword,
		"SQLITE_DB_PATH":      &c.Database.Path,
		"TUSITALA_ADDR":       &c.Server.Addr,
		"TUSITALA_PUBLIC_DIR": &c.Server.PublicDir,
		"LOG_LEVEL":           &c.Logging.Level,
		"LOG_FORMAT":          &c.Logging.Format,
	}
	for key, target := range strOverrides {
		if v, ok := lookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*target = strings.TrimSpace(v)
		}
	}

	if v, ok := lookupEnv("TUSITALA_MIGRATION_CONCURRENCY"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TUSITALA_MIGRATION_CONCURRENCY: %w", err)
		}
		c.Publish.MigrationConcurrency = n
	}

	return nil
}

// WordPressTimeout returns the HTTP timeout for remote calls.
func (c *Config) WordPressTimeout() time.Duration {
	return time.Duration(c.WordPress.TimeoutSeconds) * time.Second
}

// Sample returns a commented configuration file with the defaults filled in.
func Sample() string {
	d := Default()
	return fmt.Sprintf(`# tusitala configuration

[server]
addr = %q
public_dir = %q

[wordpress]
base_url = "https://blog.example.com"
username = "editor"
# Application password from Users > Profile > Application Passwords
app_password = ""
timeout_seconds = %d

[database]
path = %q

[publish]
migration_concurrency = %d
max_asset_bytes = %d
max_media_bytes = %d

[logging]
level = %q
format = %q
`,
		d.Server.Addr, d.Server.PublicDir,
		d.WordPress.TimeoutSeconds,
		d.Database.Path,
		d.Publish.MigrationConcurrency, d.Publish.MaxAssetBytes, d.Publish.MaxMediaBytes,
		d.Logging.Level, d.Logging.Format,
	)
}
