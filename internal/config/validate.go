package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateWordPress(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	return c.validateLogging()
}

// RequireWordPress reports missing remote blog credentials. Commands that
// talk to the remote blog call it after Load.
func (c *Config) RequireWordPress() error {
	var missing []string
	if c.WordPress.BaseURL == "" {
		missing = append(missing, "wordpress.base_url (WP_BASE_URL)")
	}
	if c.WordPress.Username == "" {
		missing = append(missing, "wordpress.username (WP_USERNAME)")
	}
	if c.WordPress.AppPassword == "" {
		missing = append(missing, "wordpress.app_password (WP_APP_PASSWORD)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing WordPress settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) validateServer() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}
	if strings.TrimSpace(c.Server.PublicDir) == "" {
		return errors.New("server.public_dir must be set")
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path must be set")
	}
	return nil
}

func (c *Config) validateWordPress() error {
	if c.WordPress.BaseURL != "" {
		u, err := url.Parse(c.WordPress.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("wordpress.base_url %q must be an absolute http(s) URL", c.WordPress.BaseURL)
		}
	}
	if c.WordPress.TimeoutSeconds <= 0 {
		return errors.New("wordpress.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validatePublish() error {
	if c.Publish.MigrationConcurrency < 1 || c.Publish.MigrationConcurrency > 32 {
		return errors.New("publish.migration_concurrency must be between 1 and 32")
	}
	if c.Publish.MaxAssetBytes <= 0 {
		return errors.New("publish.max_asset_bytes must be positive")
	}
	if c.Publish.MaxMediaBytes <= 0 {
		return errors.New("publish.max_media_bytes must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "auto", "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format %q must be auto, console or json", c.Logging.Format)
	}
}
