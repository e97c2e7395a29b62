package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dfryer1193/tusitala/blog/persistence"
	"github.com/dfryer1193/tusitala/internal/config"
	"github.com/dfryer1193/tusitala/internal/logging"
	"github.com/dfryer1193/tusitala/shared/db"
	"github.com/dfryer1193/tusitala/shared/db/sqlite"
	"github.com/dfryer1193/tusitala/shared/wordpress"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := logging.Setup(cfg.Logging.Level, cfg.Logging.Format); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) wordpressClient() (*wordpress.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireWordPress(); err != nil {
		return nil, err
	}
	return wordpress.New(wordpress.Config{
		BaseURL:     cfg.WordPress.BaseURL,
		Username:    cfg.WordPress.Username,
		AppPassword: cfg.WordPress.AppPassword,
		Timeout:     cfg.WordPressTimeout(),
	})
}

// store bundles the local database and the repositories built on it.
type store struct {
	db           db.Database
	storage      *persistence.FileStorage
	assets       *persistence.SQLiteAssetRepository
	publications *persistence.SQLitePublicationRepository
}

func (c *commandContext) openStore() (*store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	var database db.Database = sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: cfg.Database.Path})
	if err := database.Connect(); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	storage := persistence.NewFileStorage(cfg.Server.PublicDir)
	return &store{
		db:           database,
		storage:      storage,
		assets:       persistence.NewAssetRepository(database.DB(), storage),
		publications: persistence.NewPublicationRepository(database.DB()),
	}, nil
}

func (s *store) Close() error {
	return s.db.Close()
}
