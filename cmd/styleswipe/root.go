package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tair/styleswipe/config"
	"github.com/tair/styleswipe/internal/app"
	"github.com/tair/styleswipe/pkg/database"
	"github.com/tair/styleswipe/pkg/logger"
)

type cli struct {
	configFile string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "styleswipe",
		Short:         "StyleSwipe virtual try-on backend",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configFile)
			if err != nil {
				return err
			}
			c.cfg = cfg
			logger.Init(logger.Options{
				Service:     cfg.App.Name,
				Version:     cfg.App.Version,
				Environment: cfg.App.Environment,
				Level:       cfg.App.LogLevel,
				Console:     cfg.App.IsDevelopment(),
			})
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "path to a YAML/JSON/TOML config file")

	root.AddCommand(
		c.serveCmd(),
		c.migrateCmd(),
		c.searchCmd(),
		c.generateCmd(),
		c.eventsCmd(),
	)
	return root
}

func (c *cli) databaseConfig() database.Config {
	db := c.cfg.DB
	return database.Config{
		Host:            db.Host,
		Port:            db.Port,
		User:            db.User,
		Password:        db.Password,
		DBName:          db.Name,
		SSLMode:         db.SSLMode,
		MaxOpenConns:    db.MaxOpenConns,
		MaxIdleConns:    db.MaxIdleConns,
		ConnMaxLifetime: time.Duration(db.ConnMaxLifetimeMinutes) * time.Minute,
	}
}

// openApp connects to the database and assembles the service. The returned
// cleanup closes everything it opened.
func (c *cli) openApp(ctx context.Context) (*app.App, func(), error) {
	db, err := database.NewGormConnection(c.databaseConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	a, cleanup, err := app.InitializeApp(ctx, c.cfg, db)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("failed to initialize app: %w", err)
	}
	return a, func() {
		cleanup()
		closeDB()
	}, nil
}
