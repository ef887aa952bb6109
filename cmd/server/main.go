// Command server runs the redirect and analytics service.
//
//	server [--env-file .env] serve     start the HTTP server (default)
//	server [--env-file .env] migrate   create the database schema and exit
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"redirect-analytics/internal/config"
	"redirect-analytics/internal/repository/postgres"
	"redirect-analytics/pkg/logger"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:   "redirect-analytics",
		Usage:  "Alias redirects with an analytics interstitial and an admin UI",
		Flags:  commonFlags(),
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Create the database schema and exit",
				Action: migrate,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "env-file",
			Aliases:     []string{"e"},
			Usage:       "Path to a .env file loaded before reading the environment",
			DefaultText: ".env",
			Value:       ".env",
			Sources:     cli.EnvVars("APP_ENV_FILE"),
		},
	}
}

// setup loads the configuration and creates the application logger
func setup(cmd *cli.Command) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(cmd.String("env-file"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.NewWithOptions(logger.Options{
		Level: cfg.App.LogLevel,
		File:  cfg.App.LogFile,
	})

	return cfg, appLogger, nil
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	cfg, appLogger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer appLogger.Close()

	db, err := postgres.InitDB(ctx, cfg.Database.DatabaseDSN(),
		cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	appLogger.Info("Database schema is up to date")
	return nil
}
