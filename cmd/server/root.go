package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/timebank-backend/internal/app"
	"github.com/ignatzorin/timebank-backend/internal/config"
	"github.com/ignatzorin/timebank-backend/internal/db"
	"github.com/ignatzorin/timebank-backend/internal/interface/http/handler"
	"github.com/ignatzorin/timebank-backend/internal/logger"
)

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "timebank",
		Short:         "TimeBank - биржа задач с оплатой временем",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			if err := logger.Init(loaded.LoggerOptions()); err != nil {
				return fmt.Errorf("не удалось инициализировать логгер: %w", err)
			}
			*cfg = *loaded
			return nil
		},
	}
	cfg = &config.Config{}

	root.AddCommand(
		newServeCmd(cfg),
		newMigrateCmd(cfg),
		newSweepCmd(cfg),
		newWithdrawalCmd(cfg),
		&cobra.Command{
			Use:   "version",
			Short: "Показать версию",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "timebank %s (%s)\n", version, commit)
			},
		},
	)
	return root
}

// backend - выбранное хранилище. pg равен nil в режиме memory.
type backend struct {
	repos  app.Repositories
	pg     *db.Postgres
	checks map[string]handler.Check
}

func (b *backend) Close() {
	if b.pg != nil {
		b.pg.Close()
	}
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Log.Warn("данные хранятся в памяти и пропадут после перезапуска")
		return &backend{repos: app.MemoryRepositories()}, nil
	}

	pg, err := db.NewPostgres(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return nil, err
	}
	return &backend{
		repos: app.PostgresRepositories(pg.SQL),
		pg:    pg,
		checks: map[string]handler.Check{
			"database": pg.Pool.Ping,
		},
	}, nil
}

// requirePostgres открывает базу для служебных команд, которым нечего делать с памятью.
func requirePostgres(ctx context.Context, cfg *config.Config) (*backend, error) {
	if cfg.StorageDriver != config.StoragePostgres {
		return nil, fmt.Errorf("команда работает только с STORAGE_DRIVER=%s", config.StoragePostgres)
	}
	return openBackend(ctx, cfg)
}
