package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ignatzorin/timebank-backend/internal/app"
	"github.com/ignatzorin/timebank-backend/internal/config"
	"github.com/ignatzorin/timebank-backend/internal/goroutine"
	"github.com/ignatzorin/timebank-backend/internal/logger"
	"github.com/ignatzorin/timebank-backend/internal/sweep"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP сервер",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Готовим контекст для graceful shutdown.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "применить миграции перед стартом")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, migrate bool) error {
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	if b.pg != nil && migrate {
		if err := b.pg.Migrate(ctx, cfg.MigrationsPath); err != nil {
			return err
		}
	}

	a := app.New(cfg, b.repos, b.checks)
	goroutine.SafeGoWithContext(ctx, a.Hub.Run)

	stopSweep, err := startSweep(ctx, cfg, b, a.Sweeper)
	if err != nil {
		return err
	}
	defer stopSweep()

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("ошибка остановки http сервера")
		}
	}()

	logger.Log.WithFields(logrus.Fields{
		"port":    cfg.HTTPPort,
		"storage": cfg.StorageDriver,
		"env":     cfg.Env,
	}).Info("HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("сервер завершился с ошибкой: %w", err)
	}
	return nil
}

// startSweep запускает обход просрочек: через River при Postgres, тикером в памяти.
func startSweep(ctx context.Context, cfg *config.Config, b *backend, s *sweep.Sweeper) (func(), error) {
	if b.pg == nil {
		sweep.Start(ctx, s, cfg.SweepInterval)
		return func() {}, nil
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, sweep.NewWorker(s))

	client, err := river.NewClient(riverpgxv5.New(b.pg.Pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: cfg.RiverMaxWorkers},
		},
		Workers:      workers,
		PeriodicJobs: []*river.PeriodicJob{sweep.PeriodicJob(cfg.SweepInterval)},
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось создать клиент River: %w", err)
	}
	if err := client.Start(ctx); err != nil {
		return nil, fmt.Errorf("не удалось запустить River: %w", err)
	}

	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Stop(stopCtx); err != nil {
			logger.Log.WithError(err).Error("ошибка остановки River")
		}
	}, nil
}
