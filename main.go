// Command dishhub tails the live kitchen feed: it subscribes to the
// unfiltered order view and logs every snapshot until interrupted.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/dishhub/internal/config"
	"github.com/nikolayk812/dishhub/internal/domain"
	"github.com/nikolayk812/dishhub/internal/fanout"
	"github.com/nikolayk812/dishhub/internal/repository"
	"github.com/nikolayk812/dishhub/internal/service"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("dishhub failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return err
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}
	logger.Info("connected to database")

	hub := fanout.NewHub()

	machine, err := service.NewStatusMachine(repository.NewOrder(pool), hub, logger)
	if err != nil {
		return err
	}

	snapshots, err := machine.Watch(ctx, domain.OrderFilter{})
	if err != nil {
		return err
	}

	logger.Info("watching all orders")

	for snapshot := range snapshots {
		byStatus := make(map[domain.OrderStatus]int)
		for _, order := range snapshot {
			byStatus[order.Status]++
		}
		logger.Info("orders snapshot", "total", len(snapshot), "by_status", byStatus)
	}

	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
