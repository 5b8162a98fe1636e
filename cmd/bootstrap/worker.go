package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"ticketing-engine/internal/pkg/config"
	"ticketing-engine/internal/usecase/commands"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Invoke(
		StartReaper,
		StartNotifier,
	),
)

// StartReaper runs the expiry loop: pending orders older than the payment
// TTL are expired and their capacity released. Expired idempotency keys
// are purged on the same cadence.
func StartReaper(lc fx.Lifecycle, cfg config.Config, cmds commands.MaintenanceCommands) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go runLoop(ctx, done, cfg.Worker.ReaperInterval, func(ctx context.Context) {
				if _, err := cmds.ExpireOverdueOrders(ctx); err != nil {
					slog.Error("reaper pass failed", "error", err)
				}
				if _, err := cmds.PurgeIdempotencyKeys(ctx); err != nil {
					slog.Error("idempotency purge failed", "error", err)
				}
			})
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
}

// StartNotifier drains the notification job queue.
func StartNotifier(lc fx.Lifecycle, cfg config.Config, cmds commands.NotificationCommands) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go runLoop(ctx, done, cfg.Worker.NotifierInterval, func(ctx context.Context) {
				if _, err := cmds.DispatchDue(ctx); err != nil {
					slog.Error("notification dispatch failed", "error", err)
				}
			})
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
}

func runLoop(ctx context.Context, done chan<- struct{}, interval time.Duration, pass func(ctx context.Context)) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pass(ctx)
		}
	}
}
