package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/hookrelay/pkg/api"
	"github.com/dmitrymomot/hookrelay/pkg/config"
	"github.com/dmitrymomot/hookrelay/pkg/dispatch"
	"github.com/dmitrymomot/hookrelay/pkg/httpserver"
	"github.com/dmitrymomot/hookrelay/pkg/logger"
	mongodb "github.com/dmitrymomot/hookrelay/pkg/mongo"
	"github.com/dmitrymomot/hookrelay/pkg/store"
	"github.com/dmitrymomot/hookrelay/pkg/webhook"
)

type appConfig struct {
	AppEnv       string        `env:"APP_ENV" envDefault:"development"`
	DatabaseName string        `env:"MONGODB_DATABASE" envDefault:"hookrelay"`
	SendTimeout  time.Duration `env:"WEBHOOK_SEND_TIMEOUT" envDefault:"10s"`

	HTTP     httpserver.Config
	Mongo    mongodb.Config
	Dispatch dispatch.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(logger.WithEnvironment(cfg.AppEnv, "hookrelay"))
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("service terminated", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn := mongodb.NewConnection(cfg.Mongo, log)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := conn.Close(shutdownCtx); err != nil {
			log.Warn("mongo close failed", logger.Error(err))
		}
	}()

	db, err := conn.GetDatabase(ctx, cfg.DatabaseName)
	if err != nil {
		return err
	}

	engine := dispatch.NewEngine(
		dispatch.WithLogger(log),
		dispatch.WithIdleBackoff(cfg.Dispatch.IdleBackoff),
	)

	svc := api.New(
		store.NewSubscriptionRepository(db),
		store.NewPublicationRepository(db),
		webhook.NewSender(),
		engine,
		api.WithLogger(log),
		api.WithMaxAttempts(cfg.Dispatch.MaxAttempts),
		api.WithRetryDelay(webhook.FixedBackoff{Interval: cfg.Dispatch.RetryDelay}),
		api.WithDeliveryTimeout(cfg.SendTimeout),
		api.WithHealthProbe(mongodb.Healthcheck(conn)),
	)

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("http server starting", slog.String("addr", cfg.HTTP.Addr))
		}),
		httpserver.WithStopHook(func(l *slog.Logger) {
			l.Info("http server stopped")
		}),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Run(ctx)
	})
	g.Go(func() error {
		return srv.Run(ctx, svc.Handle())
	})
	g.Go(func() error {
		// Stops the delivery loop once the HTTP server is down so queued
		// envelopes do not keep retrying against a terminating process.
		<-ctx.Done()
		engine.RequestStop()
		engine.EnqueueSentinel()
		return nil
	})

	return g.Wait()
}
