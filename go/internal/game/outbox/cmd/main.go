package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/LaurentStar/hourly-coup/go/internal/dbconfig"
	"github.com/LaurentStar/hourly-coup/go/internal/game/outbox"
	"github.com/LaurentStar/hourly-coup/go/internal/game/outbox/worker"
)

func main() {
	// load .env
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	// configure zerolog console output and level
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB config
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}
	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("connected to database")

	// JetStream publisher
	jsCfg := worker.DefaultJetStreamConfig()
	if url := os.Getenv("NATS_URL"); url != "" {
		jsCfg.URL = url
	}
	publisher, err := worker.NewJetStreamPublisher(jsCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create JetStream publisher")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("close publisher")
		}
	}()

	// Poll interval override
	wCfg := outbox.DefaultConfig()
	if iv := os.Getenv("POLL_INTERVAL"); iv != "" {
		if d, err := time.ParseDuration(iv); err == nil {
			wCfg.PollInterval = d
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	w := outbox.NewWorker(pool, publisher, wCfg, logger)

	if err := w.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("start outbox worker")
	}
	log.Info().Msg("outbox worker started")

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	if err := w.Stop(); err != nil {
		log.Error().Err(err).Msg("stop outbox worker")
	}
	log.Info().Msg("outbox worker shutdown complete")
}
