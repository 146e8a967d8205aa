package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	// Personalities register themselves on import.
	_ "github.com/LaurentStar/hourly-coup/go/internal/agents/bold"
	_ "github.com/LaurentStar/hourly-coup/go/internal/agents/timid"

	"github.com/LaurentStar/hourly-coup/go/internal/game/gateway"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Warn().Err(err).Msg("no config file loaded, using defaults")
		cfg = &Config{}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := setupDatabase(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up database")
	}
	defer pool.Close()

	services := setupServices(pool, cfg)

	// WebSocket fan-out: connection manager plus the JetStream consumer
	// feeding it.
	cm := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	go cm.Start(ctx)

	consumerCfg := gateway.DefaultJetStreamConsumerConfig()
	consumerCfg.URL = getEnv("NATS_URL", nats.DefaultURL)
	eventConsumer, err := gateway.NewEventConsumer(cm, consumerCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up gateway event consumer")
	}
	defer eventConsumer.Stop()

	go func() {
		if err := eventConsumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("gateway event consumer failed")
		}
	}()

	server := setupServer(services, gateway.NewWebSocketHandler(cm))

	go func() {
		log.Info().Str("addr", server.Addr).Msg("game server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	log.Info().Msg("game server shutdown complete")
}
