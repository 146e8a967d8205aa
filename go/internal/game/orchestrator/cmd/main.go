package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	// Personalities register themselves on import.
	_ "github.com/LaurentStar/hourly-coup/go/internal/agents/bold"
	_ "github.com/LaurentStar/hourly-coup/go/internal/agents/timid"

	"github.com/LaurentStar/hourly-coup/go/internal/agents"
	"github.com/LaurentStar/hourly-coup/go/internal/dbconfig"
	"github.com/LaurentStar/hourly-coup/go/internal/game/intake"
	"github.com/LaurentStar/hourly-coup/go/internal/game/orchestrator"
	"github.com/LaurentStar/hourly-coup/go/internal/game/outbox"
	"github.com/LaurentStar/hourly-coup/go/internal/game/resolve"
	"github.com/LaurentStar/hourly-coup/go/internal/game/session"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	natsURL := getEnv("NATS_URL", nats.DefaultURL)
	batchSize := int32(getEnvAsInt("SCHEDULER_BATCH_SIZE", 100))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbCfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, dbCfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}

	log.Info().
		Str("database", dbCfg.Database).
		Str("nats_url", natsURL).
		Msg("starting game orchestrator")

	clock := clockwork.NewRealClock()
	repo := session.NewRepository(pool)
	outboxApp := outbox.NewApp(outbox.NewRepository(pool))

	sessionService := session.NewService(session.NewApp(repo, clock), outboxApp, clock)
	intakeApp := intake.NewApp(repo, clock)
	engine := resolve.NewEngine(repo)
	runner := agents.NewRunner(sessionService, intakeApp, agentConfigFromEnv())

	orch := orchestrator.NewOrchestrator(
		sessionService,
		intakeApp,
		engine,
		runner,
		outboxApp,
		batchSize,
	)

	// Start orchestrator scheduler in background
	go func() {
		log.Info().Msg("starting orchestrator scheduler")
		if err := orch.RunScheduler(ctx); err != nil {
			log.Error().Err(err).Msg("orchestrator scheduler failed")
			stop()
		}
	}()

	// Event subscription keeps the scheduler responsive to lifecycle
	// changes made through the gateway.
	eventConsumer, err := orchestrator.NewEventConsumer(ctx, orch, natsURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup event consumer")
	}
	defer eventConsumer.Close()

	go func() {
		log.Info().Msg("starting NATS event consumer")
		if err := eventConsumer.Run(ctx); err != nil {
			log.Error().Err(err).Msg("NATS event consumer failed")
		}
	}()

	// Health check server on its own port
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	server := &http.Server{
		Addr:         ":" + getEnv("HEALTH_PORT", "8082"),
		Handler:      healthMux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health check server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health check server shutdown failed")
	}

	log.Info().Msg("game orchestrator shutdown complete")
}

// agentConfigFromEnv reads the agent bindings as NAME=personality pairs
// from AGENT_PLAYERS, e.g. "robo-duke=bold,robo-mouse=timid".
func agentConfigFromEnv() agents.Config {
	cfg := agents.Config{Players: map[string]string{}}
	raw := os.Getenv("AGENT_PLAYERS")
	if raw == "" {
		return cfg
	}
	for _, pair := range strings.Split(raw, ",") {
		name, personality, ok := strings.Cut(pair, "=")
		name, personality = strings.TrimSpace(name), strings.TrimSpace(personality)
		if ok && name != "" && personality != "" {
			cfg.Players[name] = personality
		}
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
