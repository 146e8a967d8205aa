package main

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/LaurentStar/hourly-coup/go/internal/agents"
	"github.com/LaurentStar/hourly-coup/go/internal/game/gateway"
	"github.com/LaurentStar/hourly-coup/go/internal/game/intake"
	"github.com/LaurentStar/hourly-coup/go/internal/game/orchestrator"
	"github.com/LaurentStar/hourly-coup/go/internal/game/outbox"
	"github.com/LaurentStar/hourly-coup/go/internal/game/resolve"
	"github.com/LaurentStar/hourly-coup/go/internal/game/session"
)

type Services struct {
	Sessions     *session.Service
	Intake       *intake.App
	Engine       *resolve.Engine
	Agents       *agents.Runner
	Orchestrator *orchestrator.Orchestrator
	Gateway      *gateway.Handler
}

func setupServices(pool *pgxpool.Pool, cfg *Config) *Services {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer → Service layer
	clock := clockwork.NewRealClock()

	repo := session.NewRepository(pool)
	outboxApp := outbox.NewApp(outbox.NewRepository(pool))

	sessionApp := session.NewApp(repo, clock)
	sessionService := session.NewService(sessionApp, outboxApp, clock)

	intakeApp := intake.NewApp(repo, clock)
	engine := resolve.NewEngine(repo)

	runner := agents.NewRunner(sessionService, intakeApp, cfg.AgentConfig())

	orch := orchestrator.NewOrchestrator(
		sessionService,
		intakeApp,
		engine,
		runner,
		outboxApp,
		int32(getEnvAsInt("SCHEDULER_BATCH_SIZE", 100)),
	)

	return &Services{
		Sessions:     sessionService,
		Intake:       intakeApp,
		Engine:       engine,
		Agents:       runner,
		Orchestrator: orch,
		Gateway:      gateway.NewHandler(sessionService, intakeApp),
	}
}
