package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

const (
	consumerName          = "game-orchestrator"
	consumerMaxDeliver    = 5
	consumerAckWait       = 30 * time.Second
	consumerMaxAckPending = 100

	natsMaxReconnects = 10
	natsReconnectWait = 2 * time.Second

	eventChannelBufferSize = 64
)

// DomainEvent represents a domain event from JetStream
type DomainEvent struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	SessionID string          `json:"sessionId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// setupNATSConnection creates a NATS connection with JetStream
func setupNATSConnection(natsURL string) (*nats.Conn, jetstream.JetStream, error) {
	opts := []nats.Option{
		nats.MaxReconnects(natsMaxReconnects),
		nats.ReconnectWait(natsReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("create JetStream context: %w", err)
	}

	return nc, js, nil
}

// EventConsumer subscribes the scheduler to the game event stream so that
// gateway-driven lifecycle changes (start, resume, rematch) wake it without
// waiting for the idle poll.
type EventConsumer struct {
	orch     *Orchestrator
	nc       *nats.Conn
	js       jetstream.JetStream
	consumer jetstream.Consumer
}

// NewEventConsumer connects to NATS and binds a durable consumer on the
// game event stream.
func NewEventConsumer(ctx context.Context, orch *Orchestrator, natsURL string) (*EventConsumer, error) {
	nc, js, err := setupNATSConnection(natsURL)
	if err != nil {
		return nil, err
	}

	c := &EventConsumer{orch: orch, nc: nc, js: js}
	if err := c.ensureConsumer(ctx); err != nil {
		nc.Close()
		return nil, err
	}
	return c, nil
}

// ensureConsumer creates or gets the JetStream consumer
func (c *EventConsumer) ensureConsumer(ctx context.Context) error {
	stream, err := c.js.Stream(ctx, "GAME_EVENTS")
	if err != nil {
		return fmt.Errorf("get stream: %w", err)
	}

	consumerConfig := jetstream.ConsumerConfig{
		Name:          consumerName,
		Durable:       consumerName,
		Description:   "Game orchestrator event consumer",
		FilterSubject: "game.events.>",
		DeliverPolicy: jetstream.DeliverNewPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    consumerMaxDeliver,
		AckWait:       consumerAckWait,
		MaxAckPending: consumerMaxAckPending,
		ReplayPolicy:  jetstream.ReplayInstantPolicy,
	}

	// Try to get existing consumer
	consumer, err := stream.Consumer(ctx, consumerName)
	if err != nil {
		// Create new consumer
		consumer, err = stream.CreateConsumer(ctx, consumerConfig)
		if err != nil {
			return fmt.Errorf("create consumer: %w", err)
		}
		log.Info().Msg("created JetStream consumer for orchestrator")
	} else {
		log.Info().Msg("using existing JetStream consumer for orchestrator")
	}

	c.consumer = consumer
	return nil
}

// Run consumes events until the context is cancelled. It is meant to run
// alongside RunScheduler; the deadline loop does the actual work, the
// consumer only keeps it responsive.
func (c *EventConsumer) Run(ctx context.Context) error {
	eventCh := make(chan jetstream.Msg, eventChannelBufferSize)

	consumeCtx, err := c.consumer.Consume(func(msg jetstream.Msg) {
		select {
		case eventCh <- msg:
		case <-ctx.Done():
			msg.Nak()
		}
	})
	if err != nil {
		return fmt.Errorf("start JetStream consumer: %w", err)
	}
	defer consumeCtx.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("event consumer shutdown requested")
			return nil
		case msg := <-eventCh:
			if err := c.processEvent(ctx, msg); err != nil {
				log.Error().Err(err).Msg("failed to process event")
				msg.Nak()
			} else {
				msg.Ack()
			}
		}
	}
}

// processEvent processes a single JetStream event
func (c *EventConsumer) processEvent(ctx context.Context, msg jetstream.Msg) error {
	var event DomainEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	sessionID, err := uuid.Parse(event.SessionID)
	if err != nil {
		return fmt.Errorf("parse session ID: %w", err)
	}

	log.Debug().
		Str("subject", msg.Subject()).
		Str("session_id", event.SessionID).
		Str("event_type", event.EventType).
		Msg("processing orchestrator event")

	return c.orch.HandleDomainEvent(ctx, event.EventType, sessionID, event.Payload)
}

// Close gracefully closes the consumer connection.
func (c *EventConsumer) Close() error {
	if c.nc != nil {
		c.nc.Close()
	}
	return nil
}
