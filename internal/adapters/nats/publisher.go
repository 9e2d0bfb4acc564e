package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/missionplanner/internal/core/domain"
	"github.com/samirrijal/missionplanner/internal/core/ports"
)

var (
	_ ports.EventPublisher = (*Publisher)(nil)
	_ ports.MapEngine      = (*Publisher)(nil)
)

// Publisher implements ports.EventPublisher and ports.MapEngine over NATS.
// Mission events go through JetStream so late WebSocket clients can replay
// the latest state; map commands are plain core NATS publishes.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:              "MISSION_EVENTS",
			Subjects:          []string{SubjectEventsAll},
			Retention:         nats.LimitsPolicy,
			MaxAge:            1 * time.Hour,
			MaxMsgsPerSubject: 1,
			Storage:           nats.MemoryStorage,
		},
		{
			Name:      "MISSION_GESTURES",
			Subjects:  []string{SubjectGestures},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    10 * time.Minute,
			Storage:   nats.MemoryStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

type modeEvent struct {
	From domain.DrawMode `json:"from"`
	To   domain.DrawMode `json:"to"`
}

type polygonEvent struct {
	Ring []domain.Coordinate `json:"ring"`
	Rows []domain.Row        `json:"rows"`
}

type lineEvent struct {
	Line *domain.RouteLine `json:"line"`
	Rows []domain.Row      `json:"rows"`
}

type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func (p *Publisher) PublishLineGestureDone(ctx context.Context, line *domain.RouteLine) error {
	return p.publishEvent(ctx, SubjectLineDone, "line_gesture_done", lineEvent{Line: line, Rows: line.Table()})
}

func (p *Publisher) PublishPolygonGestureDone(ctx context.Context, ring []domain.Coordinate) error {
	return p.publishEvent(ctx, SubjectPolygonStaged, "polygon_gesture_done", polygonEvent{Ring: ring, Rows: domain.DerivedTable(ring)})
}

func (p *Publisher) PublishModeChanged(ctx context.Context, from, to domain.DrawMode) error {
	return p.publishEvent(ctx, SubjectModeChanged, "mode_changed", modeEvent{From: from, To: to})
}

func (p *Publisher) PublishMissionChanged(ctx context.Context, snap *domain.Snapshot) error {
	return p.publishEvent(ctx, SubjectMissionChanged, "mission_changed", snap)
}

// ArmInteraction tells the map engine to enable the kind drawing interaction.
func (p *Publisher) ArmInteraction(ctx context.Context, kind domain.GeometryKind) error {
	return p.publishCommand(armSubject(kind), "arm", kind)
}

// DisarmInteraction tells the map engine to remove the kind drawing interaction.
func (p *Publisher) DisarmInteraction(ctx context.Context, kind domain.GeometryKind) error {
	return p.publishCommand(disarmSubject(kind), "disarm", kind)
}

func (p *Publisher) publishEvent(ctx context.Context, subject, event string, data any) error {
	payload, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		return err
	}
	_, err = p.js.PublishAsync(subject, payload)
	return err
}

func (p *Publisher) publishCommand(subject, action string, kind domain.GeometryKind) error {
	payload, err := json.Marshal(envelope{Event: action, Data: map[string]string{"kind": string(kind)}})
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, payload)
}

// Conn exposes the underlying connection for the WebSocket relay and readiness checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("missionplanner"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
