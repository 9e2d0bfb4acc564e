package natsadapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/missionplanner/internal/core/domain"
	"github.com/samirrijal/missionplanner/internal/core/ports"
)

var _ ports.GestureSubscriber = (*Subscriber)(nil)

// Subscriber implements ports.GestureSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber on its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeGestures consumes completed gestures published by the map engine
// on mission.gesture.<kind>. Gestures the core rejects are terminated, not
// redelivered: replaying a rejected command cannot succeed.
func (s *Subscriber) SubscribeGestures(ctx context.Context, handler func(ctx context.Context, kind domain.GeometryKind, coords []domain.Coordinate) error) error {
	sub, err := s.js.Subscribe(SubjectGestures, func(msg *nats.Msg) {
		if err := handleGesture(ctx, msg.Subject, msg.Data, handler); err != nil {
			slog.WarnContext(ctx, "gesture rejected", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("gesture-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func handleGesture(ctx context.Context, subject string, data []byte, handler func(ctx context.Context, kind domain.GeometryKind, coords []domain.Coordinate) error) error {
	want, err := domain.ParseGeometryKind(strings.TrimPrefix(subject, "mission.gesture."))
	if err != nil {
		return err
	}
	kind, coords, err := domain.DecodeGesture(data)
	if err != nil {
		return err
	}
	if kind != want {
		return fmt.Errorf("%s geometry on %s: %w", kind, subject, domain.ErrInvalidOperation)
	}
	return handler(ctx, kind, coords)
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
