package ports

import (
	"context"

	"github.com/samirrijal/missionplanner/internal/core/domain"
)

// MapEngine arms and disarms drawing interactions on the map collaborator.
type MapEngine interface {
	ArmInteraction(ctx context.Context, kind domain.GeometryKind) error
	DisarmInteraction(ctx context.Context, kind domain.GeometryKind) error
}

// EventPublisher notifies the presentation layer of mission events.
type EventPublisher interface {
	PublishLineGestureDone(ctx context.Context, line *domain.RouteLine) error
	PublishPolygonGestureDone(ctx context.Context, ring []domain.Coordinate) error
	PublishModeChanged(ctx context.Context, from, to domain.DrawMode) error
	PublishMissionChanged(ctx context.Context, snap *domain.Snapshot) error
}

// GestureSubscriber delivers completed gestures from the map collaborator.
type GestureSubscriber interface {
	SubscribeGestures(ctx context.Context, handler func(ctx context.Context, kind domain.GeometryKind, coords []domain.Coordinate) error) error
}
