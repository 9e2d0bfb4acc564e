package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/missionplanner/internal/core/domain"
	"github.com/samirrijal/missionplanner/internal/core/ports"
	"github.com/samirrijal/missionplanner/internal/pkg/geospatial"
	"github.com/samirrijal/missionplanner/internal/pkg/metrics"
	"github.com/samirrijal/missionplanner/internal/pkg/telemetry"
)

// MissionService owns the route collection, the polygon staging area and the
// draw mode. Every command and read runs under one lock, so each logical
// event is a single critical section.
type MissionService struct {
	mu      sync.Mutex
	mode    domain.DrawMode
	routes  domain.RouteCollection
	staging domain.PolygonStaging

	engine    ports.MapEngine
	publisher ports.EventPublisher
	tracer    trace.Tracer
}

// NewMissionService creates an idle MissionService. engine and publisher may
// be nil, in which case arming and event delivery are skipped.
func NewMissionService(engine ports.MapEngine, publisher ports.EventPublisher) *MissionService {
	return &MissionService{
		mode:      domain.ModeIdle,
		engine:    engine,
		publisher: publisher,
		tracer:    otel.Tracer(telemetry.TracerName),
	}
}

// StartLineMode arms the line-drawing interaction.
func (s *MissionService) StartLineMode(ctx context.Context) error {
	return s.startMode(ctx, domain.KindLine)
}

// StartPolygonMode arms the polygon-drawing interaction.
func (s *MissionService) StartPolygonMode(ctx context.Context) error {
	return s.startMode(ctx, domain.KindPolygon)
}

func (s *MissionService) startMode(ctx context.Context, kind domain.GeometryKind) error {
	ctx, span := s.tracer.Start(ctx, telemetry.SpanStartMode,
		trace.WithAttributes(attribute.String("kind", string(kind))))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	target := domain.ModeFor(kind)
	switch s.mode {
	case target:
		return nil
	case domain.ModeIdle:
	default:
		return s.fail(span, "start_mode",
			fmt.Errorf("start %s drawing while %s: %w", kind, s.mode, domain.ErrInvalidOperation))
	}

	if s.engine != nil {
		if err := s.engine.ArmInteraction(ctx, kind); err != nil {
			return s.fail(span, "start_mode", fmt.Errorf("arm %s interaction: %w", kind, err))
		}
	}
	s.setMode(ctx, target)
	return nil
}

// CancelDrawing disarms the armed interaction, if any, and returns to idle.
func (s *MissionService) CancelDrawing(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, telemetry.SpanCancelDrawing)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	kind, armed := s.mode.ArmedKind()
	if !armed {
		return nil
	}
	if s.engine != nil {
		if err := s.engine.DisarmInteraction(ctx, kind); err != nil {
			return s.fail(span, "cancel_drawing", fmt.Errorf("disarm %s interaction: %w", kind, err))
		}
	}
	s.setMode(ctx, domain.ModeIdle)
	return nil
}

// CompleteGesture applies a finished gesture from the map engine. The kind
// must match the armed interaction. A line becomes a new route line; a
// polygon ring replaces the staging area and opens the decision view.
func (s *MissionService) CompleteGesture(ctx context.Context, kind domain.GeometryKind, coords []domain.Coordinate) error {
	ctx, span := s.tracer.Start(ctx, telemetry.SpanCompleteGesture, trace.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.Int("vertices", len(coords)),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	armed, ok := s.mode.ArmedKind()
	if !ok || armed != kind {
		return s.fail(span, "complete_gesture",
			fmt.Errorf("%s gesture while %s: %w", kind, s.mode, domain.ErrInvalidOperation))
	}

	if s.engine != nil {
		// The gesture already happened on the map, so it is applied even if
		// the engine fails to acknowledge the disarm.
		if err := s.engine.DisarmInteraction(ctx, kind); err != nil {
			slog.WarnContext(ctx, "disarm after gesture failed", "kind", kind, "error", err)
		}
	}
	s.setMode(ctx, domain.ModeIdle)

	metrics.GesturesCompleted.WithLabelValues(string(kind)).Inc()
	metrics.GestureVertices.WithLabelValues(string(kind)).Observe(float64(len(coords)))

	switch kind {
	case domain.KindLine:
		id := s.routes.AddLine(coords)
		line, _ := s.routes.Line(id)
		span.SetAttributes(attribute.Int("line_id", id))
		s.publish(ctx, "line_gesture_done", func(p ports.EventPublisher) error {
			return p.PublishLineGestureDone(ctx, &line)
		})
	case domain.KindPolygon:
		// An empty polygon stages nothing and keeps any ring already staged.
		if len(coords) == 0 {
			break
		}
		s.staging.Stage(coords)
		ring := s.staging.Ring()
		s.publish(ctx, "polygon_gesture_done", func(p ports.EventPublisher) error {
			return p.PublishPolygonGestureDone(ctx, ring)
		})
	}
	s.missionChanged(ctx)
	return nil
}

// DiscardStagedPolygon drops the staged polygon. It is a no-op when nothing
// is staged.
func (s *MissionService) DiscardStagedPolygon(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, telemetry.SpanDiscardStaged)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.staging.Empty() {
		return
	}
	s.staging.Clear()
	metrics.PolygonDecisions.WithLabelValues("discard").Inc()
	s.missionChanged(ctx)
}

// ImportStagedPolygon appends the staged ring as a new route line and clears
// the staging area. It returns nil without error when nothing is staged.
func (s *MissionService) ImportStagedPolygon(ctx context.Context) (*domain.RouteLine, error) {
	ctx, span := s.tracer.Start(ctx, telemetry.SpanImportStaged)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.staging.Empty() {
		return nil, nil
	}
	id := s.routes.AddLine(s.staging.Ring())
	s.staging.Clear()
	metrics.PolygonDecisions.WithLabelValues("import").Inc()
	span.SetAttributes(attribute.Int("line_id", id))

	line, err := s.routes.Line(id)
	if err != nil {
		return nil, err
	}
	s.missionChanged(ctx)
	return &line, nil
}

// InsertStagedPolygon splices the staged ring into line lineID before or
// after vertexIndex and clears the staging area. With nothing staged it
// fails with ErrInvalidOperation; on any error the mission is unchanged.
func (s *MissionService) InsertStagedPolygon(ctx context.Context, lineID, vertexIndex int, pos domain.Position) error {
	ctx, span := s.tracer.Start(ctx, telemetry.SpanInsertStaged, trace.WithAttributes(
		attribute.Int("line_id", lineID),
		attribute.Int("vertex_index", vertexIndex),
		attribute.String("position", string(pos)),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.staging.Empty() {
		return s.fail(span, "insert_staged",
			fmt.Errorf("no staged polygon: %w", domain.ErrInvalidOperation))
	}
	if err := s.routes.InsertAt(lineID, vertexIndex, s.staging.Ring(), pos); err != nil {
		return s.fail(span, "insert_staged", err)
	}
	s.staging.Clear()
	metrics.PolygonInsertions.WithLabelValues(string(pos)).Inc()
	metrics.PolygonDecisions.WithLabelValues("insert").Inc()
	s.missionChanged(ctx)
	return nil
}

// Mode returns the current draw mode.
func (s *MissionService) Mode() domain.DrawMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// StagingOpen reports whether the polygon decision view should be shown.
func (s *MissionService) StagingOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.staging.Empty()
}

// Lines returns copies of all route lines.
func (s *MissionService) Lines() []domain.RouteLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.routes.Lines()
}

// LineTable returns the derived distance table of one line.
func (s *MissionService) LineTable(lineID int) ([]domain.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.routes.DerivedTable(lineID)
}

// StagingTable returns the derived distance table of the staged ring.
func (s *MissionService) StagingTable() []domain.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staging.Table()
}

// Snapshot returns the full mission view.
func (s *MissionService) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *MissionService) snapshotLocked() domain.Snapshot {
	lines := s.routes.Lines()
	views := make([]domain.LineView, len(lines))
	for i, l := range lines {
		views[i] = domain.LineView{
			ID:      l.ID,
			Rows:    l.Table(),
			LengthM: geospatial.FormatMeters(l.Length()),
		}
	}
	return domain.Snapshot{
		Mode:        s.mode,
		Lines:       views,
		Staging:     s.staging.Table(),
		StagingOpen: !s.staging.Empty(),
	}
}

func (s *MissionService) setMode(ctx context.Context, to domain.DrawMode) {
	from := s.mode
	s.mode = to
	metrics.ModeTransitions.WithLabelValues(string(from), string(to)).Inc()
	s.publish(ctx, "mode_changed", func(p ports.EventPublisher) error {
		return p.PublishModeChanged(ctx, from, to)
	})
}

func (s *MissionService) missionChanged(ctx context.Context) {
	metrics.RouteLines.Set(float64(s.routes.Len()))
	if s.publisher == nil {
		return
	}
	snap := s.snapshotLocked()
	s.publish(ctx, "mission_changed", func(p ports.EventPublisher) error {
		return p.PublishMissionChanged(ctx, &snap)
	})
}

// publish delivers an event best effort; the presentation layer can always
// re-read the projections.
func (s *MissionService) publish(ctx context.Context, event string, fn func(ports.EventPublisher) error) {
	if s.publisher == nil {
		return
	}
	if err := fn(s.publisher); err != nil {
		slog.DebugContext(ctx, "publish event failed", "event", event, "error", err)
	}
}

func (s *MissionService) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	metrics.CommandErrors.WithLabelValues(op, ErrorKind(err)).Inc()
	return err
}

// ErrorKind classifies an error into the mission error taxonomy.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, domain.ErrInvalidOperation):
		return "invalid_operation"
	}
	return "collaborator"
}
