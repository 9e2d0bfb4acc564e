package domain_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/paulmach/orb"

	"github.com/samirrijal/missionplanner/internal/core/domain"
)

func pts(pairs ...[2]float64) []domain.Coordinate {
	out := make([]domain.Coordinate, len(pairs))
	for i, p := range pairs {
		out[i] = domain.Coordinate{Lon: p[0], Lat: p[1]}
	}
	return out
}

func TestSplice(t *testing.T) {
	line := pts([2]float64{0, 0}, [2]float64{1, 1}, [2]float64{2, 2})
	ring := pts([2]float64{9, 9}, [2]float64{9, 10})

	tests := []struct {
		name  string
		index int
		pos   domain.Position
		want  []domain.Coordinate
	}{
		{"before middle", 1, domain.Before,
			pts([2]float64{0, 0}, [2]float64{9, 9}, [2]float64{9, 10}, [2]float64{1, 1}, [2]float64{2, 2})},
		{"after middle", 1, domain.After,
			pts([2]float64{0, 0}, [2]float64{1, 1}, [2]float64{9, 9}, [2]float64{9, 10}, [2]float64{2, 2})},
		{"before first", 0, domain.Before,
			pts([2]float64{9, 9}, [2]float64{9, 10}, [2]float64{0, 0}, [2]float64{1, 1}, [2]float64{2, 2})},
		{"after last", 2, domain.After,
			pts([2]float64{0, 0}, [2]float64{1, 1}, [2]float64{2, 2}, [2]float64{9, 9}, [2]float64{9, 10})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.Splice(line, tt.index, ring, tt.pos)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if len(got) != len(line)+len(ring) {
				t.Errorf("expected length %d, got %d", len(line)+len(ring), len(got))
			}
		})
	}

	if len(line) != 3 || line[1] != (domain.Coordinate{Lon: 1, Lat: 1}) {
		t.Errorf("input line was modified: %v", line)
	}
}

func TestSplice_Errors(t *testing.T) {
	line := pts([2]float64{0, 0}, [2]float64{1, 1}, [2]float64{2, 2})
	ring := pts([2]float64{9, 9})

	if _, err := domain.Splice(line, 99, ring, domain.Before); !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("index 99: expected ErrOutOfRange, got %v", err)
	}
	if _, err := domain.Splice(line, -1, ring, domain.After); !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("index -1: expected ErrOutOfRange, got %v", err)
	}
	if _, err := domain.Splice(line, 0, nil, domain.Before); !errors.Is(err, domain.ErrInvalidOperation) {
		t.Errorf("empty ring: expected ErrInvalidOperation, got %v", err)
	}
	if _, err := domain.Splice(line, 0, ring, "sideways"); !errors.Is(err, domain.ErrInvalidOperation) {
		t.Errorf("bad position: expected ErrInvalidOperation, got %v", err)
	}
	if _, err := domain.Splice(nil, 0, ring, domain.Before); !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("empty line: expected ErrOutOfRange, got %v", err)
	}
}

func TestRouteCollection_InsertAtLeavesOtherLines(t *testing.T) {
	var rc domain.RouteCollection
	a := rc.AddLine(pts([2]float64{0, 0}, [2]float64{1, 1}))
	b := rc.AddLine(pts([2]float64{5, 5}, [2]float64{6, 6}, [2]float64{7, 7}))
	if a != 0 || b != 1 {
		t.Fatalf("ids should follow creation order, got %d, %d", a, b)
	}

	if err := rc.InsertAt(b, 0, pts([2]float64{9, 9}, [2]float64{9, 10}), domain.After); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := rc.Lines()
	if len(lines[0].Coordinates) != 2 || len(lines[1].Coordinates) != 5 {
		t.Errorf("unexpected lengths %d, %d", len(lines[0].Coordinates), len(lines[1].Coordinates))
	}

	if err := rc.InsertAt(7, 0, pts([2]float64{1, 1}), domain.After); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := rc.InsertAt(a, 99, pts([2]float64{1, 1}), domain.Before); !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if got := rc.Lines()[0].Coordinates; len(got) != 2 {
		t.Errorf("failed insert mutated line: %v", got)
	}
}

func TestRouteCollection_ReadsAreCopies(t *testing.T) {
	var rc domain.RouteCollection
	src := pts([2]float64{0, 0}, [2]float64{1, 1})
	id := rc.AddLine(src)
	src[0].Lon = 42

	l, err := rc.Line(id)
	if err != nil {
		t.Fatal(err)
	}
	l.Coordinates[1].Lat = 42

	again, _ := rc.Line(id)
	if again.Coordinates[0].Lon != 0 || again.Coordinates[1].Lat != 1 {
		t.Errorf("collection shares storage with callers: %v", again.Coordinates)
	}
}

func TestRouteCollection_EmptyLine(t *testing.T) {
	var rc domain.RouteCollection
	id := rc.AddLine(nil)
	rows, err := rc.DerivedTable(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestDerivedTable(t *testing.T) {
	rows := domain.DerivedTable(pts([2]float64{0, 0}, [2]float64{0, 1}))
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Label != "00" || rows[1].Label != "01" {
		t.Errorf("labels = %q, %q", rows[0].Label, rows[1].Label)
	}
	if rows[1].Coordinates != "0.000000, 1.000000" {
		t.Errorf("coordinates = %q", rows[1].Coordinates)
	}
	if rows[0].Distance != "--" || rows[1].Distance != "111194.93" {
		t.Errorf("distances = %q, %q", rows[0].Distance, rows[1].Distance)
	}
	if rows[0].Waypoint != "" {
		t.Errorf("staging rows carry no waypoint label")
	}
}

func TestPolygonStaging(t *testing.T) {
	var ps domain.PolygonStaging
	if !ps.Empty() || len(ps.Table()) != 0 {
		t.Fatal("new staging must be empty")
	}
	ps.Stage(pts([2]float64{1, 1}, [2]float64{2, 2}))
	ps.Stage(pts([2]float64{3, 3}))
	if got := ps.Ring(); len(got) != 1 || got[0].Lon != 3 {
		t.Errorf("stage must replace the ring, got %v", got)
	}
	ps.Clear()
	if !ps.Empty() {
		t.Error("expected empty after clear")
	}
}

func TestGestureCoordinates(t *testing.T) {
	kind, coords, err := domain.GestureCoordinates(orb.LineString{{0, 0}, {1, 2}})
	if err != nil || kind != domain.KindLine || len(coords) != 2 || coords[1].Lat != 2 {
		t.Errorf("line: %v %v %v", kind, coords, err)
	}

	poly := orb.Polygon{
		{{0, 0}, {4, 0}, {4, 4}, {0, 0}},
		{{1, 1}, {2, 1}, {2, 2}, {1, 1}},
	}
	kind, coords, err = domain.GestureCoordinates(poly)
	if err != nil || kind != domain.KindPolygon {
		t.Fatalf("polygon: %v %v", kind, err)
	}
	if len(coords) != 4 || coords[1] != (domain.Coordinate{Lon: 4, Lat: 0}) {
		t.Errorf("expected outer ring only, got %v", coords)
	}

	kind, coords, err = domain.GestureCoordinates(orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 0}})
	if err != nil || kind != domain.KindPolygon || len(coords) != 4 || coords[2] != (domain.Coordinate{Lon: 1, Lat: 1}) {
		t.Errorf("ring: %v %v %v", kind, coords, err)
	}

	if _, _, err := domain.GestureCoordinates(nil); !errors.Is(err, domain.ErrInvalidOperation) {
		t.Errorf("nil: expected ErrInvalidOperation, got %v", err)
	}

	if _, _, err := domain.GestureCoordinates(orb.Point{1, 1}); !errors.Is(err, domain.ErrInvalidOperation) {
		t.Errorf("point: expected ErrInvalidOperation, got %v", err)
	}
}

func TestCoordinateJSON(t *testing.T) {
	data, err := json.Marshal(domain.Coordinate{Lon: -2.935, Lat: 43.263})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[-2.935,43.263]" {
		t.Errorf("unexpected encoding %s", data)
	}

	var c domain.Coordinate
	if err := json.Unmarshal([]byte("[1.5, 2.5]"), &c); err != nil || c.Lon != 1.5 || c.Lat != 2.5 {
		t.Errorf("decode: %+v %v", c, err)
	}
	if err := json.Unmarshal([]byte("[1]"), &c); err == nil {
		t.Error("expected error for a single value")
	}
}

func TestParsers(t *testing.T) {
	if p, err := domain.ParsePosition("after"); err != nil || p != domain.After {
		t.Errorf("ParsePosition(after) = %v, %v", p, err)
	}
	if _, err := domain.ParsePosition("middle"); !errors.Is(err, domain.ErrInvalidOperation) {
		t.Errorf("expected ErrInvalidOperation, got %v", err)
	}
	if k, err := domain.ParseGeometryKind("polygon"); err != nil || k != domain.KindPolygon {
		t.Errorf("ParseGeometryKind(polygon) = %v, %v", k, err)
	}
	if _, err := domain.ParseGeometryKind("circle"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestDecodeGesture(t *testing.T) {
	kind, coords, err := domain.DecodeGesture([]byte(`{"type":"LineString","coordinates":[[0,0],[0,1]]}`))
	if err != nil || kind != domain.KindLine || len(coords) != 2 {
		t.Errorf("geometry: %v %v %v", kind, coords, err)
	}

	feature := `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}`
	kind, coords, err = domain.DecodeGesture([]byte(feature))
	if err != nil || kind != domain.KindPolygon || len(coords) != 4 {
		t.Errorf("feature: %v %v %v", kind, coords, err)
	}

	if _, _, err := domain.DecodeGesture([]byte(`not json`)); err == nil {
		t.Error("expected decode error")
	}
}
