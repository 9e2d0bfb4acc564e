package domain

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/samirrijal/missionplanner/internal/pkg/geospatial"
)

// RouteLine is one drawn polyline. Leg distances are never stored: they are
// derived from Coordinates on every read.
type RouteLine struct {
	ID          int          `json:"id"`
	Coordinates []Coordinate `json:"coordinates"`
}

// LineString converts the line into an orb geometry.
func (l RouteLine) LineString() orb.LineString {
	return toLineString(l.Coordinates)
}

// Row is one waypoint of a derived distance table.
type Row struct {
	Index       int        `json:"index"`
	Label       string     `json:"label"`              // zero-padded index, e.g. "07"
	Waypoint    string     `json:"waypoint,omitempty"` // "<line>-<row>" in mission tables
	Coordinate  Coordinate `json:"coordinate"`
	Coordinates string     `json:"coordinates"` // "lon, lat" with six decimals
	Distance    string     `json:"distance"`    // meters from previous waypoint, or "--"
}

// DerivedTable joins coordinates with their leg distances.
func DerivedTable(coords []Coordinate) []Row {
	distances := geospatial.ComputeDistances(toLineString(coords))
	rows := make([]Row, len(coords))
	for i, c := range coords {
		rows[i] = Row{
			Index:       i,
			Label:       fmt.Sprintf("%02d", i),
			Coordinate:  c,
			Coordinates: c.String(),
			Distance:    distances[i],
		}
	}
	return rows
}

// Table returns the line's derived table with mission waypoint labels.
func (l RouteLine) Table() []Row {
	rows := DerivedTable(l.Coordinates)
	for i := range rows {
		rows[i].Waypoint = fmt.Sprintf("%d-%d", l.ID, i)
	}
	return rows
}

// Length returns the total path length in meters.
func (l RouteLine) Length() float64 {
	return geospatial.PathLength(l.LineString())
}

// RouteCollection holds lines in creation order. A line's ID is its index.
type RouteCollection struct {
	lines []RouteLine
}

// AddLine appends a new line and returns its ID. An empty sequence is accepted.
func (rc *RouteCollection) AddLine(coords []Coordinate) int {
	id := len(rc.lines)
	rc.lines = append(rc.lines, RouteLine{ID: id, Coordinates: cloneCoords(coords)})
	return id
}

// Len returns the number of lines.
func (rc *RouteCollection) Len() int {
	return len(rc.lines)
}

// Line returns a copy of the line with the given ID.
func (rc *RouteCollection) Line(id int) (RouteLine, error) {
	if id < 0 || id >= len(rc.lines) {
		return RouteLine{}, fmt.Errorf("line %d: %w", id, ErrNotFound)
	}
	l := rc.lines[id]
	return RouteLine{ID: l.ID, Coordinates: cloneCoords(l.Coordinates)}, nil
}

// Lines returns copies of all lines in creation order.
func (rc *RouteCollection) Lines() []RouteLine {
	out := make([]RouteLine, len(rc.lines))
	for i, l := range rc.lines {
		out[i] = RouteLine{ID: l.ID, Coordinates: cloneCoords(l.Coordinates)}
	}
	return out
}

// DerivedTable returns the distance table for one line.
func (rc *RouteCollection) DerivedTable(id int) ([]Row, error) {
	l, err := rc.Line(id)
	if err != nil {
		return nil, err
	}
	return l.Table(), nil
}

// InsertAt splices coords into line id around vertexIndex. On error the
// collection is left untouched.
func (rc *RouteCollection) InsertAt(id, vertexIndex int, coords []Coordinate, pos Position) error {
	if id < 0 || id >= len(rc.lines) {
		return fmt.Errorf("line %d: %w", id, ErrNotFound)
	}
	merged, err := Splice(rc.lines[id].Coordinates, vertexIndex, coords, pos)
	if err != nil {
		return fmt.Errorf("line %d: %w", id, err)
	}
	rc.lines[id].Coordinates = merged
	return nil
}

// PolygonStaging holds at most one polygon ring awaiting a decision.
type PolygonStaging struct {
	ring []Coordinate
}

// Stage replaces any pending ring.
func (ps *PolygonStaging) Stage(ring []Coordinate) {
	ps.ring = cloneCoords(ring)
}

// Clear drops the pending ring, if any.
func (ps *PolygonStaging) Clear() {
	ps.ring = nil
}

// Empty reports whether nothing is staged.
func (ps *PolygonStaging) Empty() bool {
	return len(ps.ring) == 0
}

// Ring returns a copy of the staged ring.
func (ps *PolygonStaging) Ring() []Coordinate {
	return cloneCoords(ps.ring)
}

// Table returns the staged ring's derived table.
func (ps *PolygonStaging) Table() []Row {
	return DerivedTable(ps.ring)
}

func toLineString(coords []Coordinate) orb.LineString {
	ls := make(orb.LineString, len(coords))
	for i, c := range coords {
		ls[i] = orb.Point{c.Lon, c.Lat}
	}
	return ls
}

func cloneCoords(coords []Coordinate) []Coordinate {
	if coords == nil {
		return nil
	}
	return append([]Coordinate(nil), coords...)
}
