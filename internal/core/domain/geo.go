package domain

import (
	"encoding/json"
	"fmt"
)

// Coordinate is a longitude/latitude pair in degrees (WGS 84).
// It marshals as a [lon, lat] array, matching the map engine's geometry output.
type Coordinate struct {
	Lon float64
	Lat float64
}

// MarshalJSON encodes the coordinate as [lon, lat].
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lon, c.Lat})
}

// UnmarshalJSON decodes a [lon, lat] array.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) < 2 {
		return fmt.Errorf("coordinate needs lon and lat, got %d values", len(pair))
	}
	c.Lon, c.Lat = pair[0], pair[1]
	return nil
}

// String formats the coordinate the way the waypoint tables show it.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Lon, c.Lat)
}

// GeometryKind names the drawing gesture that produced a geometry.
type GeometryKind string

const (
	KindLine    GeometryKind = "line"
	KindPolygon GeometryKind = "polygon"
)

// ParseGeometryKind validates a kind received from a collaborator.
func ParseGeometryKind(s string) (GeometryKind, error) {
	switch GeometryKind(s) {
	case KindLine:
		return KindLine, nil
	case KindPolygon:
		return KindPolygon, nil
	}
	return "", fmt.Errorf("unknown geometry kind %q: %w", s, ErrInvalidOperation)
}
