package domain

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DecodeGesture parses a GeoJSON Geometry or Feature as written by the map
// engine on draw end and extracts its vertices.
func DecodeGesture(data []byte) (GeometryKind, []Coordinate, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", nil, fmt.Errorf("decode geojson: %w", err)
	}

	if head.Type == "Feature" {
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return "", nil, fmt.Errorf("decode feature: %w", err)
		}
		return GestureCoordinates(f.Geometry)
	}

	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return "", nil, fmt.Errorf("decode geometry: %w", err)
	}
	return GestureCoordinates(g.Geometry())
}

// GestureCoordinates extracts the vertex sequence of a completed gesture.
// Line gestures yield the LineString as drawn; polygon gestures yield the
// outer ring only, holes are dropped.
func GestureCoordinates(g orb.Geometry) (GeometryKind, []Coordinate, error) {
	switch geom := g.(type) {
	case orb.LineString:
		return KindLine, fromPoints(geom), nil
	case orb.Polygon:
		if len(geom) == 0 {
			return KindPolygon, nil, nil
		}
		return KindPolygon, fromPoints(geom[0]), nil
	case orb.Ring:
		return KindPolygon, fromPoints(geom), nil
	case nil:
		return "", nil, fmt.Errorf("missing geometry: %w", ErrInvalidOperation)
	}
	return "", nil, fmt.Errorf("unsupported geometry %s: %w", g.GeoJSONType(), ErrInvalidOperation)
}

func fromPoints(points []orb.Point) []Coordinate {
	coords := make([]Coordinate, len(points))
	for i, p := range points {
		coords[i] = Coordinate{Lon: p.Lon(), Lat: p.Lat()}
	}
	return coords
}
