package domain

// DrawMode is the single drawing gesture the map surface currently accepts.
type DrawMode string

const (
	ModeIdle           DrawMode = "idle"
	ModeDrawingLine    DrawMode = "drawing_line"
	ModeDrawingPolygon DrawMode = "drawing_polygon"
)

// ArmedKind returns the interaction armed in this mode. ok is false when idle.
func (m DrawMode) ArmedKind() (kind GeometryKind, ok bool) {
	switch m {
	case ModeDrawingLine:
		return KindLine, true
	case ModeDrawingPolygon:
		return KindPolygon, true
	}
	return "", false
}

// ModeFor returns the drawing mode that arms kind.
func ModeFor(kind GeometryKind) DrawMode {
	if kind == KindPolygon {
		return ModeDrawingPolygon
	}
	return ModeDrawingLine
}

// Snapshot is a read-only view of the whole mission state.
type Snapshot struct {
	Mode        DrawMode   `json:"mode"`
	Lines       []LineView `json:"lines"`
	Staging     []Row      `json:"staging"`
	StagingOpen bool       `json:"staging_open"`
}

// LineView is a line's derived table plus its total length.
type LineView struct {
	ID      int    `json:"id"`
	Rows    []Row  `json:"rows"`
	LengthM string `json:"length_m"`
}
