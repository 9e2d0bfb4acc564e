package domain

import "fmt"

// Position selects which side of the target vertex a ring is spliced on.
type Position string

const (
	Before Position = "before"
	After  Position = "after"
)

// ParsePosition validates a position received from the presentation layer.
func ParsePosition(s string) (Position, error) {
	switch Position(s) {
	case Before:
		return Before, nil
	case After:
		return After, nil
	}
	return "", fmt.Errorf("unknown position %q: %w", s, ErrInvalidOperation)
}

// Splice returns a new sequence with ring inserted before or after line[i].
// The ring is kept in the given order, closing vertex included. line is not
// modified.
func Splice(line []Coordinate, i int, ring []Coordinate, pos Position) ([]Coordinate, error) {
	if len(ring) == 0 {
		return nil, fmt.Errorf("empty ring: %w", ErrInvalidOperation)
	}
	if i < 0 || i >= len(line) {
		return nil, fmt.Errorf("vertex %d of %d: %w", i, len(line), ErrOutOfRange)
	}

	at := i
	switch pos {
	case Before:
	case After:
		at = i + 1
	default:
		return nil, fmt.Errorf("position %q: %w", pos, ErrInvalidOperation)
	}

	out := make([]Coordinate, 0, len(line)+len(ring))
	out = append(out, line[:at]...)
	out = append(out, ring...)
	out = append(out, line[at:]...)
	return out, nil
}
