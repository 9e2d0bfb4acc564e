package natsadapter

import "github.com/samirrijal/missionplanner/internal/core/domain"

// Subject layout shared with the browser map engine.
const (
	SubjectMapAll    = "mission.map.>"
	SubjectEventsAll = "mission.events.>"
	SubjectGestures  = "mission.gesture.>"

	SubjectLineDone       = "mission.events.line_done"
	SubjectPolygonStaged  = "mission.events.polygon_staged"
	SubjectModeChanged    = "mission.events.mode"
	SubjectMissionChanged = "mission.events.mission"
)

func armSubject(kind domain.GeometryKind) string {
	return "mission.map.arm." + string(kind)
}

func disarmSubject(kind domain.GeometryKind) string {
	return "mission.map.disarm." + string(kind)
}

// GestureSubject is where the map engine publishes a completed gesture of kind.
func GestureSubject(kind domain.GeometryKind) string {
	return "mission.gesture." + string(kind)
}
