package telemetry

// Instrumentation scope and span names used by the mission core.
const (
	TracerName = "github.com/samirrijal/missionplanner"

	// Draw mode commands
	SpanStartMode       = "mission.start_mode"
	SpanCancelDrawing   = "mission.cancel_drawing"
	SpanCompleteGesture = "mission.complete_gesture"

	// Staging decisions
	SpanDiscardStaged = "mission.staging.discard"
	SpanImportStaged  = "mission.staging.import"
	SpanInsertStaged  = "mission.staging.insert"
)
