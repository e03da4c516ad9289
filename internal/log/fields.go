package log

// Canonical field name constants for structured logging.
const (
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldRequestID = "request_id"

	// Media / playback fields
	FieldPath       = "path"
	FieldMode       = "mode"
	FieldCollection = "collection"
	FieldFPS        = "fps"
	FieldSlot       = "slot"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
)
