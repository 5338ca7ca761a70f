package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType names the event a log line records, e.g. "cache_record_corrupt".
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to try next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldSessionID identifies one player process in aggregated logs.
	FieldSessionID = "session_id"
	// FieldTrack is the file path of the track a line refers to.
	FieldTrack = "track"
	// FieldIndex is the playlist index of the track a line refers to.
	FieldIndex = "index"
	// FieldFingerprint is the embedding cache key of a track.
	FieldFingerprint = "fingerprint"
	// FieldCommand is the player command being handled.
	FieldCommand = "command"
	// FieldProgressPercent is the completion percentage of a long-running step.
	FieldProgressPercent = "progress_percent"
)
