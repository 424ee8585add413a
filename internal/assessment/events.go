package assessment

// EventType tags a session transition for the UI layer.
type EventType string

const (
	EventFieldChange       EventType = "field_change"
	EventFieldBlur         EventType = "field_blur"
	EventValidationError   EventType = "validation_error"
	EventSectionChange     EventType = "section_change"
	EventSubmissionStart   EventType = "submission_start"
	EventSubmissionSuccess EventType = "submission_success"
	EventSubmissionError   EventType = "submission_error"
	EventAutoSave          EventType = "auto_save"
)

// Event is emitted on every session transition so the UI layer can
// observe without polling.
type Event struct {
	Type       EventType `json:"type"`
	SessionID  string    `json:"session_id"`
	QuestionID string    `json:"question_id,omitempty"`
	Section    int       `json:"section,omitempty"`
	Message    string    `json:"message,omitempty"`
	At         int64     `json:"at"`
}

// EventSink receives session events. Sinks must not call back into
// the session; they run synchronously on the transition path.
type EventSink func(Event)
