package models

// EventKind tags the events a run emits. A run's events always form
// the order: one metadata, zero or more partials, one final, one end.
type EventKind string

const (
	EventMetadata EventKind = "metadata"
	EventPartial  EventKind = "partial"
	EventFinal    EventKind = "final"
	EventEnd      EventKind = "end"
)

// RunStatus is the status carried by metadata and end events.
type RunStatus string

const (
	StatusRunning RunStatus = "running"
	StatusSuccess RunStatus = "success"
	StatusError   RunStatus = "error"
)

// Event is one unit of run output. RunID and ThreadID are always set.
// Message is set on partial and final events; Status on metadata and
// end events; Error only on an end event with StatusError.
type Event struct {
	Kind        EventKind `json:"kind"`
	RunID       string    `json:"run_id"`
	ThreadID    string    `json:"thread_id"`
	AssistantID string    `json:"assistant_id,omitempty"`
	Message     *Message  `json:"message,omitempty"`
	Status      RunStatus `json:"status,omitempty"`
	Error       string    `json:"error,omitempty"`
}
