package pipeline

// EventType tags a progress event.
type EventType string

const (
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Event is one server-push message for a streaming run. One progress event
// is emitted per completed stage; a complete or error event terminates the
// stream.
type Event struct {
	Type    EventType `json:"type"`
	Step    string    `json:"step,omitempty"`
	Percent int       `json:"percent,omitempty"`
	Details string    `json:"details,omitempty"`
	Data    *Response `json:"data,omitempty"`
	Message string    `json:"message,omitempty"`
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}
