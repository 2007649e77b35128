package transcript

import "time"

// Event is one recorded line of a conversation: a user submission or an
// assistant turn. Events are appended in the order their transitions
// completed.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	ChatID    int64     `json:"chat_id"`
	Role      string    `json:"role"`
	Kind      string    `json:"kind"`
	Text      string    `json:"text"`
}

// Recorder persists conversation events. Implementations must be safe for
// concurrent use; Load returns events in chronological order.
type Recorder interface {
	Append(event Event) error
	Load() ([]Event, error)
}
