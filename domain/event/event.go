package event

import (
	"encoding/json"
	"time"

	"roomhub/domain"

	"github.com/google/uuid"
)

// Event is one unit of broadcast content. Room and SenderName are resolved
// from the registry at enqueue time, never supplied by the producer, so an
// authenticated HTTP caller cannot spoof another sender's identity.
// An event is consumed exactly once by the drain loop and then discarded.
type Event struct {
	ID           uuid.UUID
	Kind         domain.Kind
	Room         domain.RoomID
	SenderHandle domain.Handle
	SenderName   string
	Payload      any
	EnqueuedAt   time.Time
}

// envelope is the delivery wire form, one JSON object per event.
// The payload field is always present: null when the event carries none.
type envelope struct {
	EventKind         domain.Kind   `json:"eventKind"`
	Room              domain.RoomID `json:"room"`
	SenderHandle      domain.Handle `json:"senderHandle"`
	SenderDisplayName string        `json:"senderDisplayName"`
	Payload           any           `json:"payload"`
	EnqueuedAt        time.Time     `json:"enqueuedAt"`
}

// Encode serializes the event into its delivery frame.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(envelope{
		EventKind:         e.Kind,
		Room:              e.Room,
		SenderHandle:      e.SenderHandle,
		SenderDisplayName: e.SenderName,
		Payload:           e.Payload,
		EnqueuedAt:        e.EnqueuedAt,
	})
}
