// Package events publishes file and share lifecycle events. Publishing is best-effort:
// a broker outage never fails the request that produced the event.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	FileUploaded     = "file.uploaded"
	FileDeleted      = "file.deleted"
	FileRestored     = "file.restored"
	FilePurged       = "file.purged"
	ShareCreated     = "share.created"
	ShareDeactivated = "share.deactivated"
)

// Event is the JSON body of a published message. Type doubles as the routing key.
type Event struct {
	ID         uuid.UUID      `json:"eventId"`
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurredAt"`
	OwnerID    string         `json:"ownerId"`
	SubjectID  string         `json:"subjectId"`
	Data       map[string]any `json:"data,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType, ownerID, subjectID string, data map[string]any) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		OwnerID:    ownerID,
		SubjectID:  subjectID,
		Data:       data,
	}
}

// Publisher accepts events without blocking the caller.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
