package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/Vampire-js/DAAVAT/internal/models"
)

// Type names a document lifecycle transition.
type Type string

const (
	DocumentCreated Type = "document.created"
	DocumentUpdated Type = "document.updated"
	DocumentRenamed Type = "document.renamed"
	DocumentDeleted Type = "document.deleted"
)

// DocumentEvent is published to kafka after every successful mutation so
// downstream consumers (cache invalidation, the summarization pipeline)
// can react without polling.
type DocumentEvent struct {
	EventID    uuid.UUID   `json:"eventId"`
	Type       Type        `json:"type"`
	DocumentID uuid.UUID   `json:"documentId"`
	Kind       models.Kind `json:"kind"`
	OwnerID    uuid.UUID   `json:"ownerId"`
	ActorID    uuid.UUID   `json:"actorId"`
	Timestamp  time.Time   `json:"timestamp"`
}

// NewDocumentEvent builds an event for a mutation performed by actorID.
func NewDocumentEvent(t Type, doc models.Document, actorID uuid.UUID) DocumentEvent {
	return DocumentEvent{
		EventID:    uuid.New(),
		Type:       t,
		DocumentID: doc.ID,
		Kind:       doc.Kind,
		OwnerID:    doc.UserID,
		ActorID:    actorID,
		Timestamp:  time.Now().UTC(),
	}
}
