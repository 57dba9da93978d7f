package store

import (
	"context"

	"github.com/samrosenbaum/v0-cracker-sub007/internal/model"
)

// DocumentStore supplies raw documents for a case. Read-only to the
// engines: ListDocuments is called once per session creation and its
// order fixes the work queue order.
type DocumentStore interface {
	// ListDocuments returns all document references for a case, in stable
	// discovery order.
	ListDocuments(ctx context.Context, caseID string) ([]model.DocumentRef, error)

	// GetDocument resolves a reference into a full document.
	GetDocument(ctx context.Context, ref model.DocumentRef) (model.Document, error)
}

// StatementStore is the append-only record of extracted statements.
// Statements are immutable once appended; implementations must return
// copies so callers cannot mutate stored records.
type StatementStore interface {
	// Append persists newly extracted statements. Never overwrites.
	Append(ctx context.Context, statements []model.Statement) error

	// Get returns one statement by id.
	Get(ctx context.Context, id string) (model.Statement, error)

	// ListByPerson returns all statements for a person in a case, in
	// timestamp order (statement id breaks ties).
	ListByPerson(ctx context.Context, caseID, personID string) ([]model.Statement, error)

	// ListByTopic returns the person's statements that contain at least
	// one claim on the given topic, in timestamp order (statement id
	// breaks ties).
	ListByTopic(ctx context.Context, caseID, personID, topic string) ([]model.Statement, error)
}
