package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/samrosenbaum/v0-cracker-sub007/internal/model"
)

// MemoryDocumentStore holds documents in memory, keyed by case.
// Used by tests and by callers that assemble cases programmatically.
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	refs map[string][]model.DocumentRef // caseID -> refs in add order
	docs map[string]model.Document      // document id -> document
}

// NewMemoryDocumentStore creates an empty in-memory document store
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		refs: make(map[string][]model.DocumentRef),
		docs: make(map[string]model.Document),
	}
}

// Add registers a document under its case
func (s *MemoryDocumentStore) Add(doc model.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs[doc.Ref.CaseID] = append(s.refs[doc.Ref.CaseID], doc.Ref)
	s.docs[doc.Ref.ID] = doc
}

// ListDocuments returns the case's document references in add order
func (s *MemoryDocumentStore) ListDocuments(ctx context.Context, caseID string) ([]model.DocumentRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make([]model.DocumentRef, len(s.refs[caseID]))
	copy(refs, s.refs[caseID])
	return refs, nil
}

// GetDocument resolves a reference by document id
func (s *MemoryDocumentStore) GetDocument(ctx context.Context, ref model.DocumentRef) (model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[ref.ID]
	if !ok {
		return model.Document{}, fmt.Errorf("%w: document %s", model.ErrNotFound, ref.ID)
	}
	return doc, nil
}

// MemoryStatementStore is an append-only in-memory statement store safe
// for concurrent readers and writers
type MemoryStatementStore struct {
	mu         sync.RWMutex
	statements map[string]model.Statement
	order      []string // append order, for stable iteration
}

// NewMemoryStatementStore creates an empty in-memory statement store
func NewMemoryStatementStore() *MemoryStatementStore {
	return &MemoryStatementStore{
		statements: make(map[string]model.Statement),
	}
}

// Append persists statements. Duplicate ids are rejected: statements are
// immutable and never overwritten.
func (s *MemoryStatementStore) Append(ctx context.Context, statements []model.Statement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range statements {
		if st.ID == "" {
			return fmt.Errorf("%w: statement without id", model.ErrInvalidArgument)
		}
		if _, exists := s.statements[st.ID]; exists {
			return fmt.Errorf("%w: statement %s already stored", model.ErrInvalidArgument, st.ID)
		}
	}
	for _, st := range statements {
		s.statements[st.ID] = st.Clone()
		s.order = append(s.order, st.ID)
	}
	return nil
}

// Get returns one statement by id
func (s *MemoryStatementStore) Get(ctx context.Context, id string) (model.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statements[id]
	if !ok {
		return model.Statement{}, fmt.Errorf("%w: statement %s", model.ErrNotFound, id)
	}
	return st.Clone(), nil
}

// ListByPerson returns the person's statements in timestamp order
func (s *MemoryStatementStore) ListByPerson(ctx context.Context, caseID, personID string) ([]model.Statement, error) {
	return s.list(caseID, personID, func(model.Statement) bool { return true })
}

// ListByTopic returns the person's statements containing the topic, in
// timestamp order
func (s *MemoryStatementStore) ListByTopic(ctx context.Context, caseID, personID, topic string) ([]model.Statement, error) {
	return s.list(caseID, personID, func(st model.Statement) bool { return st.HasTopic(topic) })
}

// ListByCase returns every statement in a case, in append order. Not part
// of the StatementStore interface; used for JSON export.
func (s *MemoryStatementStore) ListByCase(ctx context.Context, caseID string) ([]model.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []model.Statement
	for _, id := range s.order {
		st := s.statements[id]
		if st.CaseID == caseID {
			matches = append(matches, st.Clone())
		}
	}
	return matches, nil
}

func (s *MemoryStatementStore) list(caseID, personID string, keep func(model.Statement) bool) ([]model.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []model.Statement
	for _, id := range s.order {
		st := s.statements[id]
		if st.CaseID != caseID || st.PersonID != personID {
			continue
		}
		if !keep(st) {
			continue
		}
		matches = append(matches, st.Clone())
	}

	// Timestamp ascending, statement id as deterministic tiebreak
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Timestamp.Equal(matches[j].Timestamp) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Timestamp.Before(matches[j].Timestamp)
	})

	return matches, nil
}
