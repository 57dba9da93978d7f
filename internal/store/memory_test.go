package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samrosenbaum/v0-cracker-sub007/internal/model"
)

var t0 = time.Date(2021, 3, 5, 0, 0, 0, 0, time.UTC)

func TestMemoryStatementStore_AppendGet(t *testing.T) {
	s := NewMemoryStatementStore()
	ctx := context.Background()

	st := model.Statement{
		ID: "s1", PersonID: "jane", CaseID: "c1", Timestamp: t0,
		Claims: []model.Claim{{Topic: "whereabouts", Predicate: "was at", Value: "the bar", Confidence: 0.9}},
	}
	if err := s.Append(ctx, []model.Statement{st}); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	// Stored statements are immutable: mutating the returned copy must
	// not leak back into the store
	got.Claims[0].Value = "tampered"
	again, _ := s.Get(ctx, "s1")
	if again.Claims[0].Value != "the bar" {
		t.Error("store returned a shared claim slice")
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStatementStore_AppendOnly(t *testing.T) {
	s := NewMemoryStatementStore()
	ctx := context.Background()

	st := model.Statement{ID: "s1", PersonID: "jane", CaseID: "c1", Timestamp: t0,
		Claims: []model.Claim{{Topic: "account", Predicate: "asserted", Value: "x", Confidence: 0.5}}}

	if err := s.Append(ctx, []model.Statement{st}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, []model.Statement{st}); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("expected duplicate id rejection, got %v", err)
	}
	if err := s.Append(ctx, []model.Statement{{PersonID: "jane"}}); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("expected rejection of statement without id, got %v", err)
	}
}

func TestMemoryStatementStore_Listing(t *testing.T) {
	s := NewMemoryStatementStore()
	ctx := context.Background()

	statements := []model.Statement{
		{ID: "b", PersonID: "jane", CaseID: "c1", Timestamp: t0.Add(time.Hour),
			Claims: []model.Claim{{Topic: "whereabouts", Predicate: "was at", Value: "home", Confidence: 0.9}}},
		{ID: "a", PersonID: "jane", CaseID: "c1", Timestamp: t0.Add(time.Hour),
			Claims: []model.Claim{{Topic: "observation", Predicate: "saw", Value: "a sedan", Confidence: 0.8}}},
		{ID: "c", PersonID: "jane", CaseID: "c1", Timestamp: t0,
			Claims: []model.Claim{{Topic: "whereabouts", Predicate: "was at", Value: "the bar", Confidence: 0.9}}},
		{ID: "d", PersonID: "john", CaseID: "c1", Timestamp: t0,
			Claims: []model.Claim{{Topic: "whereabouts", Predicate: "was at", Value: "work", Confidence: 0.9}}},
		{ID: "e", PersonID: "jane", CaseID: "c2", Timestamp: t0,
			Claims: []model.Claim{{Topic: "whereabouts", Predicate: "was at", Value: "away", Confidence: 0.9}}},
	}
	if err := s.Append(ctx, statements); err != nil {
		t.Fatalf("append: %v", err)
	}

	byPerson, err := s.ListByPerson(ctx, "c1", "jane")
	if err != nil {
		t.Fatalf("list by person: %v", err)
	}
	// Timestamp ascending, id as tiebreak
	if len(byPerson) != 3 || byPerson[0].ID != "c" || byPerson[1].ID != "a" || byPerson[2].ID != "b" {
		ids := make([]string, len(byPerson))
		for i, st := range byPerson {
			ids[i] = st.ID
		}
		t.Errorf("expected [c a b], got %v", ids)
	}

	byTopic, err := s.ListByTopic(ctx, "c1", "jane", "whereabouts")
	if err != nil {
		t.Fatalf("list by topic: %v", err)
	}
	if len(byTopic) != 2 || byTopic[0].ID != "c" || byTopic[1].ID != "b" {
		t.Errorf("expected [c b] for whereabouts, got %d statements", len(byTopic))
	}

	byCase, err := s.ListByCase(ctx, "c1")
	if err != nil {
		t.Fatalf("list by case: %v", err)
	}
	if len(byCase) != 4 {
		t.Errorf("expected 4 statements in c1, got %d", len(byCase))
	}
}

func TestMemoryDocumentStore(t *testing.T) {
	s := NewMemoryDocumentStore()
	ctx := context.Background()

	for _, id := range []string{"c1/d1", "c1/d2"} {
		s.Add(model.Document{
			Ref:     model.DocumentRef{ID: id, CaseID: "c1", Location: model.LocationInline},
			Content: "content of " + id,
		})
	}

	refs, err := s.ListDocuments(ctx, "c1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(refs) != 2 || refs[0].ID != "c1/d1" || refs[1].ID != "c1/d2" {
		t.Errorf("expected add order preserved, got %+v", refs)
	}

	doc, err := s.GetDocument(ctx, refs[1])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.Content != "content of c1/d2" {
		t.Errorf("unexpected content: %q", doc.Content)
	}

	if _, err := s.GetDocument(ctx, model.DocumentRef{ID: "missing"}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	empty, err := s.ListDocuments(ctx, "no-such-case")
	if err != nil {
		t.Fatalf("list empty case: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no documents, got %d", len(empty))
	}
}
