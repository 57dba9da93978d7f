package consistency

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/samrosenbaum/v0-cracker-sub007/internal/compare"
	"github.com/samrosenbaum/v0-cracker-sub007/internal/model"
	"github.com/samrosenbaum/v0-cracker-sub007/internal/store"
)

var baseTime = time.Date(2021, 3, 5, 12, 0, 0, 0, time.UTC)

func seedStatements(t *testing.T, statements ...model.Statement) *store.MemoryStatementStore {
	t.Helper()
	s := store.NewMemoryStatementStore()
	if err := s.Append(context.Background(), statements); err != nil {
		t.Fatalf("seed statements: %v", err)
	}
	return s
}

func newTestEngine(s *store.MemoryStatementStore) *Engine {
	return NewEngine(s, compare.NewComparer(), model.CacheConfig{})
}

func TestCompareStatements(t *testing.T) {
	s1 := model.Statement{
		ID: "s1", PersonID: "jane", CaseID: "c1", Timestamp: baseTime,
		Claims: []model.Claim{
			{Topic: "whereabouts", Predicate: "was at", Value: "the bar", Confidence: 0.9},
			{Topic: "observation", Predicate: "saw", Value: "a blue sedan", Confidence: 0.8},
		},
	}
	s2 := model.Statement{
		ID: "s2", PersonID: "jane", CaseID: "c1", Timestamp: baseTime.Add(24 * time.Hour),
		Claims: []model.Claim{
			{Topic: "whereabouts", Predicate: "was at", Value: "home", Confidence: 0.9},
			{Topic: "observation", Predicate: "saw", Value: "A Blue  Sedan", Confidence: 0.8},
			{Topic: "association", Predicate: "met", Value: "john", Confidence: 0.7},
		},
	}

	engine := newTestEngine(seedStatements(t, s1, s2))

	result, err := engine.CompareStatements(context.Background(), "s1", "s2")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}

	// 1 matching (observation, value folds), 1 contradiction
	// (whereabouts), 1 new (association): consistency = 1/3
	if got, want := result.ConsistencyScore, 1.0/3.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("expected consistency %.4f, got %.4f", want, got)
	}

	if len(result.ContradictingClaims) != 1 {
		t.Fatalf("expected 1 contradiction, got %d", len(result.ContradictingClaims))
	}
	if result.ContradictingClaims[0].A.Topic != "whereabouts" {
		t.Errorf("expected whereabouts contradiction, got %s", result.ContradictingClaims[0].A.Topic)
	}
	if len(result.NewClaims) != 1 || result.NewClaims[0].Topic != "association" {
		t.Errorf("expected one new association claim, got %+v", result.NewClaims)
	}
	if len(result.OmittedClaims) != 0 {
		t.Errorf("expected no omitted claims, got %+v", result.OmittedClaims)
	}

	// Impact: -1.0*0.9 for the contradiction, +0.4*0.7 for the new detail
	if got, want := result.CredibilityImpact, -0.9+0.28; math.Abs(got-want) > 1e-9 {
		t.Errorf("expected credibility impact %.4f, got %.4f", want, got)
	}

	// Most significant difference first
	if len(result.KeyDifferences) != 2 {
		t.Fatalf("expected 2 key differences, got %d", len(result.KeyDifferences))
	}
	if result.KeyDifferences[0].Topic != "whereabouts" {
		t.Errorf("expected the contradiction ranked first, got %s", result.KeyDifferences[0].Topic)
	}
	if math.Abs(result.KeyDifferences[0].Impact) < math.Abs(result.KeyDifferences[1].Impact) {
		t.Error("key differences not ordered by absolute impact")
	}
}

func TestCompareStatements_Symmetry(t *testing.T) {
	s1 := model.Statement{
		ID: "s1", PersonID: "jane", CaseID: "c1", Timestamp: baseTime,
		Claims: []model.Claim{
			{Topic: "whereabouts", Predicate: "was at", Value: "the bar", Confidence: 0.9},
			{Topic: "activity", Predicate: "did", Value: "closed the register", Confidence: 0.6},
		},
	}
	s2 := model.Statement{
		ID: "s2", PersonID: "jane", CaseID: "c1", Timestamp: baseTime.Add(time.Hour),
		Claims: []model.Claim{
			{Topic: "whereabouts", Predicate: "was at", Value: "home", Confidence: 0.9},
		},
	}

	engine := newTestEngine(seedStatements(t, s1, s2))

	forward, err := engine.CompareStatements(context.Background(), "s1", "s2")
	if err != nil {
		t.Fatalf("compare forward: %v", err)
	}
	backward, err := engine.CompareStatements(context.Background(), "s2", "s1")
	if err != nil {
		t.Fatalf("compare backward: %v", err)
	}

	if forward.ConsistencyScore != backward.ConsistencyScore {
		t.Errorf("consistency not symmetric: %.4f vs %.4f", forward.ConsistencyScore, backward.ConsistencyScore)
	}
	// Framing flips (omitted becomes new) but the content set is the same
	if len(forward.OmittedClaims) != len(backward.NewClaims) {
		t.Errorf("expected omitted/new to mirror: %d vs %d", len(forward.OmittedClaims), len(backward.NewClaims))
	}
}

func TestCompareStatements_Errors(t *testing.T) {
	s1 := model.Statement{ID: "s1", PersonID: "jane", CaseID: "c1", Timestamp: baseTime,
		Claims: []model.Claim{{Topic: "account", Predicate: "asserted", Value: "x", Confidence: 0.5}}}
	s2 := model.Statement{ID: "s2", PersonID: "john", CaseID: "c1", Timestamp: baseTime,
		Claims: []model.Claim{{Topic: "account", Predicate: "asserted", Value: "y", Confidence: 0.5}}}

	engine := newTestEngine(seedStatements(t, s1, s2))

	if _, err := engine.CompareStatements(context.Background(), "s1", "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := engine.CompareStatements(context.Background(), "s1", "s2"); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument across persons, got %v", err)
	}
}

func TestCompareStatements_Cached(t *testing.T) {
	s1 := model.Statement{ID: "s1", PersonID: "jane", CaseID: "c1", Timestamp: baseTime,
		Claims: []model.Claim{{Topic: "whereabouts", Predicate: "was at", Value: "the bar", Confidence: 0.9}}}
	s2 := model.Statement{ID: "s2", PersonID: "jane", CaseID: "c1", Timestamp: baseTime.Add(time.Hour),
		Claims: []model.Claim{{Topic: "whereabouts", Predicate: "was at", Value: "home", Confidence: 0.9}}}

	statements := seedStatements(t, s1, s2)
	engine := NewEngine(statements, compare.NewComparer(), model.CacheConfig{Enabled: true, TTL: time.Minute})

	first, err := engine.CompareStatements(context.Background(), "s1", "s2")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	second, err := engine.CompareStatements(context.Background(), "s1", "s2")
	if err != nil {
		t.Fatalf("compare cached: %v", err)
	}

	if first.ConsistencyScore != second.ConsistencyScore || first.CredibilityImpact != second.CredibilityImpact {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}
}

func TestTrackClaimEvolution_SingleVersion(t *testing.T) {
	s1 := model.Statement{ID: "s1", PersonID: "jane", CaseID: "c1", Timestamp: baseTime,
		Claims: []model.Claim{{Topic: "whereabouts", Predicate: "was at", Value: "the bar", Confidence: 0.9}}}

	engine := newTestEngine(seedStatements(t, s1))

	evolution, err := engine.TrackClaimEvolution(context.Background(), "c1", "jane", "whereabouts")
	if err != nil {
		t.Fatalf("track evolution: %v", err)
	}

	if evolution.HasContradictions {
		t.Error("single version cannot contradict itself")
	}
	if evolution.DriftScore != 0 {
		t.Errorf("expected drift 0, got %.4f", evolution.DriftScore)
	}
	if len(evolution.StatementIDs) != 1 || evolution.StatementIDs[0] != "s1" {
		t.Errorf("expected [s1], got %v", evolution.StatementIDs)
	}
}

func TestTrackClaimEvolution_ContradictionThenStable(t *testing.T) {
	// v2 contradicts v1 on the tracked topic; v3 matches v2. Drift must
	// reflect one contradiction and one no-change, not two.
	v1 := model.Statement{ID: "v1", PersonID: "jane", CaseID: "c1", Timestamp: baseTime,
		Claims: []model.Claim{{Topic: "whereabouts", Predicate: "was at", Value: "the bar", Confidence: 0.9}}}
	v2 := model.Statement{ID: "v2", PersonID: "jane", CaseID: "c1", Timestamp: baseTime.Add(24 * time.Hour),
		Claims: []model.Claim{{Topic: "whereabouts", Predicate: "was at", Value: "home", Confidence: 0.9}}}
	v3 := model.Statement{ID: "v3", PersonID: "jane", CaseID: "c1", Timestamp: baseTime.Add(48 * time.Hour),
		Claims: []model.Claim{{Topic: "whereabouts", Predicate: "was at", Value: "home", Confidence: 0.9}}}

	engine := newTestEngine(seedStatements(t, v1, v2, v3))

	evolution, err := engine.TrackClaimEvolution(context.Background(), "c1", "jane", "whereabouts")
	if err != nil {
		t.Fatalf("track evolution: %v", err)
	}

	if !evolution.HasContradictions {
		t.Error("expected contradictions")
	}
	if len(evolution.Steps) != 2 {
		t.Fatalf("expected 2 adjacent steps, got %d", len(evolution.Steps))
	}
	if !evolution.Steps[0].Contradicted || evolution.Steps[0].ChangeMagnitude != 1.0 {
		t.Errorf("expected first step to be a full contradiction, got %+v", evolution.Steps[0])
	}
	if evolution.Steps[1].Contradicted || evolution.Steps[1].ChangeMagnitude != 0.0 {
		t.Errorf("expected second step to be a no-change, got %+v", evolution.Steps[1])
	}
	if got, want := evolution.DriftScore, 0.5; math.Abs(got-want) > 1e-9 {
		t.Errorf("expected drift %.2f, got %.4f", want, got)
	}
}

func TestTrackClaimEvolution_OrdersByTimestamp(t *testing.T) {
	// Appended out of order; evolution must follow timestamps
	late := model.Statement{ID: "late", PersonID: "jane", CaseID: "c1", Timestamp: baseTime.Add(48 * time.Hour),
		Claims: []model.Claim{{Topic: "whereabouts", Predicate: "was at", Value: "home", Confidence: 0.9}}}
	early := model.Statement{ID: "early", PersonID: "jane", CaseID: "c1", Timestamp: baseTime,
		Claims: []model.Claim{{Topic: "whereabouts", Predicate: "was at", Value: "the bar", Confidence: 0.9}}}

	engine := newTestEngine(seedStatements(t, late, early))

	evolution, err := engine.TrackClaimEvolution(context.Background(), "c1", "jane", "whereabouts")
	if err != nil {
		t.Fatalf("track evolution: %v", err)
	}

	if evolution.StatementIDs[0] != "early" || evolution.StatementIDs[1] != "late" {
		t.Errorf("expected timestamp order [early late], got %v", evolution.StatementIDs)
	}
}

func TestTrackClaimEvolution_NotFound(t *testing.T) {
	s1 := model.Statement{ID: "s1", PersonID: "jane", CaseID: "c1", Timestamp: baseTime,
		Claims: []model.Claim{{Topic: "whereabouts", Predicate: "was at", Value: "the bar", Confidence: 0.9}}}

	engine := newTestEngine(seedStatements(t, s1))

	if _, err := engine.TrackClaimEvolution(context.Background(), "c1", "jane", "possession"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unmatched topic, got %v", err)
	}
	if _, err := engine.TrackClaimEvolution(context.Background(), "c1", "nobody", "whereabouts"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown entity, got %v", err)
	}
}
