package consistency

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/samrosenbaum/v0-cracker-sub007/internal/compare"
	"github.com/samrosenbaum/v0-cracker-sub007/internal/model"
	"github.com/samrosenbaum/v0-cracker-sub007/internal/store"
	"golang.org/x/sync/errgroup"
)

// Impact weights for credibility scoring. A contradiction erodes more
// credibility than an omission; new corroborating detail adds a little.
const (
	contradictionWeight = 1.0
	newDetailWeight     = 0.4
	omissionWeight      = 0.25
)

// evolutionConcurrency bounds how many adjacent pairs are diffed at once
const evolutionConcurrency = 4

// Engine quantifies whether two statements from the same person conflict,
// and whether a person's account of a topic has drifted over time.
// Stateless beyond the append-only statement store and a cache of derived
// results, so it is safe for concurrent callers.
type Engine struct {
	statements store.StatementStore
	comparer   *compare.Comparer
	cache      *gocache.Cache // nil when caching is disabled
	cacheTTL   time.Duration
}

// NewEngine creates a consistency engine over the statement store
func NewEngine(statements store.StatementStore, comparer *compare.Comparer, cacheCfg model.CacheConfig) *Engine {
	e := &Engine{
		statements: statements,
		comparer:   comparer,
	}

	if cacheCfg.Enabled {
		ttl := cacheCfg.TTL
		if ttl <= 0 {
			ttl = 15 * time.Minute
		}
		e.cache = gocache.New(ttl, 2*ttl)
		e.cacheTTL = ttl
	}

	return e
}

// CompareStatements compares two statements from the same person and
// returns the structured result. Results are derived data: recomputable,
// so cache hits are safe.
func (e *Engine) CompareStatements(ctx context.Context, id1, id2 string) (model.ComparisonResult, error) {
	cacheKey := "compare:" + id1 + "|" + id2
	if e.cache != nil {
		if cached, found := e.cache.Get(cacheKey); found {
			return cached.(model.ComparisonResult), nil
		}
	}

	a, err := e.statements.Get(ctx, id1)
	if err != nil {
		return model.ComparisonResult{}, err
	}
	b, err := e.statements.Get(ctx, id2)
	if err != nil {
		return model.ComparisonResult{}, err
	}

	if a.PersonID != b.PersonID {
		return model.ComparisonResult{}, fmt.Errorf("%w: statements belong to different persons (%s, %s)",
			model.ErrInvalidArgument, a.PersonID, b.PersonID)
	}

	result := e.score(a, b)

	if e.cache != nil {
		e.cache.Set(cacheKey, result, e.cacheTTL)
	}

	return result, nil
}

// score aggregates a claim diff into the comparison result
func (e *Engine) score(a, b model.Statement) model.ComparisonResult {
	diff := e.comparer.Diff(a, b)

	// Consistency = matching / union of claims, clipped to [0,1].
	// An empty union means there was nothing to disagree about.
	consistency := 1.0
	if union := diff.Union(); union > 0 {
		consistency = math.Min(float64(len(diff.Matching))/float64(union), 1.0)
	}

	earlier := a.Timestamp
	if b.Timestamp.Before(earlier) {
		earlier = b.Timestamp
	}

	// Each difference carries a signed impact scaled by the confidence of
	// the claims involved, not just their count.
	type rankedDifference struct {
		model.KeyDifference
		at time.Time
	}
	var ranked []rankedDifference

	credibility := 0.0

	for _, contradiction := range diff.Contradicting {
		impact := -contradictionWeight * (contradiction.A.Confidence + contradiction.B.Confidence) / 2
		credibility += impact
		ranked = append(ranked, rankedDifference{
			KeyDifference: model.KeyDifference{
				Topic:       contradiction.A.Topic,
				Description: fmt.Sprintf("%s %s: %q changed to %q", contradiction.A.Topic, contradiction.A.Predicate, contradiction.A.Value, contradiction.B.Value),
				Impact:      impact,
			},
			at: earlier,
		})
	}

	for _, claim := range diff.New {
		impact := newDetailWeight * claim.Confidence
		credibility += impact
		ranked = append(ranked, rankedDifference{
			KeyDifference: model.KeyDifference{
				Topic:       claim.Topic,
				Description: fmt.Sprintf("new detail on %s: %s %q", claim.Topic, claim.Predicate, claim.Value),
				Impact:      impact,
			},
			at: b.Timestamp,
		})
	}

	for _, claim := range diff.Omitted {
		impact := -omissionWeight * claim.Confidence
		credibility += impact
		ranked = append(ranked, rankedDifference{
			KeyDifference: model.KeyDifference{
				Topic:       claim.Topic,
				Description: fmt.Sprintf("no longer mentions %s: %s %q", claim.Topic, claim.Predicate, claim.Value),
				Impact:      impact,
			},
			at: a.Timestamp,
		})
	}

	// Most significant first; earlier timestamp breaks ties, topic makes
	// the order fully deterministic.
	sort.SliceStable(ranked, func(i, j int) bool {
		ai, aj := math.Abs(ranked[i].Impact), math.Abs(ranked[j].Impact)
		if ai != aj {
			return ai > aj
		}
		if !ranked[i].at.Equal(ranked[j].at) {
			return ranked[i].at.Before(ranked[j].at)
		}
		return ranked[i].Topic < ranked[j].Topic
	})

	differences := make([]model.KeyDifference, len(ranked))
	for i, r := range ranked {
		differences[i] = r.KeyDifference
	}

	return model.ComparisonResult{
		StatementA:          a.ID,
		StatementB:          b.ID,
		ConsistencyScore:    consistency,
		CredibilityImpact:   credibility,
		ContradictingClaims: diff.Contradicting,
		NewClaims:           diff.New,
		OmittedClaims:       diff.Omitted,
		KeyDifferences:      differences,
	}
}

// TrackClaimEvolution follows one person's account of a topic across
// their statements in timestamp order. Drift is sequential: each version
// is compared with its immediate predecessor only, never all pairs.
func (e *Engine) TrackClaimEvolution(ctx context.Context, caseID, entityID, topic string) (model.ClaimEvolution, error) {
	versions, err := e.statements.ListByTopic(ctx, caseID, entityID, topic)
	if err != nil {
		return model.ClaimEvolution{}, err
	}
	if len(versions) == 0 {
		return model.ClaimEvolution{}, fmt.Errorf("%w: no statements for entity %s on topic %s in case %s",
			model.ErrNotFound, entityID, topic, caseID)
	}

	evolution := model.ClaimEvolution{
		EntityID: entityID,
		Topic:    topic,
	}
	for _, v := range versions {
		evolution.StatementIDs = append(evolution.StatementIDs, v.ID)
	}

	// A single version cannot drift
	if len(versions) == 1 {
		return evolution, nil
	}

	steps := make([]model.EvolutionStep, len(versions)-1)

	group, _ := errgroup.WithContext(ctx)
	group.SetLimit(evolutionConcurrency)
	for i := 1; i < len(versions); i++ {
		i := i
		group.Go(func() error {
			steps[i-1] = e.evolutionStep(versions[i-1], versions[i], topic)
			return nil
		})
	}
	_ = group.Wait()

	total := 0.0
	for _, step := range steps {
		total += step.ChangeMagnitude
		if step.Contradicted {
			evolution.HasContradictions = true
		}
	}

	evolution.Steps = steps

	// Normalize by step count so a long history of small refinements does
	// not automatically outscore one sharp contradiction.
	evolution.DriftScore = total / float64(len(steps))

	return evolution, nil
}

// evolutionStep measures the change between adjacent versions, restricted
// to the tracked topic
func (e *Engine) evolutionStep(prev, next model.Statement, topic string) model.EvolutionStep {
	prevTopic := prev
	prevTopic.Claims = prev.ClaimsForTopic(topic)
	nextTopic := next
	nextTopic.Claims = next.ClaimsForTopic(topic)

	diff := e.comparer.Diff(prevTopic, nextTopic)

	magnitude := 0.0
	if union := diff.Union(); union > 0 {
		magnitude = 1.0 - float64(len(diff.Matching))/float64(union)
	}

	return model.EvolutionStep{
		FromStatementID: prev.ID,
		ToStatementID:   next.ID,
		ChangeMagnitude: magnitude,
		Contradicted:    len(diff.Contradicting) > 0,
	}
}
