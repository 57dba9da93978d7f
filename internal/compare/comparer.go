package compare

import (
	"sort"
	"strings"

	"github.com/samrosenbaum/v0-cracker-sub007/internal/model"
)

// Comparer diffs two claim sets. Diff is a pure function of its inputs:
// no external capability, no shared state, safe for concurrent callers.
type Comparer struct{}

// NewComparer creates a new claim comparer
func NewComparer() *Comparer {
	return &Comparer{}
}

// claimKey identifies a claim for matching: two claims speak about the
// same thing when topic and predicate agree
type claimKey struct {
	topic     string
	predicate string
}

// Diff compares the claims of statement A against statement B.
// Claims are keyed by (topic, predicate): equal normalized values match,
// different values contradict, keys only in A are omitted by B, keys only
// in B are new. Output ordering is deterministic (topic, then predicate).
func (c *Comparer) Diff(a, b model.Statement) model.ClaimDiff {
	claimsA := indexClaims(a)
	claimsB := indexClaims(b)

	keys := make(map[claimKey]bool)
	for k := range claimsA {
		keys[k] = true
	}
	for k := range claimsB {
		keys[k] = true
	}

	ordered := make([]claimKey, 0, len(keys))
	for k := range keys {
		ordered = append(ordered, k)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].topic != ordered[j].topic {
			return ordered[i].topic < ordered[j].topic
		}
		return ordered[i].predicate < ordered[j].predicate
	})

	var diff model.ClaimDiff
	for _, key := range ordered {
		ca, inA := claimsA[key]
		cb, inB := claimsB[key]

		switch {
		case inA && inB:
			if normalizeValue(ca.Value) == normalizeValue(cb.Value) {
				diff.Matching = append(diff.Matching, claimRef(a.ID, ca))
			} else {
				diff.Contradicting = append(diff.Contradicting, model.ClaimContradiction{
					A: claimRef(a.ID, ca),
					B: claimRef(b.ID, cb),
				})
			}
		case inA:
			diff.Omitted = append(diff.Omitted, claimRef(a.ID, ca))
		default:
			diff.New = append(diff.New, claimRef(b.ID, cb))
		}
	}

	return diff
}

// indexClaims keys a statement's claims by (topic, predicate).
// When a statement asserts the same key twice, the later claim wins:
// extraction order is preserved, so it is the speaker's final word.
func indexClaims(s model.Statement) map[claimKey]model.Claim {
	indexed := make(map[claimKey]model.Claim, len(s.Claims))
	for _, c := range s.Claims {
		indexed[claimKey{topic: c.Topic, predicate: c.Predicate}] = c
	}
	return indexed
}

// normalizeValue folds case and whitespace so that trivial phrasing
// differences do not register as contradictions
func normalizeValue(v string) string {
	return strings.Join(strings.Fields(strings.ToLower(v)), " ")
}

func claimRef(statementID string, c model.Claim) model.ClaimRef {
	return model.ClaimRef{
		StatementID: statementID,
		Topic:       c.Topic,
		Predicate:   c.Predicate,
		Value:       c.Value,
		Confidence:  c.Confidence,
	}
}
