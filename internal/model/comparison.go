package model

// ClaimRef points back at one claim inside a specific statement
type ClaimRef struct {
	StatementID string  `json:"statement_id"`
	Topic       string  `json:"topic"`
	Predicate   string  `json:"predicate"`
	Value       string  `json:"value"`
	Confidence  float64 `json:"confidence"`
}

// ClaimContradiction pairs two claims that assert different values for the
// same topic and predicate
type ClaimContradiction struct {
	A ClaimRef `json:"a"`
	B ClaimRef `json:"b"`
}

// ClaimDiff is the structured output of comparing two claim sets.
// It is a pure function of its inputs and carries no scoring.
type ClaimDiff struct {
	Matching      []ClaimRef           `json:"matching"`      // Same topic/predicate, same normalized value
	Contradicting []ClaimContradiction `json:"contradicting"` // Same topic/predicate, different value
	Omitted       []ClaimRef           `json:"omitted"`       // Present only in the first claim set
	New           []ClaimRef           `json:"new"`           // Present only in the second claim set
}

// Union returns the number of distinct claim keys across both sides
func (d ClaimDiff) Union() int {
	return len(d.Matching) + len(d.Contradicting) + len(d.Omitted) + len(d.New)
}

// KeyDifference is one human-readable delta between two statements,
// ordered by absolute impact when presented
type KeyDifference struct {
	Topic       string  `json:"topic"`
	Description string  `json:"description"`
	Impact      float64 `json:"impact"` // Signed; negative erodes credibility
}

// ComparisonResult quantifies agreement between two statements. Derived
// data: always recomputable from the two statements, never a source of
// truth.
type ComparisonResult struct {
	StatementA          string               `json:"statement_a"`
	StatementB          string               `json:"statement_b"`
	ConsistencyScore    float64              `json:"consistency_score"`  // [0,1], 1 = fully consistent
	CredibilityImpact   float64              `json:"credibility_impact"` // Signed scalar
	ContradictingClaims []ClaimContradiction `json:"contradicting_claims"`
	NewClaims           []ClaimRef           `json:"new_claims"`
	OmittedClaims       []ClaimRef           `json:"omitted_claims"`
	KeyDifferences      []KeyDifference      `json:"key_differences"` // Most significant first
}

// EvolutionStep records the change between one statement version and its
// immediate predecessor
type EvolutionStep struct {
	FromStatementID string  `json:"from_statement_id"`
	ToStatementID   string  `json:"to_statement_id"`
	ChangeMagnitude float64 `json:"change_magnitude"` // [0,1], 0 = no change
	Contradicted    bool    `json:"contradicted"`     // Adjacent contradiction on the tracked topic
}

// ClaimEvolution tracks how one person's account of a topic changed across
// successive statements. Drift is a sequential property: each version is
// compared with its immediate predecessor only.
type ClaimEvolution struct {
	EntityID          string          `json:"entity_id"`
	Topic             string          `json:"topic"`
	StatementIDs      []string        `json:"statement_ids"` // Timestamp order, oldest first
	Steps             []EvolutionStep `json:"steps"`
	HasContradictions bool            `json:"has_contradictions"`
	DriftScore        float64         `json:"drift_score"` // Cumulative change normalized by step count
}
