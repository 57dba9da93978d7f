package model

import "time"

// DocumentLocation tells a DocumentStore how to resolve a document reference
type DocumentLocation string

const (
	LocationFile   DocumentLocation = "file"   // Path on a local filesystem
	LocationRemote DocumentLocation = "remote" // HTTP(S) URL
	LocationInline DocumentLocation = "inline" // Content carried on the ref itself
)

// DocumentRef identifies one case document without carrying its content
type DocumentRef struct {
	ID       string           `json:"id"`                  // Opaque document identifier
	CaseID   string           `json:"case_id"`             // Case the document belongs to
	Location DocumentLocation `json:"location"`            // How to resolve the document
	Address  string           `json:"address"`             // Path or URL, per Location
	PersonID string           `json:"person_id,omitempty"` // Attribution hint when known up front
}

// Document is a resolved case document ready for statement extraction
type Document struct {
	Ref         DocumentRef `json:"ref"`
	Content     string      `json:"content"`                // Raw text or HTML
	ContentType string      `json:"content_type,omitempty"` // e.g. text/plain, text/html
	RetrievedAt time.Time   `json:"retrieved_at"`           // Fallback statement timestamp
}

// Claim is a single topic/predicate/value assertion within a statement
type Claim struct {
	Topic      string  `json:"topic"`      // What the assertion is about (e.g. "whereabouts")
	Predicate  string  `json:"predicate"`  // The relation asserted (e.g. "was at")
	Value      string  `json:"value"`      // The asserted value
	Confidence float64 `json:"confidence"` // Extraction confidence in [0,1]
}

// Statement is a dated, attributed set of claims extracted from one document.
// Statements are immutable once extracted; superseding information becomes a
// new statement version, never an in-place edit.
type Statement struct {
	ID               string    `json:"id"`
	PersonID         string    `json:"person_id"`
	CaseID           string    `json:"case_id"`
	SourceDocumentID string    `json:"source_document_id"`
	Timestamp        time.Time `json:"timestamp"`
	Claims           []Claim   `json:"claims"` // Extraction order preserved
}

// HasTopic reports whether any claim in the statement covers the given topic
func (s Statement) HasTopic(topic string) bool {
	for _, c := range s.Claims {
		if c.Topic == topic {
			return true
		}
	}
	return false
}

// ClaimsForTopic returns the claims covering the given topic, in extraction order
func (s Statement) ClaimsForTopic(topic string) []Claim {
	var claims []Claim
	for _, c := range s.Claims {
		if c.Topic == topic {
			claims = append(claims, c)
		}
	}
	return claims
}

// Clone returns a deep copy so callers cannot mutate a stored statement
func (s Statement) Clone() Statement {
	out := s
	out.Claims = make([]Claim, len(s.Claims))
	copy(out.Claims, s.Claims)
	return out
}
