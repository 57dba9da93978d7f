package extract

import (
	"context"

	"github.com/samrosenbaum/v0-cracker-sub007/internal/model"
)

// Extractor turns one case document into zero or more dated, attributed
// statements. Implementations report opaque extraction failures; the
// batch scheduler owns the retry policy.
type Extractor interface {
	// Name returns the provider name
	Name() string

	// Extract produces the document's statements. The returned statements
	// carry no ids; the scheduler assigns them before persisting.
	Extract(ctx context.Context, doc model.Document) ([]model.Statement, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}
