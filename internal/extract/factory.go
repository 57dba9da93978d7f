package extract

import (
	"fmt"
	"strings"

	"github.com/samrosenbaum/v0-cracker-sub007/internal/model"
)

// NewExtractor creates a statement extractor based on configuration
func NewExtractor(config model.ExtractorConfig) (Extractor, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "heuristic", "":
		// Offline default: no external capability required
		return NewHeuristicExtractor(), nil

	case "openai":
		return NewOpenAIExtractor(config)

	default:
		return nil, fmt.Errorf("unknown extractor provider: %s (supported: heuristic, openai)", config.Provider)
	}
}
