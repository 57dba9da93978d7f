package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samrosenbaum/v0-cracker-sub007/internal/model"
	"github.com/sashabaranov/go-openai"
)

// extractionPrompt instructs the model to return strict JSON and nothing
// else; the response is parsed, never trusted as prose
const extractionPrompt = `You extract witness statements from case documents.

Return ONLY a JSON array, no prose, with this shape:
[
  {
    "person_id": "who made the statement",
    "timestamp": "RFC3339 date of the statement, or empty string if unknown",
    "claims": [
      {
        "topic": "one of: whereabouts, observation, association, possession, activity, account",
        "predicate": "the relation asserted, e.g. 'was at'",
        "value": "the asserted value",
        "confidence": 0.0
      }
    ]
  }
]

Rules:
1. One array element per distinct person making statements.
2. Confidence in [0,1]: lower it for hedged or secondhand assertions.
3. Do not invent people, dates, or claims not present in the document.
4. Return [] if the document contains no attributable statements.

Document:
`

// OpenAIExtractor implements the Extractor interface using OpenAI chat
// completions
type OpenAIExtractor struct {
	client *openai.Client
	config model.ExtractorConfig
}

// NewOpenAIExtractor creates a new OpenAI-backed extractor
func NewOpenAIExtractor(config model.ExtractorConfig) (*OpenAIExtractor, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIExtractor{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (e *OpenAIExtractor) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (e *OpenAIExtractor) IsAvailable(ctx context.Context) bool {
	_, err := e.client.ListModels(ctx)
	return err == nil
}

// Extract calls the chat completions API and parses the JSON response
func (e *OpenAIExtractor) Extract(ctx context.Context, doc model.Document) ([]model.Statement, error) {
	chatModel := e.config.Model
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}

	maxTokens := e.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}

	timeout := time.Duration(e.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a precise information extraction system. You output strict JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: extractionPrompt + doc.Content,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.2, // Low temperature for reproducible extraction
	}

	resp, err := e.client.CreateChatCompletion(ctxWithTimeout, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: openai: %v", model.ErrCapabilityTimeout, err)
		}
		return nil, fmt.Errorf("%w: openai: %v", model.ErrExtraction, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: openai: empty response", model.ErrExtraction)
	}

	return parseStatements(resp.Choices[0].Message.Content, doc)
}

// rawStatement mirrors the JSON shape the prompt demands
type rawStatement struct {
	PersonID  string        `json:"person_id"`
	Timestamp string        `json:"timestamp"`
	Claims    []model.Claim `json:"claims"`
}

// parseStatements decodes the model's JSON output into statements
func parseStatements(content string, doc model.Document) ([]model.Statement, error) {
	content = strings.TrimSpace(content)

	// Tolerate a fenced code block around the JSON
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var raw []rawStatement
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", model.ErrExtraction, err)
	}

	var statements []model.Statement
	for _, r := range raw {
		if r.PersonID == "" || len(r.Claims) == 0 {
			continue
		}

		timestamp := doc.RetrievedAt
		if r.Timestamp != "" {
			if t, err := time.Parse(time.RFC3339, r.Timestamp); err == nil {
				timestamp = t
			}
		}

		statements = append(statements, model.Statement{
			PersonID:         r.PersonID,
			CaseID:           doc.Ref.CaseID,
			SourceDocumentID: doc.Ref.ID,
			Timestamp:        timestamp,
			Claims:           r.Claims,
		})
	}

	if len(statements) == 0 {
		return nil, fmt.Errorf("%w: no attributed statements in document %s", model.ErrExtraction, doc.Ref.ID)
	}

	return statements, nil
}
