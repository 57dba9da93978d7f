package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/samrosenbaum/v0-cracker-sub007/internal/model"
	"golang.org/x/net/html"
)

// attributionPattern matches "Jane Doe said ..." style reporting clauses
// and captures the speaker and the reporting verb
var attributionPattern = regexp.MustCompile(
	`\b([A-Z][A-Za-z.'-]+(?:\s+[A-Z][A-Za-z.'-]+){0,3})\s+(said|stated|claimed|testified|told|recalled|denied|admitted|reported|insisted)\b`)

// datePatterns recognize explicit statement dates inside document text
var datePatterns = []struct {
	re     *regexp.Regexp
	layout string
}{
	{regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`), "2006-01-02"},
	{regexp.MustCompile(`\b((?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4})\b`), "January 2, 2006"},
}

// topicPattern maps a predicate phrase to the claim topic it asserts
type topicPattern struct {
	re    *regexp.Regexp
	topic string
}

// hedgeWords lower extraction confidence when present in a sentence
var hedgeWords = []string{
	"maybe", "perhaps", "possibly", "think", "believe", "not sure",
	"around", "about", "roughly", "might have",
}

// HeuristicExtractor extracts statements from document text with
// attribution and predicate pattern matching. Fully offline; the default
// provider.
type HeuristicExtractor struct {
	topics []topicPattern
}

// NewHeuristicExtractor creates the offline rule-based extractor
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{
		topics: []topicPattern{
			{regexp.MustCompile(`\b(was at|was in|went to|arrived at|stayed at|left)\s+(.+)`), "whereabouts"},
			{regexp.MustCompile(`\b(saw|noticed|witnessed|heard|observed)\s+(.+)`), "observation"},
			{regexp.MustCompile(`\b(met|knew|spoke with|spoke to|called|visited)\s+(.+)`), "association"},
			{regexp.MustCompile(`\b(owned|had|carried|drove|wore)\s+(.+)`), "possession"},
			{regexp.MustCompile(`\b(did|was doing|worked|finished|started)\s+(.+)`), "activity"},
		},
	}
}

// Name returns the provider name
func (e *HeuristicExtractor) Name() string {
	return "heuristic"
}

// IsAvailable always succeeds: the heuristic extractor has no external
// dependency
func (e *HeuristicExtractor) IsAvailable(ctx context.Context) bool {
	return true
}

// Extract produces one statement per attributed speaker in the document
func (e *HeuristicExtractor) Extract(ctx context.Context, doc model.Document) ([]model.Statement, error) {
	text := strings.TrimSpace(doc.Content)
	if text == "" {
		return nil, fmt.Errorf("%w: empty document %s", model.ErrExtraction, doc.Ref.ID)
	}

	if isHTML(doc) {
		parsed, err := html.Parse(strings.NewReader(doc.Content))
		if err != nil {
			return nil, fmt.Errorf("%w: parse html: %v", model.ErrExtraction, err)
		}
		text = visibleText(parsed)
	}

	timestamp := statementDate(text, doc.RetrievedAt)
	sentences := splitSentences(text)

	// Group claims by speaker; the last attribution carries forward to
	// following unattributed sentences.
	speaker := doc.Ref.PersonID
	order := []string{}
	claims := make(map[string][]model.Claim)

	for _, sentence := range sentences {
		if m := attributionPattern.FindStringSubmatch(sentence); m != nil {
			speaker = strings.TrimSpace(m[1])
		}
		if speaker == "" {
			continue
		}

		claim := e.parseClaim(sentence)
		if _, seen := claims[speaker]; !seen {
			order = append(order, speaker)
		}
		claims[speaker] = append(claims[speaker], claim)
	}

	if len(order) == 0 {
		return nil, fmt.Errorf("%w: no attributed statements in document %s", model.ErrExtraction, doc.Ref.ID)
	}

	var statements []model.Statement
	for _, person := range order {
		statements = append(statements, model.Statement{
			PersonID:         person,
			CaseID:           doc.Ref.CaseID,
			SourceDocumentID: doc.Ref.ID,
			Timestamp:        timestamp,
			Claims:           claims[person],
		})
	}

	return statements, nil
}

// parseClaim turns one sentence into a topic/predicate/value claim
func (e *HeuristicExtractor) parseClaim(sentence string) model.Claim {
	lower := strings.ToLower(sentence)

	claim := model.Claim{
		Topic:      "account",
		Predicate:  "asserted",
		Value:      strings.TrimSpace(sentence),
		Confidence: 0.8,
	}

	for _, tp := range e.topics {
		if m := tp.re.FindStringSubmatch(lower); m != nil {
			claim.Topic = tp.topic
			claim.Predicate = m[1]
			claim.Value = strings.TrimRight(strings.TrimSpace(m[2]), ".!?")
			break
		}
	}

	for _, hedge := range hedgeWords {
		if strings.Contains(lower, hedge) {
			claim.Confidence = 0.5
			break
		}
	}

	return claim
}

// isHTML decides whether the document should go through the HTML walker
func isHTML(doc model.Document) bool {
	if strings.Contains(doc.ContentType, "html") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(doc.Content))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

// visibleText extracts text nodes from HTML, skipping scripts/styles
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

// splitSentences splits text into sentences (simple heuristic)
func splitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			// Look ahead to avoid splitting on abbreviations
			if i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\t') {
				appendSentence(&sentences, current.String())
				current.Reset()
			}
		}
	}

	if current.Len() > 0 {
		appendSentence(&sentences, current.String())
	}

	return sentences
}

func appendSentence(sentences *[]string, raw string) {
	sentence := strings.TrimSpace(raw)
	if len(sentence) >= 15 && len(sentence) <= 500 {
		*sentences = append(*sentences, sentence)
	}
}

// statementDate finds an explicit date in the text, falling back to the
// document retrieval time
func statementDate(text string, fallback time.Time) time.Time {
	for _, p := range datePatterns {
		if m := p.re.FindStringSubmatch(text); m != nil {
			if t, err := time.Parse(p.layout, m[1]); err == nil {
				return t
			}
		}
	}
	return fallback
}
