package domain

// KnowledgeRow is one entry of the uploaded lookup table: a question or
// topic, its answer, and any additional spreadsheet columns keyed by header.
type KnowledgeRow struct {
	Key        string            `json:"key"`
	Value      string            `json:"value"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Product is a row of the optional product spreadsheet: the product name
// plus its named attributes in header order.
type Product struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes"`
	Headers    []string          `json:"headers"`
}

// MatchCandidate pairs a knowledge row with its retrieval score. Candidates
// are transient: produced per query, never persisted.
type MatchCandidate struct {
	Row   KnowledgeRow `json:"row"`
	Score float64      `json:"score"`
}

// Match source tags recorded on assistant messages.
const (
	SourceLexical    = "lexical"
	SourceSemantic   = "semantic"
	SourceGenerative = "generative"
	SourceFallback   = "fallback"
)
