package knowledge

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"github.com/acuellar/atiende/internal/domain"
)

const (
	// MinSimilarity is the cosine floor below which no row content is returned.
	MinSimilarity = 0.3

	// NoInfoReply is the fixed sentinel emitted when nothing clears the floor.
	NoInfoReply = "Lo siento, no encontré información relevante sobre tu consulta. ¿Podrías reformularla?"

	// multiMatchIntro precedes the bulleted list when several rows clear the floor.
	multiMatchIntro = "Esto es lo que encontré relacionado con tu consulta:"

	collectionName = "conocimiento"
)

// Embedder encodes a text into a fixed-size vector. Implemented by the llm
// client; tests substitute a deterministic fake.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SemanticMatcher ranks knowledge rows by cosine similarity between the query
// embedding and row embeddings computed once at activation. Row embeddings are
// never recomputed per query; a new matcher is built only when the uploaded
// table changes.
type SemanticMatcher struct {
	table      *Table
	collection *chromem.Collection
}

// BuildSemanticMatcher embeds every row of the table into an in-memory vector
// collection. This is the one expensive step; callers cache the result keyed
// by the table's fingerprint.
func BuildSemanticMatcher(ctx context.Context, table *Table, embedder Embedder) (*SemanticMatcher, error) {
	if table == nil || len(table.Rows) == 0 {
		return nil, domain.ErrNoKnowledge
	}

	embedFunc := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection(collectionName, nil, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector collection: %w", err)
	}

	docs := make([]chromem.Document, len(table.Rows))
	for i, row := range table.Rows {
		docs[i] = chromem.Document{
			ID:      strconv.Itoa(i),
			Content: row.Key + "\n" + row.Value,
		}
	}
	if err := collection.AddDocuments(ctx, docs, 1); err != nil {
		return nil, fmt.Errorf("failed to embed knowledge rows: %w", err)
	}

	return &SemanticMatcher{table: table, collection: collection}, nil
}

// Fingerprint identifies the table this matcher was built from.
func (m *SemanticMatcher) Fingerprint() string {
	return m.table.Fingerprint
}

// Match encodes the query and returns the top-K rows by cosine similarity,
// highest first, including rows below the similarity floor. Callers apply
// the floor through ComposeReply.
func (m *SemanticMatcher) Match(ctx context.Context, query string) ([]domain.MatchCandidate, error) {
	_, tokens := Normalize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	limit := TopK
	if count := m.collection.Count(); limit > count {
		limit = count
	}
	if limit == 0 {
		return nil, nil
	}

	results, err := m.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	candidates := make([]domain.MatchCandidate, 0, len(results))
	for _, r := range results {
		idx, err := strconv.Atoi(r.ID)
		if err != nil || idx < 0 || idx >= len(m.table.Rows) {
			continue
		}
		candidates = append(candidates, domain.MatchCandidate{
			Row:   m.table.Rows[idx],
			Score: float64(r.Similarity),
		})
	}
	return candidates, nil
}

// Respond answers a query with the semantic reply rules applied.
func (m *SemanticMatcher) Respond(ctx context.Context, query string) (string, []domain.MatchCandidate, error) {
	candidates, err := m.Match(ctx, query)
	if err != nil {
		return "", nil, err
	}
	reply, _ := ComposeReply(candidates)
	return reply, AboveFloor(candidates), nil
}

// AboveFloor filters candidates to those at or above the similarity floor.
func AboveFloor(candidates []domain.MatchCandidate) []domain.MatchCandidate {
	var above []domain.MatchCandidate
	for _, c := range candidates {
		if c.Score >= MinSimilarity {
			above = append(above, c)
		}
	}
	return above
}

// ComposeReply turns ranked semantic candidates into the widget reply. When
// the best similarity is below the floor it returns the fixed sentinel and
// found=false; a single clearing candidate yields its value verbatim; several
// yield the top two as a bulleted list behind an explanatory sentence.
func ComposeReply(candidates []domain.MatchCandidate) (reply string, found bool) {
	above := AboveFloor(candidates)
	if len(above) == 0 {
		return NoInfoReply, false
	}
	if len(above) == 1 {
		return above[0].Row.Value, true
	}

	var b strings.Builder
	b.WriteString(multiMatchIntro)
	for _, c := range above[:2] {
		b.WriteString("\n• ")
		b.WriteString(c.Row.Value)
	}
	return b.String(), true
}
