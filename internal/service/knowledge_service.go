package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/acuellar/atiende/internal/domain"
	"github.com/acuellar/atiende/internal/knowledge"
)

// KnowledgeService owns the uploaded knowledge table, the optional product
// table, and the activation snapshot (row embeddings). Loaded data is
// read-only after construction; uploads replace it wholesale behind the lock.
type KnowledgeService struct {
	mu sync.RWMutex

	raw      []byte
	filename string

	table    *knowledge.Table
	products []domain.Product
	lexical  *knowledge.LexicalMatcher
	semantic *knowledge.SemanticMatcher

	embedder knowledge.Embedder
	logger   *zap.Logger
}

// NewKnowledgeService creates the service. embedder may be nil, in which case
// activation keeps the lexical path only.
func NewKnowledgeService(embedder knowledge.Embedder, logger *zap.Logger) *KnowledgeService {
	return &KnowledgeService{embedder: embedder, logger: logger}
}

// LoadKnowledge parses an uploaded spreadsheet and replaces the knowledge
// table. Any previous activation snapshot is invalidated: embeddings must be
// recomputed whenever the table is replaced.
func (s *KnowledgeService) LoadKnowledge(filename string, data []byte, keyCol, valueCol int) (int, error) {
	table, err := knowledge.LoadTable(filename, data, keyCol, valueCol)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = data
	s.filename = filename
	s.table = table
	s.lexical = knowledge.NewLexicalMatcher(table)
	s.semantic = nil

	s.logger.Info("knowledge table loaded",
		zap.String("filename", filename),
		zap.Int("rows", len(table.Rows)))
	return len(table.Rows), nil
}

// SelectColumns re-parses the retained upload with a different key/value
// column selection.
func (s *KnowledgeService) SelectColumns(keyCol, valueCol int) (int, error) {
	s.mu.RLock()
	raw, filename := s.raw, s.filename
	s.mu.RUnlock()

	if raw == nil {
		return 0, domain.ErrNoKnowledge
	}
	return s.LoadKnowledge(filename, raw, keyCol, valueCol)
}

// LoadProducts parses the optional product spreadsheet.
func (s *KnowledgeService) LoadProducts(filename string, data []byte) (int, error) {
	products, err := knowledge.LoadProducts(filename, data)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products

	s.logger.Info("product table loaded",
		zap.String("filename", filename),
		zap.Int("products", len(products)))
	return len(products), nil
}

// Activate builds the semantic snapshot: one embedding per row, computed here
// and cached for the session. Re-activating on an unchanged upload is a cache
// hit and recomputes nothing. Returns whether embeddings were recomputed.
func (s *KnowledgeService) Activate(ctx context.Context) (bool, error) {
	s.mu.RLock()
	table, current := s.table, s.semantic
	s.mu.RUnlock()

	if table == nil {
		return false, domain.ErrNoKnowledge
	}
	if s.embedder == nil {
		// No embedding backend; the lexical path stays active.
		return false, nil
	}
	if current != nil && current.Fingerprint() == table.Fingerprint {
		s.logger.Info("knowledge base already active", zap.String("fingerprint", table.Fingerprint[:12]))
		return false, nil
	}

	matcher, err := knowledge.BuildSemanticMatcher(ctx, table, s.embedder)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	s.semantic = matcher
	s.mu.Unlock()

	s.logger.Info("knowledge base activated",
		zap.Int("rows", len(table.Rows)),
		zap.String("fingerprint", table.Fingerprint[:12]))
	return true, nil
}

// Table returns the current knowledge table, or nil.
func (s *KnowledgeService) Table() *knowledge.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Products returns the current product table.
func (s *KnowledgeService) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products
}

// Semantic returns the activation snapshot, or nil when not activated.
func (s *KnowledgeService) Semantic() *knowledge.SemanticMatcher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.semantic
}

// Match retrieves candidate rows for a query: the semantic path when an
// activation snapshot exists, the lexical path otherwise. The boolean reports
// which path ran.
func (s *KnowledgeService) Match(ctx context.Context, query string) ([]domain.MatchCandidate, bool, error) {
	s.mu.RLock()
	semantic, lexical := s.semantic, s.lexical
	s.mu.RUnlock()

	if semantic != nil {
		candidates, err := semantic.Match(ctx, query)
		return candidates, true, err
	}
	if lexical != nil {
		return lexical.Match(query), false, nil
	}
	return nil, false, nil
}
