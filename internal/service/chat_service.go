package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/acuellar/atiende/internal/domain"
	"github.com/acuellar/atiende/internal/knowledge"
	"github.com/acuellar/atiende/internal/repository"
)

// ChatService handles the conversation lifecycle: session creation, welcome
// seeding, the synchronous user-message/assistant-message exchange, and reset.
type ChatService struct {
	profiles    *ProfileStore
	sessionRepo *repository.SessionRepository
	knowledge   *KnowledgeService
	composer    *Composer
	logger      *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	profiles *ProfileStore,
	sessionRepo *repository.SessionRepository,
	knowledgeService *KnowledgeService,
	composer *Composer,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		profiles:    profiles,
		sessionRepo: sessionRepo,
		knowledge:   knowledgeService,
		composer:    composer,
		logger:      logger,
	}
}

// StartSession creates a fresh session and seeds exactly one welcome message
// synthesized from the business profile.
func (s *ChatService) StartSession(ctx context.Context) (*domain.Session, error) {
	session := &domain.Session{}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	if err := s.seedWelcome(session.ID); err != nil {
		return nil, err
	}
	return session, nil
}

// Chat appends the user message and exactly one assistant message produced by
// the composer, synchronously. An empty session ID creates a session first; a
// session reset back to fresh is re-seeded with its welcome before the user
// message lands.
func (s *ChatService) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		session, err := s.StartSession(ctx)
		if err != nil {
			return nil, err
		}
		sessionID = session.ID
	} else {
		session, err := s.sessionRepo.Get(sessionID)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, domain.ErrNotFound
		}

		count, err := s.sessionRepo.CountMessages(sessionID)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			if err := s.seedWelcome(sessionID); err != nil {
				return nil, err
			}
		}
	}

	userMsg := &domain.Message{
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Content:   req.Message,
	}
	if err := s.sessionRepo.AppendMessage(userMsg); err != nil {
		return nil, err
	}

	answer := s.answer(ctx, req.Message)

	assistantMsg := &domain.Message{
		SessionID:  sessionID,
		Role:       domain.RoleAssistant,
		Content:    answer.Text,
		Confidence: answer.Confidence,
		SourceTag:  answer.SourceTag,
	}
	if err := s.sessionRepo.AppendMessage(assistantMsg); err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Touch(sessionID); err != nil {
		return nil, err
	}

	return &domain.ChatResponse{
		SessionID:  sessionID,
		Answer:     answer.Text,
		Confidence: answer.Confidence,
		SourceTag:  answer.SourceTag,
	}, nil
}

// answer runs the retrieval-and-composition path for one query. Matching
// failures degrade to an empty candidate set; they never surface raw.
func (s *ChatService) answer(ctx context.Context, query string) Answer {
	var (
		candidates []domain.MatchCandidate
		semantic   bool
	)

	if _, tokens := knowledge.Normalize(query); len(tokens) > 0 {
		var err error
		candidates, semantic, err = s.knowledge.Match(ctx, query)
		if err != nil {
			s.logger.Warn("retrieval failed", zap.Error(err))
			candidates, semantic = nil, false
		}
	}

	in := ComposeInput{
		Profile:    s.profiles.Get(),
		Query:      query,
		Candidates: candidates,
		Semantic:   semantic,
		Products:   s.knowledge.Products(),
	}
	if table := s.knowledge.Table(); table != nil {
		in.Rows = table.Rows
	}

	return s.composer.Compose(ctx, in)
}

// History returns the session's messages in append order, rendered for the
// widget.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]domain.HistoryEntry, error) {
	session, err := s.sessionRepo.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}

	messages, err := s.sessionRepo.GetMessages(sessionID)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.HistoryEntry, len(messages))
	for i, m := range messages {
		entries[i] = domain.HistoryEntry{
			Role:       m.Role,
			Content:    m.Content,
			Hora:       m.Hora(),
			Confidence: m.Confidence,
			SourceTag:  m.SourceTag,
		}
	}
	return entries, nil
}

// Reset clears the session's messages, returning it to the fresh state. The
// next exchange seeds exactly one welcome message again.
func (s *ChatService) Reset(ctx context.Context, sessionID string) error {
	session, err := s.sessionRepo.Get(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return domain.ErrNotFound
	}
	return s.sessionRepo.Reset(sessionID)
}

// Suggestions returns the configured suggested queries, or the built-in set
// when none are configured.
func (s *ChatService) Suggestions() []string {
	if sugerencias := s.profiles.Get().Sugerencias; len(sugerencias) > 0 {
		return sugerencias
	}
	return domain.DefaultProfile().Sugerencias
}

func (s *ChatService) seedWelcome(sessionID string) error {
	return s.sessionRepo.AppendMessage(&domain.Message{
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		Content:   s.profiles.Get().WelcomeText(),
	})
}
