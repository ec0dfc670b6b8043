package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/acuellar/atiende/internal/domain"
	"github.com/acuellar/atiende/internal/repository"
)

// AdminService handles the administration panel: profile saves, spreadsheet
// uploads, activation, and stats.
type AdminService struct {
	profiles    *ProfileStore
	knowledge   *KnowledgeService
	sessionRepo *repository.SessionRepository
	logger      *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	profiles *ProfileStore,
	knowledgeService *KnowledgeService,
	sessionRepo *repository.SessionRepository,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		profiles:    profiles,
		knowledge:   knowledgeService,
		sessionRepo: sessionRepo,
		logger:      logger,
	}
}

// UpdateProfile saves the branding and marks it active. It takes effect on
// the widget's next render.
func (s *AdminService) UpdateProfile(ctx context.Context, req *domain.UpdateProfileRequest) domain.BusinessProfile {
	profile := s.profiles.Save(req)
	s.logger.Info("business profile saved", zap.String("nombre", profile.Nombre))
	return profile
}

// UploadKnowledge replaces the knowledge table from an uploaded spreadsheet.
func (s *AdminService) UploadKnowledge(ctx context.Context, filename string, data []byte, keyCol, valueCol int) (int, error) {
	return s.knowledge.LoadKnowledge(filename, data, keyCol, valueCol)
}

// SelectColumns re-parses the current upload with a new column selection.
func (s *AdminService) SelectColumns(ctx context.Context, keyCol, valueCol int) (int, error) {
	return s.knowledge.SelectColumns(keyCol, valueCol)
}

// UploadProducts replaces the product table from an uploaded spreadsheet.
func (s *AdminService) UploadProducts(ctx context.Context, filename string, data []byte) (int, error) {
	return s.knowledge.LoadProducts(filename, data)
}

// Activate builds (or reuses) the embedding snapshot for the loaded table.
func (s *AdminService) Activate(ctx context.Context) (bool, error) {
	return s.knowledge.Activate(ctx)
}

// GetStats returns system statistics
func (s *AdminService) GetStats(ctx context.Context) (*domain.Stats, error) {
	sessions, err := s.sessionRepo.CountSessions()
	if err != nil {
		return nil, err
	}
	messages, err := s.sessionRepo.CountAllMessages()
	if err != nil {
		return nil, err
	}

	stats := &domain.Stats{
		TotalSessions: sessions,
		TotalMessages: messages,
		ProductRows:   len(s.knowledge.Products()),
	}
	if table := s.knowledge.Table(); table != nil {
		stats.KnowledgeRows = len(table.Rows)
	}
	return stats, nil
}
