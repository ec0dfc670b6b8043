package service

import (
	"context"
	"encoding/base64"
	"os"

	"go.uber.org/zap"

	"github.com/acuellar/atiende/internal/domain"
)

// ProfileResponse is the branding payload the widget renders from.
type ProfileResponse struct {
	Nombre      string   `json:"nombre"`
	Emoji       string   `json:"emoji"`
	Tagline     string   `json:"tagline"`
	Logo        string   `json:"logo,omitempty"` // inline data URI when the asset exists
	Primario    string   `json:"color_primario"`
	Secundario  string   `json:"color_secundario"`
	FondoUser   string   `json:"fondo_usuario"`
	FondoBot    string   `json:"fondo_bot"`
	Bienvenida  string   `json:"bienvenida"`
	Sugerencias []string `json:"sugerencias"`
	Activo      bool     `json:"activo"`
}

// WidgetService is the public-facing facade over the chat service and the
// profile store.
type WidgetService struct {
	profiles *ProfileStore
	chat     *ChatService
	logger   *zap.Logger
}

// NewWidgetService creates a new widget service
func NewWidgetService(profiles *ProfileStore, chat *ChatService, logger *zap.Logger) *WidgetService {
	return &WidgetService{profiles: profiles, chat: chat, logger: logger}
}

// GetProfile returns the current branding. When the logo asset exists at its
// configured path it is embedded inline in place of the emoji header.
func (s *WidgetService) GetProfile(ctx context.Context) *ProfileResponse {
	p := s.profiles.Get()

	resp := &ProfileResponse{
		Nombre:      p.Nombre,
		Emoji:       p.Emoji,
		Tagline:     p.Tagline,
		Primario:    p.Primario,
		Secundario:  p.Secundario,
		FondoUser:   p.FondoUser,
		FondoBot:    p.FondoBot,
		Bienvenida:  p.WelcomeText(),
		Sugerencias: s.chat.Suggestions(),
		Activo:      p.Activo,
	}

	if p.LogoPath != "" {
		if data, err := os.ReadFile(p.LogoPath); err == nil {
			resp.Logo = "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
		}
	}

	return resp
}

// StartSession creates a session seeded with its welcome message.
func (s *WidgetService) StartSession(ctx context.Context) (*domain.Session, []domain.HistoryEntry, error) {
	session, err := s.chat.StartSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	history, err := s.chat.History(ctx, session.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, history, nil
}

// Chat handles a chat message
func (s *WidgetService) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	return s.chat.Chat(ctx, req)
}

// History returns a session's rendered messages
func (s *WidgetService) History(ctx context.Context, sessionID string) ([]domain.HistoryEntry, error) {
	return s.chat.History(ctx, sessionID)
}

// Reset clears a session's conversation
func (s *WidgetService) Reset(ctx context.Context, sessionID string) error {
	return s.chat.Reset(ctx, sessionID)
}

// Suggestions returns the suggested queries shown on a fresh thread
func (s *WidgetService) Suggestions() []string {
	return s.chat.Suggestions()
}
