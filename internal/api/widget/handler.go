package widget

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acuellar/atiende/internal/domain"
	"github.com/acuellar/atiende/internal/service"
)

// Handler handles the public widget API
type Handler struct {
	widgetService *service.WidgetService
}

// NewHandler creates a new widget handler
func NewHandler(widgetService *service.WidgetService) *Handler {
	return &Handler{widgetService: widgetService}
}

// RegisterRoutes registers widget routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/profile", h.GetProfile)
	r.GET("/suggestions", h.GetSuggestions)
	r.POST("/session", h.StartSession)
	r.POST("/chat", h.Chat)
	r.GET("/history/:session_id", h.GetHistory)
	r.POST("/reset/:session_id", h.Reset)
}

// GetProfile returns the branding the widget renders from
func (h *Handler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, h.widgetService.GetProfile(c.Request.Context()))
}

// GetSuggestions returns the suggested queries for a fresh thread
func (h *Handler) GetSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sugerencias": h.widgetService.Suggestions()})
}

// StartSession creates a session seeded with the welcome message
func (h *Handler) StartSession(c *gin.Context) {
	session, history, err := h.widgetService.StartSession(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": session.ID, "messages": history})
}

// Chat handles a chat message
func (h *Handler) Chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.widgetService.Chat(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetHistory returns a session's messages in append order
func (h *Handler) GetHistory(c *gin.Context) {
	sessionID := c.Param("session_id")

	history, err := h.widgetService.History(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": history})
}

// Reset clears the session's conversation
func (h *Handler) Reset(c *gin.Context) {
	sessionID := c.Param("session_id")

	if err := h.widgetService.Reset(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "conversation cleared"})
}
