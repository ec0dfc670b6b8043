package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acuellar/atiende/internal/config"
	"github.com/acuellar/atiende/internal/domain"
	"github.com/acuellar/atiende/internal/repository"
	"github.com/acuellar/atiende/internal/service"
)

const testAPIKey = "secreto"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sessionRepo := repository.NewSessionRepository(db)
	logger := zap.NewNop()

	profiles := service.NewProfileStore(domain.DefaultProfile())
	knowledgeService := service.NewKnowledgeService(nil, logger)
	composer := service.NewComposer(config.ModeDirect, nil, logger)
	chatService := service.NewChatService(profiles, sessionRepo, knowledgeService, composer, logger)
	widgetService := service.NewWidgetService(profiles, chatService, logger)
	adminService := service.NewAdminService(profiles, knowledgeService, sessionRepo, logger)

	return SetupRouter(adminService, widgetService, RouterConfig{
		APIKey:       testAPIKey,
		AllowOrigins: []string{"*"},
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWidgetProfile(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/widget/profile", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp service.ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Mi Negocio", resp.Nombre)
	assert.NotEmpty(t, resp.Bienvenida)
	assert.Len(t, resp.Sugerencias, 4)
	assert.False(t, resp.Activo)
}

func TestWidgetChatFlow(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/widget/chat",
		domain.ChatRequest{Message: "hola"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp domain.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	assert.NotEmpty(t, resp.Answer)

	// History shows welcome, user message and reply in order.
	w = doJSON(t, router, http.MethodGet, "/api/widget/history/"+resp.SessionID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var history struct {
		Messages []domain.HistoryEntry `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history.Messages, 3)
	assert.Equal(t, domain.RoleAssistant, history.Messages[0].Role)
	assert.Equal(t, "hola", history.Messages[1].Content)

	// Reset clears the thread.
	w = doJSON(t, router, http.MethodPost, "/api/widget/reset/"+resp.SessionID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/widget/history/"+resp.SessionID, nil, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Empty(t, history.Messages)
}

func TestWidgetChatRejectsEmptyBody(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodPost, "/api/widget/chat", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWidgetHistoryUnknownSession(t *testing.T) {
	router := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/api/widget/history/unknown", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRequiresAPIKey(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/admin/stats", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/admin/stats", nil,
		map[string]string{"X-API-Key": testAPIKey})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminProfileSaveIsVisibleOnNextRender(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/admin/profile",
		domain.UpdateProfileRequest{Nombre: "Café Andino", Emoji: "☕"},
		map[string]string{"X-API-Key": testAPIKey})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/widget/profile", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp service.ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Café Andino", resp.Nombre)
	assert.Equal(t, "☕", resp.Emoji)
	assert.True(t, resp.Activo)
}

func TestAdminKnowledgeUploadAndChat(t *testing.T) {
	router := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "conocimiento.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Pregunta,Respuesta\n¿Horario?,9-18h\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/knowledge", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-API-Key", testAPIKey)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"rows":1`))

	chatW := doJSON(t, router, http.MethodPost, "/api/widget/chat",
		domain.ChatRequest{Message: "horario"}, nil)
	require.Equal(t, http.StatusOK, chatW.Code)

	var resp domain.ChatResponse
	require.NoError(t, json.Unmarshal(chatW.Body.Bytes(), &resp))
	assert.Equal(t, "9-18h", resp.Answer)
}

func TestAdminActivateWithoutKnowledge(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/admin/activate", nil,
		map[string]string{"X-API-Key": testAPIKey})
	assert.Equal(t, http.StatusConflict, w.Code)
}
