package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acuellar/atiende/internal/domain"
)

func newTestRepo(t *testing.T) *SessionRepository {
	t.Helper()
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSessionRepository(db)
}

func TestSessionCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)

	session := &domain.Session{}
	require.NoError(t, repo.Create(session))
	require.NotEmpty(t, session.ID)

	got, err := repo.Get(session.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.ID, got.ID)

	missing, err := repo.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMessagesKeepAppendOrder(t *testing.T) {
	repo := newTestRepo(t)

	session := &domain.Session{}
	require.NoError(t, repo.Create(session))

	contents := []string{"bienvenida", "hola", "respuesta", "otra pregunta"}
	for i, content := range contents {
		role := domain.RoleAssistant
		if i%2 == 1 {
			role = domain.RoleUser
		}
		require.NoError(t, repo.AppendMessage(&domain.Message{
			SessionID: session.ID,
			Role:      role,
			Content:   content,
		}))
	}

	messages, err := repo.GetMessages(session.ID)
	require.NoError(t, err)
	require.Len(t, messages, len(contents))
	for i, m := range messages {
		assert.Equal(t, contents[i], m.Content)
	}
}

func TestMessageConfidenceAndSourceRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	session := &domain.Session{}
	require.NoError(t, repo.Create(session))

	confidence := 0.73
	require.NoError(t, repo.AppendMessage(&domain.Message{
		SessionID:  session.ID,
		Role:       domain.RoleAssistant,
		Content:    "respuesta",
		Confidence: &confidence,
		SourceTag:  domain.SourceSemantic,
	}))
	require.NoError(t, repo.AppendMessage(&domain.Message{
		SessionID: session.ID,
		Role:      domain.RoleUser,
		Content:   "pregunta",
	}))

	messages, err := repo.GetMessages(session.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	require.NotNil(t, messages[0].Confidence)
	assert.InDelta(t, 0.73, *messages[0].Confidence, 1e-9)
	assert.Equal(t, domain.SourceSemantic, messages[0].SourceTag)

	assert.Nil(t, messages[1].Confidence)
	assert.Empty(t, messages[1].SourceTag)
}

func TestResetDeletesOnlyThatSession(t *testing.T) {
	repo := newTestRepo(t)

	first := &domain.Session{}
	second := &domain.Session{}
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))

	for _, id := range []string{first.ID, second.ID} {
		require.NoError(t, repo.AppendMessage(&domain.Message{
			SessionID: id, Role: domain.RoleUser, Content: "hola",
		}))
	}

	require.NoError(t, repo.Reset(first.ID))

	count, err := repo.CountMessages(first.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = repo.CountMessages(second.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCounts(t *testing.T) {
	repo := newTestRepo(t)

	session := &domain.Session{}
	require.NoError(t, repo.Create(session))
	require.NoError(t, repo.AppendMessage(&domain.Message{
		SessionID: session.ID, Role: domain.RoleUser, Content: "hola",
	}))

	sessions, err := repo.CountSessions()
	require.NoError(t, err)
	assert.Equal(t, 1, sessions)

	messages, err := repo.CountAllMessages()
	require.NoError(t, err)
	assert.Equal(t, 1, messages)
}
