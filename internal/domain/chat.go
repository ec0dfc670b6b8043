package domain

import "time"

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session represents a chat session. A session is fresh until its welcome
// message has been seeded, then active until it is reset.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message represents a chat message. Messages are append-only within a
// session and never mutated after creation.
type Message struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Role       string    `json:"role"` // user, assistant
	Content    string    `json:"content"`
	Confidence *float64  `json:"confidence,omitempty"`
	SourceTag  string    `json:"source_tag,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Hora returns the message timestamp formatted the way the widget renders it.
func (m *Message) Hora() string {
	return m.CreatedAt.Format("15:04")
}

// ChatRequest is the request to send a chat message
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message" binding:"required"`
}

// ChatResponse is the response from a chat message
type ChatResponse struct {
	SessionID  string   `json:"session_id"`
	Answer     string   `json:"answer"`
	Confidence *float64 `json:"confidence,omitempty"`
	SourceTag  string   `json:"source_tag,omitempty"`
}

// HistoryEntry is one rendered message in a session history payload.
type HistoryEntry struct {
	Role       string   `json:"role"`
	Content    string   `json:"content"`
	Hora       string   `json:"hora"`
	Confidence *float64 `json:"confidence,omitempty"`
	SourceTag  string   `json:"source_tag,omitempty"`
}

// Stats represents system statistics
type Stats struct {
	TotalSessions int `json:"total_sessions"`
	TotalMessages int `json:"total_messages"`
	KnowledgeRows int `json:"knowledge_rows"`
	ProductRows   int `json:"product_rows"`
}
