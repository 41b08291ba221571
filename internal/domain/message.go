package domain

import (
	"strings"
	"time"
)

// Sender is a closed tag: who a timeline entry belongs to. SenderLoading marks
// the transient placeholder that stands in for a reply in flight; it is never
// persisted.
type Sender string

const (
	SenderUser    Sender = "user"
	SenderBot     Sender = "bot"
	SenderLoading Sender = "loading"
)

// ErrorMarker prefixes reply text that represents a failed request. The
// suggestion parser and the renderer special-case marked text.
const ErrorMarker = "⚠️"

// Message is one conversation timeline entry. Insertion order is the ordering
// authority; Timestamp exists for display only.
type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	ModelUsed string    `json:"modelUsed,omitempty"`
}

// IsError reports whether the message carries a normalized error text.
func (m Message) IsError() bool {
	return strings.HasPrefix(m.Text, ErrorMarker)
}

// Role tags an outbound history item.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// HistoryItem is the reduced projection of a Message sent as context with a
// request. Derived, never stored.
type HistoryItem struct {
	Role    Role
	Content string
}
