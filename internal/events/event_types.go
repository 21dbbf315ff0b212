package events

import (
	"time"

	"github.com/spec-kit/safety-suggestions/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSuggestionCreated       EventType = "suggestion_created"
	EventSuggestionStatusChanged EventType = "suggestion_status_changed"
	EventCommentAdded            EventType = "comment_added"
)

// Actor identifies the user whose request produced the event.
type Actor struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	SuggestionID int64     `json:"suggestion_id"`
	Actor        Actor     `json:"actor"`
	Timestamp    time.Time `json:"timestamp"`
	Payload      any       `json:"payload"`
}

// SuggestionCreatedPayload payload.
type SuggestionCreatedPayload struct {
	Title         string  `json:"title"`
	Department    *string `json:"department,omitempty"`
	HasAttachment bool    `json:"has_attachment"`
}

// SuggestionStatusChangedPayload payload.
type SuggestionStatusChangedPayload struct {
	OldStatus domain.SuggestionStatus `json:"old_status"`
	NewStatus domain.SuggestionStatus `json:"new_status"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID   int64  `json:"comment_id"`
	BodyPreview string `json:"body_preview"`
}

// Preview truncates text to at most n runes for log-friendly payloads.
func Preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "…"
}
