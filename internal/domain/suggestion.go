package domain

import "time"

// SuggestionStatus enumerates lifecycle stages for a suggestion.
type SuggestionStatus string

const (
	StatusSubmitted   SuggestionStatus = "submitted"
	StatusUnderReview SuggestionStatus = "under_review"
	StatusApproved    SuggestionStatus = "approved"
	StatusRejected    SuggestionStatus = "rejected"
	StatusImplemented SuggestionStatus = "implemented"
)

// SuggestionStatuses lists every allowed status in lifecycle order.
var SuggestionStatuses = []SuggestionStatus{
	StatusSubmitted,
	StatusUnderReview,
	StatusApproved,
	StatusRejected,
	StatusImplemented,
}

// ParseSuggestionStatus matches raw exactly (case-sensitive) against the allowed set.
func ParseSuggestionStatus(raw string) (SuggestionStatus, bool) {
	for _, status := range SuggestionStatuses {
		if string(status) == raw {
			return status, true
		}
	}
	return "", false
}

// Suggestion is a safety report submitted by a user.
type Suggestion struct {
	ID             int64
	UserID         int64
	Title          string
	Description    string
	Department     *string
	AttachmentPath *string
	Status         SuggestionStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Populated by joined queries only.
	SubmitterUsername string
	SubmitterEmail    string
}
