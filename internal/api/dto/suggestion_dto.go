package dto

import (
	"time"

	"github.com/spec-kit/safety-suggestions/internal/domain"
)

// CreateSuggestionForm is the multipart (or urlencoded) submission form.
type CreateSuggestionForm struct {
	UserID      string `form:"user_id" json:"user_id"`
	Title       string `form:"title" json:"title" validate:"max=255"`
	Description string `form:"description" json:"description" validate:"max=10000"`
	Department  string `form:"department" json:"department" validate:"max=100"`
}

// UpdateStatusRequest body of PUT /api/suggestions/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// SuggestionResponse is the wire form of a suggestion row. The submitter fields are
// only present on the endpoints that join the users table.
type SuggestionResponse struct {
	SuggestionID        int64                   `json:"suggestion_id"`
	UserID              int64                   `json:"user_id"`
	Title               string                  `json:"title"`
	Description         string                  `json:"description"`
	Department          *string                 `json:"department"`
	Status              domain.SuggestionStatus `json:"status"`
	CreatedAt           time.Time               `json:"created_at"`
	UpdatedAt           time.Time               `json:"updated_at"`
	FileAttachmentPath  *string                 `json:"file_attachment_path"`
	SubmittedByUsername string                  `json:"submitted_by_username,omitempty"`
	SubmittedByEmail    string                  `json:"submitted_by_email,omitempty"`
}

// StatusUpdateResponse body returned after a status change.
type StatusUpdateResponse struct {
	Message    string             `json:"message"`
	Suggestion SuggestionResponse `json:"suggestion"`
}

// NewSuggestionResponse maps a domain suggestion.
func NewSuggestionResponse(s *domain.Suggestion) SuggestionResponse {
	return SuggestionResponse{
		SuggestionID:        s.ID,
		UserID:              s.UserID,
		Title:               s.Title,
		Description:         s.Description,
		Department:          s.Department,
		Status:              s.Status,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
		FileAttachmentPath:  s.AttachmentPath,
		SubmittedByUsername: s.SubmitterUsername,
		SubmittedByEmail:    s.SubmitterEmail,
	}
}

// NewSuggestionList maps a slice, never returning nil.
func NewSuggestionList(items []domain.Suggestion) []SuggestionResponse {
	out := make([]SuggestionResponse, 0, len(items))
	for i := range items {
		out = append(out, NewSuggestionResponse(&items[i]))
	}
	return out
}
