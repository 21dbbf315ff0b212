package dto

import (
	"time"

	"github.com/spec-kit/safety-suggestions/internal/domain"
)

// AddCommentRequest body of POST /api/suggestions/:id/comments.
type AddCommentRequest struct {
	CommentText string `json:"comment_text" validate:"max=5000"`
}

// CommentResponse is the wire form of a comment.
type CommentResponse struct {
	CommentID      int64     `json:"comment_id"`
	SuggestionID   int64     `json:"suggestion_id"`
	UserID         int64     `json:"user_id"`
	CommentText    string    `json:"comment_text"`
	CreatedAt      time.Time `json:"created_at"`
	AuthorUsername string    `json:"author_username"`
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		CommentID:      c.ID,
		SuggestionID:   c.SuggestionID,
		UserID:         c.UserID,
		CommentText:    c.Text,
		CreatedAt:      c.CreatedAt,
		AuthorUsername: c.AuthorUsername,
	}
}

// NewCommentList maps a slice, never returning nil.
func NewCommentList(items []domain.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(items))
	for i := range items {
		out = append(out, NewCommentResponse(&items[i]))
	}
	return out
}
