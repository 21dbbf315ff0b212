package service

import (
	"context"
	"strings"

	"github.com/spec-kit/safety-suggestions/internal/domain"
	"github.com/spec-kit/safety-suggestions/internal/events"
	"github.com/spec-kit/safety-suggestions/internal/repository"
	"github.com/spec-kit/safety-suggestions/pkg/util/errorutil"
)

const commentPreviewRunes = 80

// CommentService manages the discussion thread under a suggestion.
type CommentService struct {
	comments    repository.CommentRepository
	suggestions repository.SuggestionRepository
	dispatcher  events.Dispatcher
}

// NewCommentService constructs the service.
func NewCommentService(comments repository.CommentRepository, suggestions repository.SuggestionRepository, dispatcher events.Dispatcher) *CommentService {
	return &CommentService{comments: comments, suggestions: suggestions, dispatcher: dispatcher}
}

// List returns the comments on a suggestion, oldest first. An unknown suggestion
// yields an empty list.
func (s *CommentService) List(ctx context.Context, suggestionID int64) ([]domain.Comment, error) {
	items, err := s.comments.ListBySuggestion(ctx, suggestionID)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	return items, nil
}

// Add stores a trimmed comment authored by actor.
func (s *CommentService) Add(ctx context.Context, actor *domain.Principal, suggestionID int64, text string) (*domain.Comment, error) {
	if actor == nil {
		return nil, errorutil.NewUnauthorized("not authorized, user ID not found")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errorutil.NewValidationError("comment text cannot be empty", nil)
	}

	exists, err := s.suggestions.Exists(ctx, suggestionID)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	if !exists {
		return nil, errorutil.NewNotFound("suggestion", map[string]any{"suggestion_id": suggestionID})
	}

	comment := &domain.Comment{
		SuggestionID: suggestionID,
		UserID:       actor.UserID,
		Text:         text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		// The suggestion or author vanished between the check and the insert.
		if repository.IsForeignKeyViolation(err) {
			return nil, errorutil.NewNotFound("suggestion", map[string]any{"suggestion_id": suggestionID})
		}
		return nil, errorutil.NewInternalError(err)
	}
	comment.AuthorUsername = actor.Username

	if s.dispatcher != nil {
		s.dispatcher.Publish(ctx, events.Event{
			Type:         events.EventCommentAdded,
			SuggestionID: suggestionID,
			Actor:        actorOf(actor, 0),
			Payload: events.CommentAddedPayload{
				CommentID:   comment.ID,
				BodyPreview: events.Preview(comment.Text, commentPreviewRunes),
			},
		})
	}
	return comment, nil
}
