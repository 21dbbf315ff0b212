package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/safety-suggestions/internal/domain"
	"github.com/spec-kit/safety-suggestions/internal/events"
	"github.com/spec-kit/safety-suggestions/internal/repository"
	"github.com/spec-kit/safety-suggestions/pkg/util/errorutil"
)

// AttachmentRemover deletes a stored upload that no suggestion will reference.
type AttachmentRemover interface {
	Remove(path string)
}

// SuggestionService coordinates suggestion workflows.
type SuggestionService struct {
	suggestions repository.SuggestionRepository
	files       AttachmentRemover
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// SuggestionDependencies bundles collaborators for the suggestion service.
type SuggestionDependencies struct {
	SuggestionRepo repository.SuggestionRepository
	Files          AttachmentRemover
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewSuggestionService constructs the service.
func NewSuggestionService(deps SuggestionDependencies) *SuggestionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionService{
		suggestions: deps.SuggestionRepo,
		files:       deps.Files,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
	}
}

// CreateSuggestionInput mirrors the multipart submission form. UserID is the raw form value.
type CreateSuggestionInput struct {
	UserID         string
	Title          string
	Description    string
	Department     string
	AttachmentPath string
}

// Create persists a new suggestion in the submitted state. The stored attachment is
// removed when the suggestion cannot be created.
func (s *SuggestionService) Create(ctx context.Context, actor *domain.Principal, in CreateSuggestionInput) (suggestion *domain.Suggestion, err error) {
	defer func() {
		if err != nil && in.AttachmentPath != "" {
			s.discardAttachment(in.AttachmentPath, err)
		}
	}()

	userID, parseErr := strconv.ParseInt(strings.TrimSpace(in.UserID), 10, 64)
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if parseErr != nil || title == "" || description == "" {
		return nil, errorutil.NewValidationError("missing required fields: user_id (must be number), title, description", nil)
	}

	suggestion = &domain.Suggestion{
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      domain.StatusSubmitted,
	}
	if dept := strings.TrimSpace(in.Department); dept != "" {
		suggestion.Department = &dept
	}
	if in.AttachmentPath != "" {
		path := in.AttachmentPath
		suggestion.AttachmentPath = &path
	}

	if err := s.suggestions.Create(ctx, suggestion); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, errorutil.NewValidationError(fmt.Sprintf("user with ID %d does not exist", userID), map[string]any{"user_id": userID})
		}
		return nil, errorutil.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:         events.EventSuggestionCreated,
		SuggestionID: suggestion.ID,
		Actor:        actorOf(actor, userID),
		Payload: events.SuggestionCreatedPayload{
			Title:         suggestion.Title,
			Department:    suggestion.Department,
			HasAttachment: suggestion.AttachmentPath != nil,
		},
	})
	return suggestion, nil
}

// ListAll returns every suggestion, newest first.
func (s *SuggestionService) ListAll(ctx context.Context) ([]domain.Suggestion, error) {
	items, err := s.suggestions.ListAll(ctx)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	return items, nil
}

// ListMine returns the caller's own suggestions, newest first.
func (s *SuggestionService) ListMine(ctx context.Context, actor *domain.Principal) ([]domain.Suggestion, error) {
	if actor == nil {
		return nil, errorutil.NewUnauthorized("not authorized, user ID not found")
	}
	items, err := s.suggestions.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	return items, nil
}

// GetByID loads one suggestion with its submitter's username and email.
func (s *SuggestionService) GetByID(ctx context.Context, id int64) (*domain.Suggestion, error) {
	suggestion, err := s.suggestions.GetByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, id)
	}
	return suggestion, nil
}

// UpdateStatus moves a suggestion to status. The value must match one of the
// lifecycle statuses exactly.
func (s *SuggestionService) UpdateStatus(ctx context.Context, actor *domain.Principal, id int64, rawStatus string) (*domain.Suggestion, error) {
	if rawStatus == "" {
		return nil, errorutil.NewValidationError("new status is required in the request body", nil)
	}
	status, ok := domain.ParseSuggestionStatus(rawStatus)
	if !ok {
		allowed := make([]string, 0, len(domain.SuggestionStatuses))
		for _, st := range domain.SuggestionStatuses {
			allowed = append(allowed, string(st))
		}
		return nil, errorutil.NewValidationError(
			"invalid status value. Allowed values are: "+strings.Join(allowed, ", "),
			map[string]any{"status": rawStatus, "allowed": allowed},
		)
	}

	current, err := s.suggestions.GetByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, id)
	}

	updated, err := s.suggestions.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, mapLookupError(err, id)
	}

	s.publishEvent(ctx, events.Event{
		Type:         events.EventSuggestionStatusChanged,
		SuggestionID: id,
		Actor:        actorOf(actor, 0),
		Payload: events.SuggestionStatusChangedPayload{
			OldStatus: current.Status,
			NewStatus: updated.Status,
		},
	})
	return updated, nil
}

func (s *SuggestionService) discardAttachment(path string, cause error) {
	if s.files == nil {
		return
	}
	s.logger.Info("removing orphaned attachment", zap.String("path", path), zap.NamedError("cause", cause))
	s.files.Remove(path)
}

func (s *SuggestionService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(ctx, event)
}
