package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/safety-suggestions/internal/api/dto"
	"github.com/spec-kit/safety-suggestions/internal/auth"
	"github.com/spec-kit/safety-suggestions/internal/service"
	"github.com/spec-kit/safety-suggestions/internal/upload"
	"github.com/spec-kit/safety-suggestions/pkg/util/errorutil"
)

// SuggestionsHandler manages suggestion endpoints.
type SuggestionsHandler struct {
	service  *service.SuggestionService
	files    service.AttachmentRemover
	validate *Validator
}

// NewSuggestionsHandler constructs handler. files removes an attachment stored by the
// upload middleware when the form cannot even be parsed.
func NewSuggestionsHandler(suggestionService *service.SuggestionService, files service.AttachmentRemover, validate *Validator) *SuggestionsHandler {
	return &SuggestionsHandler{service: suggestionService, files: files, validate: validate}
}

// Create POST /api/suggestions (multipart, optional "attachment" file).
func (h *SuggestionsHandler) Create(c *fiber.Ctx) error {
	attachment := upload.AttachmentPath(c)

	var form dto.CreateSuggestionForm
	err := parseBody(c, &form)
	if err == nil {
		err = h.validate.Validate(&form)
	}
	if err != nil {
		if attachment != "" && h.files != nil {
			h.files.Remove(attachment)
		}
		return err
	}

	principal, _ := auth.PrincipalFromContext(c)
	suggestion, err := h.service.Create(c.UserContext(), principal, service.CreateSuggestionInput{
		UserID:         form.UserID,
		Title:          form.Title,
		Description:    form.Description,
		Department:     form.Department,
		AttachmentPath: attachment,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewSuggestionResponse(suggestion))
}

// ListAll GET /api/suggestions (admin).
func (h *SuggestionsHandler) ListAll(c *fiber.Ctx) error {
	items, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSuggestionList(items))
}

// ListMine GET /api/suggestions/my.
func (h *SuggestionsHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("not authorized, user ID not found")
	}
	items, err := h.service.ListMine(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSuggestionList(items))
}

// Get GET /api/suggestions/:id.
func (h *SuggestionsHandler) Get(c *fiber.Ctx) error {
	id, err := suggestionIDParam(c)
	if err != nil {
		return err
	}
	suggestion, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSuggestionResponse(suggestion))
}

// UpdateStatus PUT /api/suggestions/:id/status (admin).
func (h *SuggestionsHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := suggestionIDParam(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	principal, _ := auth.PrincipalFromContext(c)
	updated, err := h.service.UpdateStatus(c.UserContext(), principal, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(dto.StatusUpdateResponse{
		Message:    "Suggestion status updated successfully",
		Suggestion: dto.NewSuggestionResponse(updated),
	})
}
