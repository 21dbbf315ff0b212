package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/safety-suggestions/internal/api/dto"
	"github.com/spec-kit/safety-suggestions/internal/auth"
	"github.com/spec-kit/safety-suggestions/internal/service"
	"github.com/spec-kit/safety-suggestions/pkg/util/errorutil"
)

// CommentsHandler manages the comment thread endpoints.
type CommentsHandler struct {
	service  *service.CommentService
	validate *Validator
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService, validate *Validator) *CommentsHandler {
	return &CommentsHandler{service: commentService, validate: validate}
}

// List GET /api/suggestions/:id/comments.
func (h *CommentsHandler) List(c *fiber.Ctx) error {
	id, err := suggestionIDParam(c)
	if err != nil {
		return err
	}
	items, err := h.service.List(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCommentList(items))
}

// Add POST /api/suggestions/:id/comments.
func (h *CommentsHandler) Add(c *fiber.Ctx) error {
	id, err := suggestionIDParam(c)
	if err != nil {
		return err
	}
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("not authorized, user ID not found")
	}

	var req dto.AddCommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.validate.Validate(&req); err != nil {
		return err
	}

	comment, err := h.service.Add(c.UserContext(), principal, id, req.CommentText)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCommentResponse(comment))
}
