package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/safety-suggestions/pkg/util/errorutil"
)

func suggestionIDParam(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errorutil.NewValidationError("invalid suggestion ID provided", map[string]any{"id": raw})
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return errorutil.NewValidationError("invalid request body", nil)
	}
	return nil
}
