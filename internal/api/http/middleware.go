package http

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/spec-kit/safety-suggestions/internal/observability"
	"github.com/spec-kit/safety-suggestions/internal/upload"
	apperrors "github.com/spec-kit/safety-suggestions/pkg/util/errorutil"
)

// MiddlewareConfig controls the global middleware chain.
type MiddlewareConfig struct {
	Logger           *zap.Logger
	Timeout          time.Duration
	Development      bool
	CORSAllowOrigins string
}

// RegisterMiddlewares attaches global middlewares: request ids, CORS, request logging,
// error rendering and the per-request timeout, in that order.
func RegisterMiddlewares(app *fiber.App, cfg MiddlewareConfig) {
	app.Use(requestid.New(requestid.Config{ContextKey: observability.RequestIDKey}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,OPTIONS",
	}))
	app.Use(observability.RequestLogger(cfg.Logger))
	app.Use(errorHandlingMiddleware(cfg.Logger, cfg.Development))
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
}

// ErrorHandler renders errors that escape the middleware chain; install it as
// fiber.Config.ErrorHandler.
func ErrorHandler(logger *zap.Logger, development bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		renderError(c, logger, development, err)
		return nil
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, development bool) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(fmt.Errorf("panic: %v", r))
			}
			if err != nil {
				renderError(c, logger, development, err)
				err = nil
			}
		}()
		return c.Next()
	}
}

func renderError(c *fiber.Ctx, logger *zap.Logger, development bool, err error) {
	domainErr := toDomainError(err)
	observability.RecordError(domainErr.Code)

	details := maps.Clone(domainErr.Details)
	if domainErr.HTTPStatus >= http.StatusInternalServerError {
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", domainErr.HTTPStatus),
			zap.Error(err),
		}
		if rid, ok := c.Locals(observability.RequestIDKey).(string); ok {
			fields = append(fields, zap.String("request_id", rid))
		}
		logger.Error("request failed", fields...)
		observability.CaptureError(err, map[string]string{
			"method": c.Method(),
			"route":  c.Route().Path,
		})
		if development && domainErr.Err != nil {
			if details == nil {
				details = map[string]any{}
			}
			details["cause"] = domainErr.Err.Error()
		}
	}

	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(details) > 0 {
		body["details"] = details
	}
	c.Status(domainErr.HTTPStatus)
	_ = c.JSON(fiber.Map{
		"message": domainErr.Message,
		"error":   body,
	})
}

// toDomainError extends the shared mapping with Fiber's transport errors.
func toDomainError(err error) *apperrors.DomainError {
	var de *apperrors.DomainError
	if errors.As(err, &de) {
		return de
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code == http.StatusRequestEntityTooLarge {
			return apperrors.NewDomainError(apperrors.CodeValidation, upload.MsgTooLarge, http.StatusBadRequest, nil)
		}
		return apperrors.NewDomainError(codeForStatus(fe.Code), fe.Message, fe.Code, nil)
	}
	return apperrors.ToDomainError(err)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return apperrors.CodeValidation
	case http.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case http.StatusForbidden:
		return apperrors.CodeForbidden
	case http.StatusNotFound:
		return apperrors.CodeNotFound
	case http.StatusConflict:
		return apperrors.CodeConflict
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	}
	if status >= http.StatusInternalServerError {
		return apperrors.CodeInternal
	}
	return "HTTP_ERROR"
}
