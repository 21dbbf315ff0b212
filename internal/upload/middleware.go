package upload

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/safety-suggestions/pkg/util/errorutil"
)

// FieldName is the multipart field carrying the attachment.
const FieldName = "attachment"

const localsKey = "upload_attachment_path"

// Middleware stores an optional single attachment before the handler runs.
// Requests without a multipart body or without the field pass through untouched.
func Middleware(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
			return c.Next()
		}

		form, err := c.MultipartForm()
		if err != nil {
			return errorutil.NewValidationError("file upload error: "+err.Error(), nil)
		}
		files := form.File[FieldName]
		if len(files) == 0 {
			return c.Next()
		}
		if len(files) > 1 {
			return errorutil.NewValidationError("file upload error: only one attachment is allowed", nil)
		}

		path, err := store.Save(files[0])
		if err != nil {
			return err
		}
		c.Locals(localsKey, path)
		return c.Next()
	}
}

// AttachmentPath returns the stored path set by Middleware, or "".
func AttachmentPath(c *fiber.Ctx) string {
	path, _ := c.Locals(localsKey).(string)
	return path
}
