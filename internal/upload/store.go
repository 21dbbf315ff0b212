// Package upload stores suggestion attachments on local disk.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/safety-suggestions/internal/config"
	"github.com/spec-kit/safety-suggestions/pkg/util/errorutil"
)

const (
	msgInvalidType = "invalid file type. Only JPG, PNG, and PDF files are allowed"
	msgTooLarge    = "file too large"
)

// MsgTooLarge is reported for attachments over the size limit.
const MsgTooLarge = msgTooLarge

// bodyLimitFactor sizes the transport limit so oversized files reach Save.
const bodyLimitFactor = 4

// minRequestBodyLimit keeps the transport limit usable when attachments are unbounded.
const minRequestBodyLimit = 4 << 20

// AllowedTypes lists the accepted attachment media types.
var AllowedTypes = []string{"image/jpeg", "image/png", "application/pdf"}

// Store writes attachments into a single directory.
type Store struct {
	dir      string
	maxBytes int64
	logger   *zap.Logger
	now      func() time.Time
}

// NewStore creates the upload directory if needed.
func NewStore(cfg config.UploadConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: cfg.Dir, maxBytes: cfg.MaxBytes, logger: logger, now: time.Now}, nil
}

// MaxBytes reports the per-file size limit.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// RequestBodyLimit is the whole-request cap the HTTP server should enforce.
func (s *Store) RequestBodyLimit() int {
	limit := int(s.maxBytes) * bodyLimitFactor
	if limit < minRequestBodyLimit {
		return minRequestBodyLimit
	}
	return limit
}

// Save validates and persists fh, returning the stored path relative to the working directory.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", errorutil.NewValidationError(msgTooLarge, map[string]any{"max_bytes": s.maxBytes})
	}
	if !declaredTypeAllowed(fh.Header.Get("Content-Type")) {
		return "", errorutil.NewValidationError(msgInvalidType, nil)
	}

	src, err := fh.Open()
	if err != nil {
		return "", errorutil.NewInternalError(err)
	}
	defer src.Close()

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return "", errorutil.NewInternalError(err)
	}
	if !mimetype.EqualsAny(detected.String(), AllowedTypes...) {
		return "", errorutil.NewValidationError(msgInvalidType, map[string]any{"detected": detected.String()})
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", errorutil.NewInternalError(err)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		ext = detected.Extension()
	}
	name := fmt.Sprintf("attachment-%d-%s%s", s.now().UnixMilli(), uuid.NewString()[:8], ext)
	path := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errorutil.NewInternalError(err)
	}
	written, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(path)
		return "", errorutil.NewInternalError(err)
	}

	s.logger.Debug("attachment stored",
		zap.String("path", path),
		zap.String("mime", detected.String()),
		zap.Int64("bytes", written))
	return filepath.ToSlash(path), nil
}

// Remove deletes a stored attachment. Failures are logged only.
func (s *Store) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(filepath.FromSlash(path)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove attachment", zap.String("path", path), zap.Error(err))
	}
}

func declaredTypeAllowed(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	for _, allowed := range AllowedTypes {
		if mediaType == allowed {
			return true
		}
	}
	return false
}
