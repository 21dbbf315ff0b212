package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/safety-suggestions/internal/api/http/handlers"
	"github.com/spec-kit/safety-suggestions/internal/auth"
	"github.com/spec-kit/safety-suggestions/internal/cache/cachetest"
	"github.com/spec-kit/safety-suggestions/internal/config"
	"github.com/spec-kit/safety-suggestions/internal/events"
	"github.com/spec-kit/safety-suggestions/internal/repository/repotest"
	"github.com/spec-kit/safety-suggestions/internal/service"
	"github.com/spec-kit/safety-suggestions/internal/upload"
)

type testServer struct {
	app       *fiber.App
	store     *repotest.Store
	cache     *cachetest.MemoryAnalyticsCache
	uploadDir string
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestServer(t *testing.T, development bool, redisErr error) *testServer {
	t.Helper()
	store := repotest.NewStore()
	analyticsCache := &cachetest.MemoryAnalyticsCache{}

	uploadDir := filepath.Join(t.TempDir(), "uploads")
	uploads, err := upload.NewStore(config.UploadConfig{Dir: uploadDir, MaxBytes: 5 << 20}, nil)
	require.NoError(t, err)

	dispatcher := events.NewInMemoryDispatcher(nil)
	service.NewNotificationService(dispatcher, analyticsCache, nil, config.NotificationConfig{}).RegisterHandlers()

	tokens := auth.NewTokenManager("integration-secret", 60)
	validate := handlers.NewValidator()
	suggestionService := service.NewSuggestionService(service.SuggestionDependencies{
		SuggestionRepo: store.Suggestions(),
		Files:          uploads,
		Dispatcher:     dispatcher,
	})

	app := NewApp(AppConfig{
		Name:      "safety-test",
		BodyLimit: uploads.RequestBodyLimit(),
		Middleware: MiddlewareConfig{
			Development:      development,
			CORSAllowOrigins: "*",
		},
		Routes: RouteConfig{
			Health:         handlers.NewHealthHandler("safety-test", "test", stubPinger{}, stubPinger{err: redisErr}),
			Auth:           handlers.NewAuthHandler(service.NewAuthService(store.Users(), tokens, nil), validate),
			Suggestions:    handlers.NewSuggestionsHandler(suggestionService, uploads, validate),
			Comments:       handlers.NewCommentsHandler(service.NewCommentService(store.Comments(), store.Suggestions(), dispatcher), validate),
			Analytics:      handlers.NewAnalyticsHandler(service.NewAnalyticsService(store.Analytics(), analyticsCache, nil)),
			AuthMiddleware: auth.NewAuthMiddleware(tokens, nil),
			Uploads:        uploads,
		},
	})
	return &testServer{app: app, store: store, cache: analyticsCache, uploadDir: uploadDir}
}

func (s *testServer) do(t *testing.T, method, path, token string, body io.Reader, contentType string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (s *testServer) doJSON(t *testing.T, method, path, token string, payload any) (int, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return s.do(t, method, path, token, body, fiber.MIMEApplicationJSON)
}

func (s *testServer) register(t *testing.T, username, role string) {
	t.Helper()
	status, raw := s.doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "pw-" + username,
		"role":     role,
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
}

func (s *testServer) login(t *testing.T, username string) (string, int64) {
	t.Helper()
	status, raw := s.doJSON(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    username + "@example.com",
		"password": "pw-" + username,
	})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	var out struct {
		Token string `json:"token"`
		User  struct {
			UserID int64 `json:"userId"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.NotEmpty(t, out.Token)
	return out.Token, out.User.UserID
}

func suggestionForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

type errorEnvelope struct {
	Message string `json:"message"`
	Error   struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, raw []byte) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return env
}

func TestSuggestionLifecycle(t *testing.T) {
	s := newTestServer(t, false, nil)

	s.register(t, "A", "")
	s.register(t, "boss", "admin")
	aliceToken, aliceID := s.login(t, "A")

	body, ct := suggestionForm(t, map[string]string{
		"user_id":     strconv.FormatInt(aliceID, 10),
		"title":       "Leak",
		"description": "Water pooling by the loading dock",
	})
	status, raw := s.do(t, "POST", "/api/suggestions", aliceToken, body, ct)
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	var created map[string]any
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Equal(t, "submitted", created["status"])
	assert.Nil(t, created["department"])
	assert.Nil(t, created["file_attachment_path"])
	id := int64(created["suggestion_id"].(float64))

	status, raw = s.doJSON(t, "GET", "/api/suggestions/my", aliceToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var mine []map[string]any
	require.NoError(t, json.Unmarshal(raw, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "submitted", mine[0]["status"])

	status, raw = s.doJSON(t, "GET", "/api/suggestions", aliceToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", decodeError(t, raw).Error.Code)

	adminToken, _ := s.login(t, "boss")
	status, raw = s.doJSON(t, "GET", "/api/suggestions", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(raw, &all))
	require.Len(t, all, 1)
	assert.Equal(t, "A", all[0]["submitted_by_username"])

	path := fmt.Sprintf("/api/suggestions/%d", id)
	status, raw = s.doJSON(t, "PUT", path+"/status", adminToken, map[string]string{"status": "approved"})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	var updated struct {
		Message    string         `json:"message"`
		Suggestion map[string]any `json:"suggestion"`
	}
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, "Suggestion status updated successfully", updated.Message)
	assert.Equal(t, "approved", updated.Suggestion["status"])

	status, raw = s.doJSON(t, "GET", path, aliceToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "approved", got["status"])
	assert.Equal(t, "A@example.com", got["submitted_by_email"])

	status, raw = s.doJSON(t, "POST", path+"/comments", aliceToken, map[string]string{"comment_text": "  thanks!  "})
	require.Equal(t, fiber.StatusCreated, status, string(raw))

	status, raw = s.doJSON(t, "GET", path+"/comments", aliceToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var comments []map[string]any
	require.NoError(t, json.Unmarshal(raw, &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "thanks!", comments[0]["comment_text"])
	assert.Equal(t, "A", comments[0]["author_username"])

	status, raw = s.doJSON(t, "GET", "/api/suggestions/analytics", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	var analytics struct {
		StatusCounts []struct {
			Status string `json:"status"`
			Count  int64  `json:"count"`
		} `json:"statusCounts"`
		DepartmentCounts []struct {
			Department string `json:"department"`
			Count      int64  `json:"count"`
		} `json:"departmentCounts"`
		SubmissionsTrend []struct {
			Date  string `json:"date"`
			Count int64  `json:"count"`
		} `json:"submissionsTrend"`
	}
	require.NoError(t, json.Unmarshal(raw, &analytics))
	require.Len(t, analytics.StatusCounts, 1)
	assert.Equal(t, "approved", analytics.StatusCounts[0].Status)
	assert.Equal(t, "Unassigned", analytics.DepartmentCounts[0].Department)
	require.Len(t, analytics.SubmissionsTrend, 1)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, analytics.SubmissionsTrend[0].Date)
}

func TestAuthErrors(t *testing.T) {
	s := newTestServer(t, false, nil)
	s.register(t, "alice", "")

	status, raw := s.doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "pw",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", decodeError(t, raw).Error.Code)

	status, raw = s.doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"username": "bob", "email": "bob@example.com", "password": "pw", "role": "root",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	env := decodeError(t, raw)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Contains(t, env.Error.Details["fields"], "role")

	status, raw = s.doJSON(t, "POST", "/api/auth/register", "", map[string]string{"username": "bob"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "username, email, and password are required", decodeError(t, raw).Message)

	status, raw = s.doJSON(t, "POST", "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "invalid credentials", decodeError(t, raw).Message)

	status, _ = s.do(t, "POST", "/api/auth/login", "", strings.NewReader("{not json"), fiber.MIMEApplicationJSON)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, false, nil)

	status, raw := s.doJSON(t, "GET", "/api/suggestions/my", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	env := decodeError(t, raw)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
	assert.Equal(t, env.Message, env.Error.Message)

	status, _ = s.doJSON(t, "GET", "/api/suggestions/1", "garbage", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	body, ct := suggestionForm(t, map[string]string{"user_id": "1", "title": "t", "description": "d"})
	status, _ = s.do(t, "POST", "/api/suggestions", "", body, ct)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestSuggestionValidationErrors(t *testing.T) {
	s := newTestServer(t, false, nil)
	s.register(t, "alice", "")
	s.register(t, "boss", "admin")
	token, _ := s.login(t, "alice")
	adminToken, _ := s.login(t, "boss")

	status, raw := s.doJSON(t, "GET", "/api/suggestions/abc", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "invalid suggestion ID provided", decodeError(t, raw).Message)

	status, raw = s.doJSON(t, "GET", "/api/suggestions/999", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "suggestion not found", decodeError(t, raw).Message)

	body, ct := suggestionForm(t, map[string]string{"user_id": "12345", "title": "t", "description": "d"})
	status, raw = s.do(t, "POST", "/api/suggestions", token, body, ct)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "user with ID 12345 does not exist", decodeError(t, raw).Message)

	body, ct = suggestionForm(t, map[string]string{"user_id": "x", "title": "t"})
	status, _ = s.do(t, "POST", "/api/suggestions", token, body, ct)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, raw = s.doJSON(t, "PUT", "/api/suggestions/1/status", adminToken, map[string]string{"status": "Approved"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, decodeError(t, raw).Message, "Allowed values are: submitted, under_review")

	status, _ = s.doJSON(t, "PUT", "/api/suggestions/1/status", adminToken, map[string]string{"status": "approved"})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, raw = s.doJSON(t, "POST", "/api/suggestions/1/comments", token, map[string]string{"comment_text": "   "})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "comment text cannot be empty", decodeError(t, raw).Message)

	status, _ = s.doJSON(t, "POST", "/api/suggestions/1/comments", token, map[string]string{"comment_text": "hi"})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, raw = s.doJSON(t, "GET", "/api/suggestions/1/comments", token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, "[]", string(raw))
}

func TestInternalErrorsHideCauseOutsideDevelopment(t *testing.T) {
	for _, dev := range []bool{false, true} {
		t.Run(fmt.Sprintf("development=%v", dev), func(t *testing.T) {
			s := newTestServer(t, dev, nil)
			s.register(t, "alice", "")
			token, _ := s.login(t, "alice")
			s.store.Err = errors.New("connection reset by peer")

			status, raw := s.doJSON(t, "GET", "/api/suggestions/my", token, nil)
			assert.Equal(t, fiber.StatusInternalServerError, status)
			env := decodeError(t, raw)
			assert.Equal(t, "internal server error", env.Message)
			assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
			if dev {
				assert.Equal(t, "connection reset by peer", env.Error.Details["cause"])
			} else {
				assert.Nil(t, env.Error.Details)
				assert.NotContains(t, string(raw), "connection reset")
			}
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, false, nil)

	status, raw := s.do(t, "GET", "/", "", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Safety App Backend is Running!", string(raw))

	status, raw = s.do(t, "GET", "/health/live", "", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(raw), `"alive"`)

	status, raw = s.do(t, "GET", "/health/ready", "", nil, "")
	assert.Equal(t, fiber.StatusOK, status, string(raw))

	status, raw = s.do(t, "GET", "/metrics", "", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(raw), "safety_http_requests_total")

	status, raw = s.do(t, "GET", "/nope", "", nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", decodeError(t, raw).Error.Code)
}

func TestReadinessReportsUnavailableDependency(t *testing.T) {
	s := newTestServer(t, false, errors.New("dial tcp: refused"))

	status, raw := s.do(t, "GET", "/health/ready", "", nil, "")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	env := decodeError(t, raw)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", env.Error.Code)
	assert.Equal(t, "ok", env.Error.Details["postgres"])
	assert.Equal(t, "dial tcp: refused", env.Error.Details["redis"])
}

func attachmentForm(t *testing.T, fields map[string]string, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="attachment"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestSuggestionAttachmentStoredAndOrphansRemoved(t *testing.T) {
	s := newTestServer(t, false, nil)
	s.register(t, "alice", "")
	token, userID := s.login(t, "alice")
	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

	body, ct := attachmentForm(t, map[string]string{
		"user_id": strconv.FormatInt(userID, 10), "title": "Blocked exit", "description": "Pallets", "department": "Warehouse",
	}, "photo.pdf", "application/pdf", pdf)
	status, raw := s.do(t, "POST", "/api/suggestions", token, body, ct)
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	var created map[string]any
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Equal(t, "Warehouse", created["department"])
	assert.Regexp(t, `attachment-\d+-[0-9a-f]{8}\.pdf$`, created["file_attachment_path"])

	body, ct = attachmentForm(t, map[string]string{
		"user_id": "777", "title": "t", "description": "d",
	}, "photo.pdf", "application/pdf", pdf)
	status, _ = s.do(t, "POST", "/api/suggestions", token, body, ct)
	assert.Equal(t, fiber.StatusBadRequest, status)

	entries, err := os.ReadDir(s.uploadDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	body, ct = attachmentForm(t, map[string]string{
		"user_id": strconv.FormatInt(userID, 10), "title": "t", "description": "d",
	}, "notes.txt", "text/plain", []byte("hello"))
	status, raw = s.do(t, "POST", "/api/suggestions", token, body, ct)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "invalid file type. Only JPG, PNG, and PDF files are allowed", decodeError(t, raw).Message)
}

func TestOversizedAttachmentReturnsValidationEnvelope(t *testing.T) {
	s := newTestServer(t, false, nil)
	s.register(t, "alice", "")
	token, userID := s.login(t, "alice")

	pdf := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{'0'}, 7<<20)...)
	body, ct := attachmentForm(t, map[string]string{
		"user_id": strconv.FormatInt(userID, 10), "title": "Scaffold", "description": "Loose boards",
	}, "survey.pdf", "application/pdf", pdf)
	require.Greater(t, body.Len(), 6<<20)

	status, raw := s.do(t, "POST", "/api/suggestions", token, body, ct)
	require.Equal(t, fiber.StatusBadRequest, status, string(raw))
	env := decodeError(t, raw)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Equal(t, "file too large", env.Message)

	entries, err := os.ReadDir(s.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTransportBodyLimitRendersFileTooLarge(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil, false)})
	app.Post("/", func(*fiber.Ctx) error { return fiber.ErrRequestEntityTooLarge })

	resp, err := app.Test(httptest.NewRequest("POST", "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	env := decodeError(t, raw)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Equal(t, "file too large", env.Error.Message)
}

func TestLongPasswordsAreAccepted(t *testing.T) {
	s := newTestServer(t, false, nil)
	accented := strings.Repeat("é", 72)

	status, raw := s.doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"username": "renee", "email": "renee@example.com", "password": accented,
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))

	status, raw = s.doJSON(t, "POST", "/api/auth/login", "", map[string]string{
		"email": "renee@example.com", "password": accented,
	})
	assert.Equal(t, fiber.StatusOK, status, string(raw))

	status, raw = s.doJSON(t, "POST", "/api/auth/login", "", map[string]string{
		"email": "renee@example.com", "password": strings.Repeat("a", 100),
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "invalid credentials", decodeError(t, raw).Message)
}
