package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/safety-suggestions/internal/auth"
	"github.com/spec-kit/safety-suggestions/internal/cache/cachetest"
	"github.com/spec-kit/safety-suggestions/internal/config"
	"github.com/spec-kit/safety-suggestions/internal/domain"
	"github.com/spec-kit/safety-suggestions/internal/events"
	"github.com/spec-kit/safety-suggestions/internal/repository/repotest"
	"github.com/spec-kit/safety-suggestions/pkg/util/errorutil"
)

type recordingRemover struct {
	removed []string
}

func (r *recordingRemover) Remove(path string) {
	r.removed = append(r.removed, path)
}

type fixture struct {
	store       *repotest.Store
	cache       *cachetest.MemoryAnalyticsCache
	files       *recordingRemover
	published   []events.Event
	tokens      *auth.TokenManager
	auth        *AuthService
	suggestions *SuggestionService
	comments    *CommentService
	analytics   *AnalyticsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: repotest.NewStore(),
		cache: &cachetest.MemoryAnalyticsCache{},
		files: &recordingRemover{},
	}

	dispatcher := events.NewInMemoryDispatcher(nil)
	NewNotificationService(dispatcher, f.cache, nil, config.NotificationConfig{}).RegisterHandlers()
	for _, et := range []events.EventType{events.EventSuggestionCreated, events.EventSuggestionStatusChanged, events.EventCommentAdded} {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			f.published = append(f.published, e)
			return nil
		})
	}

	f.tokens = auth.NewTokenManager("test-secret", 60)
	f.auth = NewAuthService(f.store.Users(), f.tokens, nil)
	f.suggestions = NewSuggestionService(SuggestionDependencies{
		SuggestionRepo: f.store.Suggestions(),
		Files:          f.files,
		Dispatcher:     dispatcher,
	})
	f.comments = NewCommentService(f.store.Comments(), f.store.Suggestions(), dispatcher)
	f.analytics = NewAnalyticsService(f.store.Analytics(), f.cache, nil)
	return f
}

func (f *fixture) register(t *testing.T, username string, role domain.Role) *domain.Principal {
	t.Helper()
	user, err := f.auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "pw-" + username,
		Role:     string(role),
	})
	require.NoError(t, err)
	return &domain.Principal{UserID: user.ID, Username: user.Username, Email: user.Email, Role: user.Role}
}

func requireCode(t *testing.T, err error, code string) *errorutil.DomainError {
	t.Helper()
	require.Error(t, err)
	de := errorutil.ToDomainError(err)
	require.Equal(t, code, de.Code, "unexpected error: %v", err)
	return de
}
