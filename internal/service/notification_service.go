package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/safety-suggestions/internal/cache"
	"github.com/spec-kit/safety-suggestions/internal/config"
	"github.com/spec-kit/safety-suggestions/internal/domain"
	"github.com/spec-kit/safety-suggestions/internal/events"
	"github.com/spec-kit/safety-suggestions/internal/observability"
)

// NotificationService reacts to domain events: it logs them, updates counters,
// invalidates the analytics cache and hands off to delivery stubs.
type NotificationService struct {
	dispatcher events.Dispatcher
	cache      cache.AnalyticsCache
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, c cache.AnalyticsCache, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if c == nil {
		c = cache.NoopAnalyticsCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		cache:      c,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSuggestionCreated, n.handleSuggestionCreated)
	n.dispatcher.Subscribe(events.EventSuggestionStatusChanged, n.handleSuggestionStatusChanged)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.handleCommentAdded)
}

func (n *NotificationService) handleSuggestionCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("SuggestionCreated", zap.Int64("suggestion_id", event.SuggestionID), zap.Any("payload", event.Payload))

	department := domain.UnassignedDepartment
	if p, ok := event.Payload.(events.SuggestionCreatedPayload); ok && p.Department != nil {
		department = *p.Department
	}
	observability.SuggestionsCreatedTotal.WithLabelValues(department).Inc()

	n.sendEmailNotificationStub(ctx, event)
	return n.cache.Invalidate(ctx)
}

func (n *NotificationService) handleSuggestionStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("SuggestionStatusChanged", zap.Int64("suggestion_id", event.SuggestionID), zap.Any("payload", event.Payload))

	if p, ok := event.Payload.(events.SuggestionStatusChangedPayload); ok {
		observability.SuggestionStatusChangesTotal.WithLabelValues(string(p.NewStatus)).Inc()
	}

	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return n.cache.Invalidate(ctx)
}

func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("CommentAdded", zap.Int64("suggestion_id", event.SuggestionID), zap.Any("payload", event.Payload))
	observability.CommentsCreatedTotal.Inc()
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("suggestion_id", event.SuggestionID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("suggestion_id", event.SuggestionID),
		zap.String("event_type", string(event.Type)))
}
