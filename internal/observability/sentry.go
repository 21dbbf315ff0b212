package observability

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/spec-kit/safety-suggestions/internal/config"
)

// InitSentry configures the global Sentry hub. With an empty DSN the client is
// initialised but drops every event. The returned func flushes pending events.
func InitSentry(cfg config.SentryConfig, app config.AppConfig) (func(), error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      app.Env,
		Release:          app.Name + "@" + app.Version,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
	})
	if err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// CaptureError reports err with request tags attached.
func CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}
