package monitoring

import (
	"fmt"

	"github.com/getsentry/sentry-go"

	"massage-board-backend/config"
)

// InitSentry configures the global hub. A missing DSN leaves reporting disabled.
func InitSentry(cfg config.SentryConfig) (bool, error) {
	if cfg.DSN == "" {
		return false, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          "massage-board@" + Version,
		EnableTracing:    true,
		TracesSampleRate: cfg.SampleRate(),
	})
	if err != nil {
		return false, fmt.Errorf("sentry initialization failed: %w", err)
	}
	return true, nil
}

// Version is stamped at build time with -ldflags.
var Version = "dev"

func CaptureError(err error, context map[string]interface{}) {
	if hub := sentry.CurrentHub(); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			for k, v := range context {
				scope.SetExtra(k, v)
			}
			hub.CaptureException(err)
		})
	}
}
