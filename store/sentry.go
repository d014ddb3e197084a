package store

import "github.com/getsentry/sentry-go"

// captureCorruption reports a CorruptValueError to Sentry if the process
// has called sentry.Init; otherwise it's a no-op, so stores work unmodified
// in tests and in deployments that don't configure a DSN.
func captureCorruption(backend, key string, err error) {
	hub := sentry.CurrentHub()
	if hub == nil || hub.Client() == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("store.backend", backend)
		scope.SetExtra("store.key", key)
		hub.CaptureException(err)
	})
}
