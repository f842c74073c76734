package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/storacha/sandbox/pkg/build"
)

var enabled bool

// SetupErrorReporting configures the Sentry SDK for error reporting. An empty
// dsn leaves reporting disabled.
func SetupErrorReporting(dsn, environment string) error {
	if dsn == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     build.Version,
		Transport:   sentry.NewHTTPSyncTransport(),
	})
	if err != nil {
		return err
	}
	enabled = true
	return nil
}

// Enabled reports whether SetupErrorReporting configured a client.
func Enabled() bool {
	return enabled
}

// NewErrorReportingHandler wraps h so panics are reported before being
// re-raised.
func NewErrorReportingHandler(h http.Handler) http.Handler {
	if !enabled {
		return h
	}
	sentryHandler := sentryhttp.New(sentryhttp.Options{Repanic: true})
	return sentryHandler.Handle(h)
}

// ReportError reports an error to Sentry. Context cancellations are not
// reported.
func ReportError(err error) {
	if !enabled || err == nil || errors.Is(err, context.Canceled) {
		return
	}
	sentry.CaptureException(err)
}

// Flush waits for buffered events to be delivered.
func Flush(timeout time.Duration) {
	if enabled {
		sentry.Flush(timeout)
	}
}
