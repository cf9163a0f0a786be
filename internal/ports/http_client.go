package ports

import (
	"context"
	"net/http"
)

// HTTPClient abstracts HTTP operations for dependency injection.
// The standard *http.Client satisfies this interface.
type HTTPClient interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}

type skipInstrumentationKey struct{}

// WithoutInstrumentation tags ctx so that request instrumentation does not
// record requests made with it. Transports tag their own requests to avoid
// tracing the telemetry they deliver.
func WithoutInstrumentation(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipInstrumentationKey{}, true)
}

// InstrumentationDisabled reports whether ctx carries the skip tag.
func InstrumentationDisabled(ctx context.Context) bool {
	v, _ := ctx.Value(skipInstrumentationKey{}).(bool)
	return v
}
