package context

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Trace ties log lines of one HTTP request together.
type Trace struct {
	TraceID   string
	RequestID string
}

type traceKey struct{}

// NewTrace picks the trace id from, in order, the active span in ctx,
// traceID and a fresh uuid. An empty requestID is generated as well.
func NewTrace(ctx context.Context, traceID, requestID string) *Trace {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		traceID = sc.TraceID().String()
	}
	if traceID == "" {
		traceID = uuid.NewString()
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return &Trace{TraceID: traceID, RequestID: requestID}
}

// WithTrace stores t in ctx.
func WithTrace(ctx context.Context, t *Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, t)
}

// GetTrace returns the Trace stored in ctx, or nil.
func GetTrace(ctx context.Context) *Trace {
	t, _ := ctx.Value(traceKey{}).(*Trace)
	return t
}

// RequestID returns the request id carried by ctx, or "".
func RequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}
