package ports

import "context"

// Tracer is the entry point for recording rule evaluations as spans.
type Tracer interface {
	// Start begins a span for one unit of work.
	Start(ctx context.Context, name string) (context.Context, Span)
}

// Span represents one recorded unit of work.
type Span interface {
	// End completes the span.
	End()
	// RecordError marks the span as failed.
	RecordError(err error)
	// Cached marks the span as served from the cache.
	Cached()
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}
