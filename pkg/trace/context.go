package trace

import "context"

// FlagSampled is the W3C trace-flags bit carrying the head sampling
// decision.
const FlagSampled byte = 0x01

// SpanContext is the minimal propagation unit: trace identity, current
// span, the sampled flag, and the optional vendor state string. It is a
// small immutable value, cheap to copy across goroutine and network
// boundaries.
type SpanContext struct {
	TraceID TraceID
	SpanID  SpanID
	Flags   byte

	// State is the raw tracestate header value, carried opaque.
	State string

	// Remote marks a context extracted from a carrier rather than created
	// in this process.
	Remote bool
}

// IsValid reports whether the context carries a usable trace identity.
func (sc SpanContext) IsValid() bool {
	return !sc.TraceID.IsZero() && !sc.SpanID.IsZero()
}

// IsSampled reports whether the sampled flag is set.
func (sc SpanContext) IsSampled() bool {
	return sc.Flags&FlagSampled == FlagSampled
}

type contextKey struct{}

var activeSpanKey contextKey

// ContextWithSpan returns a context carrying the span as the active span.
func ContextWithSpan(ctx context.Context, s *Span) context.Context {
	return context.WithValue(ctx, activeSpanKey, s)
}

// SpanFromContext returns the active span, or nil if none is set.
func SpanFromContext(ctx context.Context) *Span {
	s, _ := ctx.Value(activeSpanKey).(*Span)
	return s
}

// SpanContextFromContext resolves the propagation context for ctx: the
// active span's context if one is set, otherwise the remote context stored
// by an extract or restore operation.
func SpanContextFromContext(ctx context.Context) SpanContext {
	if s := SpanFromContext(ctx); s != nil && !s.IsNoop() {
		return s.Context()
	}
	sc, _ := ctx.Value(remoteContextKey).(SpanContext)
	return sc
}

var remoteContextKey = struct{ name string }{"tracehub-remote-context"}

// ContextWithRemote stores an extracted remote span context on ctx so the
// next started span parents onto it.
func ContextWithRemote(ctx context.Context, sc SpanContext) context.Context {
	sc.Remote = true
	return context.WithValue(ctx, remoteContextKey, sc)
}
