package propagation

import (
	"context"
	"log/slog"
	"net/http"

	"bloco-hq/tracehub/pkg/trace"
)

// Carrier abstracts the key/value medium trace identity travels in:
// transport headers, message envelopes, or plain maps.
type Carrier interface {
	// Get returns the value for key, or "" when absent.
	Get(key string) string
	// Set stores key to value, replacing any previous value.
	Set(key, value string)
}

// HeaderCarrier adapts http.Header to the Carrier interface.
type HeaderCarrier http.Header

func (c HeaderCarrier) Get(key string) string { return http.Header(c).Get(key) }
func (c HeaderCarrier) Set(key, value string) { http.Header(c).Set(key, value) }

// MapCarrier adapts a plain string map to the Carrier interface.
type MapCarrier map[string]string

func (c MapCarrier) Get(key string) string { return c[key] }
func (c MapCarrier) Set(key, value string) { c[key] = value }

// Propagator moves trace identity across process boundaries using the
// W3C Trace Context wire format.
//
// Extraction never hard-fails: a missing or malformed token leaves the
// context without a remote parent, so the next span started from it
// becomes a fresh root trace.
type Propagator struct {
	logger *slog.Logger
}

// NewPropagator creates a propagator logging extraction anomalies to
// logger.
func NewPropagator(logger *slog.Logger) *Propagator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Propagator{logger: logger}
}

// Inject writes the active span context from ctx into carrier. A context
// with no valid span context injects nothing.
func (p *Propagator) Inject(ctx context.Context, carrier Carrier) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return
	}
	carrier.Set(TraceparentHeader, FormatTraceparent(sc))
	if sc.State != "" {
		carrier.Set(TracestateHeader, sc.State)
	}
}

// Extract reads a remote span context from carrier into a derived
// context. When the token is absent the input context is returned as is;
// when it is malformed a warning is logged and the input context is
// returned as is, so the caller mints a new root trace.
func (p *Propagator) Extract(ctx context.Context, carrier Carrier) context.Context {
	token := carrier.Get(TraceparentHeader)
	if token == "" {
		return ctx
	}

	sc, err := ParseTraceparent(token)
	if err != nil {
		p.logger.Warn("discarding malformed trace context, starting new root trace",
			slog.String("error", err.Error()))
		return ctx
	}
	sc.State = carrier.Get(TracestateHeader)

	return trace.ContextWithRemote(ctx, sc)
}
