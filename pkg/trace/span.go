package trace

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Kind classifies the role a span plays in a trace. It is a closed
// enumeration dispatched with a switch, never extended.
type Kind int

const (
	// KindInternal is an operation internal to the service.
	KindInternal Kind = iota

	// KindServer is the server-side handling of an inbound request.
	KindServer

	// KindClient is an outbound request to a remote service.
	KindClient

	// KindProducer is the publishing side of an asynchronous message.
	KindProducer

	// KindConsumer is the consuming side of an asynchronous message.
	KindConsumer
)

// String returns the canonical upper-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindServer:
		return "SERVER"
	case KindClient:
		return "CLIENT"
	case KindProducer:
		return "PRODUCER"
	case KindConsumer:
		return "CONSUMER"
	default:
		return "INTERNAL"
	}
}

// StatusCode is the completion status of a span.
type StatusCode int

const (
	// StatusUnset means no status was explicitly recorded.
	StatusUnset StatusCode = iota

	// StatusOK means the operation completed successfully.
	StatusOK

	// StatusError means the operation failed.
	StatusError
)

// String returns the canonical upper-case name of the status code.
func (c StatusCode) String() string {
	switch c {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	default:
		return "UNSET"
	}
}

// Status is a span completion status with an optional message.
type Status struct {
	Code    StatusCode
	Message string
}

// Attribute is a single key/value pair attached to a span. Attributes keep
// insertion order.
type Attribute struct {
	Key   string
	Value string
}

// Event is a timestamped occurrence within a span's lifetime.
type Event struct {
	Name       string
	Timestamp  time.Time
	Attributes []Attribute
}

// Link references a span in another trace. Links correlate saga
// compensation work with the trace that triggered it.
type Link struct {
	TraceID TraceID
	SpanID  SpanID
}

// Attribute limits. Values beyond maxAttributeLength are truncated with an
// ellipsis; attributes beyond maxAttributes are discarded.
const (
	maxAttributes      = 128
	maxAttributeLength = 1024
	ellipsis           = "..."
)

// Span is one observed unit of work. A span is exclusively owned by the
// Tracer that started it until it ends; after that it is handed to the
// sampling engine and must be treated as immutable.
type Span struct {
	// Immutable after start.
	TraceID   TraceID
	SpanID    SpanID
	ParentID  SpanID
	Name      string
	Kind      Kind
	Component Component
	Start     time.Time

	// noop marks the shared sentinel returned when a component's feature
	// flag is off. Every mutator returns immediately for a noop span.
	noop bool

	// ended flips exactly once, either by End or by the watchdog.
	ended atomic.Bool

	mu         sync.Mutex
	End        time.Time
	StatusInfo Status
	attrs      []Attribute
	attrIndex  map[string]int
	events     []Event
	links      []Link

	tracer *Tracer
}

// IsNoop reports whether the span is the disabled-component sentinel.
func (s *Span) IsNoop() bool {
	return s == nil || s.noop
}

// Ended reports whether the span has ended.
func (s *Span) Ended() bool {
	return s.ended.Load()
}

// Context returns the propagation context for the span.
func (s *Span) Context() SpanContext {
	if s.IsNoop() {
		return SpanContext{}
	}
	return SpanContext{
		TraceID: s.TraceID,
		SpanID:  s.SpanID,
		Flags:   s.flags(),
	}
}

func (s *Span) flags() byte {
	// The sampled flag carries the head decision; a tail rule may still
	// upgrade a trace after completion.
	if s.tracer != nil && s.tracer.headSampled(s.TraceID) {
		return FlagSampled
	}
	return 0
}

// SetAttribute attaches a key/value pair to the span. The value passes
// through the identifier sanitizer before storage, keys are normalized to
// lowercase dot-separated form, and limits are enforced: at most 128
// attributes, values truncated to 1024 characters with an ellipsis.
// Setting an existing key overwrites its value in place.
func (s *Span) SetAttribute(key, value string) {
	if s.IsNoop() || s.ended.Load() {
		return
	}
	key = normalizeKey(key)
	if s.tracer != nil && s.tracer.sanitizer != nil {
		value = s.tracer.sanitizer.Sanitize(key, value)
	}
	value = truncate(value)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attrIndex == nil {
		s.attrIndex = make(map[string]int)
	}
	if i, ok := s.attrIndex[key]; ok {
		s.attrs[i].Value = value
		return
	}
	if len(s.attrs) >= maxAttributes {
		return
	}
	s.attrIndex[key] = len(s.attrs)
	s.attrs = append(s.attrs, Attribute{Key: key, Value: value})
}

// AddEvent records a timestamped event on the span. Event attribute values
// pass through the sanitizer like span attributes.
func (s *Span) AddEvent(name string, attrs ...Attribute) {
	if s.IsNoop() || s.ended.Load() {
		return
	}
	clean := make([]Attribute, 0, len(attrs))
	for _, a := range attrs {
		key := normalizeKey(a.Key)
		val := a.Value
		if s.tracer != nil && s.tracer.sanitizer != nil {
			val = s.tracer.sanitizer.Sanitize(key, val)
		}
		clean = append(clean, Attribute{Key: key, Value: truncate(val)})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, Event{
		Name:       name,
		Timestamp:  time.Now(),
		Attributes: clean,
	})
}

// AddLink references a span in another trace, typically the trace that a
// saga compensation is correcting.
func (s *Span) AddLink(traceID TraceID, spanID SpanID) {
	if s.IsNoop() || s.ended.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links = append(s.links, Link{TraceID: traceID, SpanID: spanID})
}

// Attributes returns a copy of the span's attributes in insertion order.
func (s *Span) Attributes() []Attribute {
	if s.IsNoop() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Attribute(nil), s.attrs...)
}

// Attribute returns the value for key and whether it is set.
func (s *Span) Attribute(key string) (string, bool) {
	if s.IsNoop() {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.attrIndex[normalizeKey(key)]
	if !ok {
		return "", false
	}
	return s.attrs[i].Value, true
}

// Events returns a copy of the span's events.
func (s *Span) Events() []Event {
	if s.IsNoop() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

// Links returns a copy of the span's links.
func (s *Span) Links() []Link {
	if s.IsNoop() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Link(nil), s.links...)
}

// Duration returns the span duration, or zero while the span is active.
func (s *Span) Duration() time.Duration {
	if s.IsNoop() || !s.ended.Load() {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.End.Sub(s.Start)
}

// EndWithStatus ends the span exactly once with the given status and hands
// it to the sampling engine. Later calls, including the watchdog's, are
// no-ops.
func (s *Span) EndWithStatus(st Status) {
	if s.IsNoop() {
		return
	}
	if !s.ended.CompareAndSwap(false, true) {
		return
	}

	now := time.Now()
	s.mu.Lock()
	if now.Before(s.Start) {
		// end >= start invariant; clock steps backwards are clamped.
		now = s.Start
	}
	s.End = now
	s.StatusInfo = st
	s.mu.Unlock()

	if s.tracer != nil {
		s.tracer.spanEnded(s)
	}
}

// EndOK ends the span with StatusOK.
func (s *Span) EndOK() {
	s.EndWithStatus(Status{Code: StatusOK})
}

// EndError ends the span with StatusError and the error's message.
func (s *Span) EndError(err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	s.EndWithStatus(Status{Code: StatusError, Message: msg})
}

// forceClose is the watchdog's ACTIVE -> ENDED(timeout) transition. The end
// timestamp is the moment the timeout was detected.
func (s *Span) forceClose() {
	s.EndWithStatus(Status{Code: StatusError, Message: "timeout"})
}

func truncate(v string) string {
	if len(v) <= maxAttributeLength {
		return v
	}
	return v[:maxAttributeLength-len(ellipsis)] + ellipsis
}

// normalizeKey lowercases attribute keys. Keys follow the lowercase
// dot-separated convention (wallet.id, messaging.consumer_lag_ms).
func normalizeKey(key string) string {
	return strings.ToLower(key)
}
