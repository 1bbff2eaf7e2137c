package export

import (
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"

	"bloco-hq/tracehub/pkg/trace"
)

// scopeName identifies this library in exported telemetry.
const scopeName = "bloco-hq/tracehub"

// toResourceSpans converts a batch of finished spans to the OTLP wire
// representation, grouped under one resource carrying the service name.
func toResourceSpans(serviceName string, spans []*trace.Span) *tracepb.ResourceSpans {
	out := make([]*tracepb.Span, 0, len(spans))
	for _, s := range spans {
		out = append(out, toProtoSpan(s))
	}
	return &tracepb.ResourceSpans{
		Resource: &resourcepb.Resource{
			Attributes: []*commonpb.KeyValue{
				stringAttr("service.name", serviceName),
			},
		},
		ScopeSpans: []*tracepb.ScopeSpans{{
			Scope: &commonpb.InstrumentationScope{Name: scopeName},
			Spans: out,
		}},
	}
}

func toProtoSpan(s *trace.Span) *tracepb.Span {
	traceID := s.TraceID
	spanID := s.SpanID

	p := &tracepb.Span{
		TraceId:           traceID[:],
		SpanId:            spanID[:],
		Name:              s.Name,
		Kind:              toProtoKind(s.Kind),
		StartTimeUnixNano: uint64(s.Start.UnixNano()),
		EndTimeUnixNano:   uint64(s.End.UnixNano()),
		Status:            toProtoStatus(s.StatusInfo),
	}
	if !s.ParentID.IsZero() {
		parent := s.ParentID
		p.ParentSpanId = parent[:]
	}

	for _, a := range s.Attributes() {
		p.Attributes = append(p.Attributes, stringAttr(a.Key, a.Value))
	}
	for _, e := range s.Events() {
		ev := &tracepb.Span_Event{
			Name:         e.Name,
			TimeUnixNano: uint64(e.Timestamp.UnixNano()),
		}
		for _, a := range e.Attributes {
			ev.Attributes = append(ev.Attributes, stringAttr(a.Key, a.Value))
		}
		p.Events = append(p.Events, ev)
	}
	for _, l := range s.Links() {
		linkTrace := l.TraceID
		linkSpan := l.SpanID
		p.Links = append(p.Links, &tracepb.Span_Link{
			TraceId: linkTrace[:],
			SpanId:  linkSpan[:],
		})
	}
	return p
}

func toProtoKind(k trace.Kind) tracepb.Span_SpanKind {
	switch k {
	case trace.KindServer:
		return tracepb.Span_SPAN_KIND_SERVER
	case trace.KindClient:
		return tracepb.Span_SPAN_KIND_CLIENT
	case trace.KindProducer:
		return tracepb.Span_SPAN_KIND_PRODUCER
	case trace.KindConsumer:
		return tracepb.Span_SPAN_KIND_CONSUMER
	default:
		return tracepb.Span_SPAN_KIND_INTERNAL
	}
}

func toProtoStatus(st trace.Status) *tracepb.Status {
	switch st.Code {
	case trace.StatusOK:
		return &tracepb.Status{Code: tracepb.Status_STATUS_CODE_OK}
	case trace.StatusError:
		return &tracepb.Status{Code: tracepb.Status_STATUS_CODE_ERROR, Message: st.Message}
	default:
		return &tracepb.Status{Code: tracepb.Status_STATUS_CODE_UNSET}
	}
}

func stringAttr(key, value string) *commonpb.KeyValue {
	return &commonpb.KeyValue{
		Key:   key,
		Value: &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: value}},
	}
}
