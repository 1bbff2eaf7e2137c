package propagation

import (
	"fmt"
	"strings"

	"bloco-hq/tracehub/pkg/trace"
)

// Header and extension attribute names. The same names are used for
// transport headers and CloudEvents extension attributes.
const (
	TraceparentHeader = "traceparent"
	TracestateHeader  = "tracestate"
)

// supportedVersion is the only traceparent version this propagator emits.
// Tokens with a higher version are still accepted if the 00 grammar parses.
const supportedVersion = "00"

// FormatTraceparent serializes a span context as a W3C Trace Context 1.0
// traceparent token: version-traceid-spanid-flags.
func FormatTraceparent(sc trace.SpanContext) string {
	return fmt.Sprintf("%s-%s-%s-%02x",
		supportedVersion, sc.TraceID.String(), sc.SpanID.String(), sc.Flags)
}

// ParseTraceparent parses a traceparent token, validating the fixed
// grammar. The returned context is marked remote.
func ParseTraceparent(token string) (trace.SpanContext, error) {
	parts := strings.Split(strings.TrimSpace(token), "-")
	if len(parts) < 4 {
		return trace.SpanContext{}, fmt.Errorf("traceparent %q: expected 4 fields, got %d", token, len(parts))
	}

	version := parts[0]
	if len(version) != 2 || !isHex(version) {
		return trace.SpanContext{}, fmt.Errorf("traceparent %q: malformed version", token)
	}
	if version == "ff" {
		return trace.SpanContext{}, fmt.Errorf("traceparent %q: forbidden version ff", token)
	}
	if version == supportedVersion && len(parts) != 4 {
		return trace.SpanContext{}, fmt.Errorf("traceparent %q: version 00 carries exactly 4 fields", token)
	}

	traceID, err := trace.ParseTraceID(parts[1])
	if err != nil {
		return trace.SpanContext{}, fmt.Errorf("traceparent %q: %w", token, err)
	}
	spanID, err := trace.ParseSpanID(parts[2])
	if err != nil {
		return trace.SpanContext{}, fmt.Errorf("traceparent %q: %w", token, err)
	}

	flagsField := parts[3]
	if len(flagsField) != 2 || !isHex(flagsField) {
		return trace.SpanContext{}, fmt.Errorf("traceparent %q: malformed flags", token)
	}
	flags := byte(hexNibble(flagsField[0])<<4 | hexNibble(flagsField[1]))

	return trace.SpanContext{
		TraceID: traceID,
		SpanID:  spanID,
		Flags:   flags,
		Remote:  true,
	}, nil
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func hexNibble(c byte) int {
	if c >= 'a' {
		return int(c-'a') + 10
	}
	return int(c - '0')
}
