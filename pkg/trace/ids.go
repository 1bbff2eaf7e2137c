package trace

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// TraceID is a 128-bit trace identifier shared by every span of a trace.
type TraceID [16]byte

// SpanID is a 64-bit span identifier, unique within a trace.
type SpanID [8]byte

var (
	zeroTraceID TraceID
	zeroSpanID  SpanID
)

// NewTraceID mints a random 128-bit trace identifier.
func NewTraceID() TraceID {
	return TraceID(uuid.New())
}

// NewSpanID mints a random 64-bit span identifier.
func NewSpanID() SpanID {
	var id SpanID
	for {
		if _, err := rand.Read(id[:]); err != nil {
			// crypto/rand never fails on supported platforms; fall back to
			// uuid bytes rather than returning an invalid all-zero id.
			u := uuid.New()
			copy(id[:], u[:8])
		}
		if id != zeroSpanID {
			return id
		}
	}
}

// String returns the 32-character lowercase hex form.
func (t TraceID) String() string {
	return hex.EncodeToString(t[:])
}

// IsZero reports whether the id is the invalid all-zero identifier.
func (t TraceID) IsZero() bool {
	return t == zeroTraceID
}

// Low returns the low 64 bits of the trace id. The sampling engine hashes
// this value for its deterministic head decision.
func (t TraceID) Low() uint64 {
	return binary.BigEndian.Uint64(t[8:])
}

// String returns the 16-character lowercase hex form.
func (s SpanID) String() string {
	return hex.EncodeToString(s[:])
}

// IsZero reports whether the id is the invalid all-zero identifier.
func (s SpanID) IsZero() bool {
	return s == zeroSpanID
}

// ParseTraceID parses a 32-character hex trace id.
func ParseTraceID(s string) (TraceID, error) {
	var id TraceID
	if len(s) != 32 {
		return id, fmt.Errorf("trace id must be 32 hex characters, got %d", len(s))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return TraceID{}, fmt.Errorf("invalid trace id %q: %w", s, err)
	}
	if id.IsZero() {
		return TraceID{}, fmt.Errorf("trace id must not be all zeros")
	}
	return id, nil
}

// ParseSpanID parses a 16-character hex span id.
func ParseSpanID(s string) (SpanID, error) {
	var id SpanID
	if len(s) != 16 {
		return id, fmt.Errorf("span id must be 16 hex characters, got %d", len(s))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return SpanID{}, fmt.Errorf("invalid span id %q: %w", s, err)
	}
	if id.IsZero() {
		return SpanID{}, fmt.Errorf("span id must not be all zeros")
	}
	return id, nil
}
