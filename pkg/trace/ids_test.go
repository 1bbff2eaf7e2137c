package trace

import (
	"strings"
	"testing"
)

func TestNewTraceID(t *testing.T) {
	seen := make(map[TraceID]bool)
	for i := 0; i < 100; i++ {
		id := NewTraceID()
		if id.IsZero() {
			t.Fatal("minted all-zero trace id")
		}
		if seen[id] {
			t.Fatal("minted duplicate trace id")
		}
		seen[id] = true
	}
}

func TestNewSpanID(t *testing.T) {
	seen := make(map[SpanID]bool)
	for i := 0; i < 100; i++ {
		id := NewSpanID()
		if id.IsZero() {
			t.Fatal("minted all-zero span id")
		}
		if seen[id] {
			t.Fatal("minted duplicate span id")
		}
		seen[id] = true
	}
}

func TestParseTraceID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "valid", input: "4bf92f3577b34da6a3ce929d0e0e4736"},
		{name: "too short", input: "4bf92f35", wantErr: "32 hex characters"},
		{name: "too long", input: "4bf92f3577b34da6a3ce929d0e0e473600", wantErr: "32 hex characters"},
		{name: "non-hex", input: "4bf92f3577b34da6a3ce929d0e0e473g", wantErr: "invalid trace id"},
		{name: "all zeros", input: "00000000000000000000000000000000", wantErr: "all zeros"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseTraceID(tt.input)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error containing %q, got: %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id.String() != tt.input {
				t.Errorf("round trip mismatch: %s != %s", id.String(), tt.input)
			}
		})
	}
}

func TestParseSpanID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "valid", input: "00f067aa0ba902b7"},
		{name: "too short", input: "00f067aa", wantErr: "16 hex characters"},
		{name: "non-hex", input: "00f067aa0ba902bz", wantErr: "invalid span id"},
		{name: "all zeros", input: "0000000000000000", wantErr: "all zeros"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseSpanID(tt.input)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error containing %q, got: %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id.String() != tt.input {
				t.Errorf("round trip mismatch: %s != %s", id.String(), tt.input)
			}
		})
	}
}

func TestTraceIDLow(t *testing.T) {
	id, err := ParseTraceID("4bf92f3577b34da600000000000000ff")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := id.Low(); got != 0xff {
		t.Errorf("expected low bits 0xff, got %#x", got)
	}
}
