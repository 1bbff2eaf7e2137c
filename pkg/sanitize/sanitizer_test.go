package sanitize

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"testing"

	"bloco-hq/tracehub/pkg/config"
)

func newTestSanitizer(t *testing.T) *Sanitizer {
	t.Helper()
	s, err := New(config.NewStore(config.NewDefault()), slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestSanitizeClassification(t *testing.T) {
	s := newTestSanitizer(t)

	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{
			name:  "allow listed key passes through",
			key:   "transaction.id",
			value: "tx-42",
			want:  "tx-42",
		},
		{
			name:  "allow list is case insensitive",
			key:   "Transaction.ID",
			value: "tx-42",
			want:  "tx-42",
		},
		{
			name:  "redact listed key is replaced",
			key:   "password",
			value: "hunter2",
			want:  RedactionMarker,
		},
		{
			name:  "unknown key fails closed",
			key:   "customer.address",
			value: "1 Main St",
			want:  RedactionMarker,
		},
		{
			name:  "empty value stays empty",
			key:   "password",
			value: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Sanitize(tt.key, tt.value); got != tt.want {
				t.Errorf("Sanitize(%q, %q) = %q, want %q", tt.key, tt.value, got, tt.want)
			}
		})
	}
}

func TestSanitizeHashKeys(t *testing.T) {
	s := newTestSanitizer(t)

	got := s.Sanitize("wallet.id", "wallet-123")

	sum := sha256.Sum256([]byte("wallet-123"))
	want := hex.EncodeToString(sum[:])[:16]
	if got != want {
		t.Errorf("Sanitize(wallet.id) = %q, want %q", got, want)
	}

	// Same input always yields the same digest so traces still correlate.
	if again := s.Sanitize("wallet.id", "wallet-123"); again != got {
		t.Errorf("digest not deterministic: %q then %q", got, again)
	}

	// Different inputs diverge.
	if other := s.Sanitize("wallet.id", "wallet-456"); other == got {
		t.Errorf("distinct values produced the same digest %q", got)
	}

	// Re-sanitizing a digest is a no-op.
	if twice := s.Sanitize("wallet.id", got); twice != got {
		t.Errorf("Sanitize(digest) = %q, want %q", twice, got)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	s := newTestSanitizer(t)

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "redacted marker", key: "token", value: "opaque"},
		{name: "allowed value", key: "event.type", value: "FUNDS_ADDED"},
		{name: "masked statement", key: "db.statement", value: "SELECT * FROM wallet WHERE id = 7"},
		{name: "masked url", key: "http.url", value: "https://api.example.com/pay?token=abc&amount=5"},
		{name: "masked message", key: "error.message", value: "bad email user@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := s.Sanitize(tt.key, tt.value)
			twice := s.Sanitize(tt.key, once)
			if once != twice {
				t.Errorf("not idempotent: first %q, second %q", once, twice)
			}
		})
	}
}

func TestSanitizeHotReload(t *testing.T) {
	store := config.NewStore(config.NewDefault())
	s, err := New(store, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got := s.Sanitize("customer.tier", "gold"); got != RedactionMarker {
		t.Fatalf("Sanitize before reload = %q, want %q", got, RedactionMarker)
	}

	next := config.NewDefault()
	next.Tracing.Sanitizer.AllowKeys = append(next.Tracing.Sanitizer.AllowKeys, "customer.tier")
	if err := store.Swap(next); err != nil {
		t.Fatalf("Swap() error = %v", err)
	}

	if got := s.Sanitize("customer.tier", "gold"); got != "gold" {
		t.Errorf("Sanitize after reload = %q, want %q", got, "gold")
	}
}

func TestMaskSQL(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "string literal",
			sql:  "SELECT * FROM wallet WHERE email = 'user@example.com'",
			want: "SELECT * FROM wallet WHERE email = ?",
		},
		{
			name: "number literal",
			sql:  "SELECT * FROM wallet WHERE id = 123",
			want: "SELECT * FROM wallet WHERE id = ?",
		},
		{
			name: "in clause",
			sql:  "DELETE FROM funds WHERE id IN (1, 2, 3)",
			want: "DELETE FROM funds WHERE id IN (?)",
		},
		{
			name: "mixed literals",
			sql:  "UPDATE wallet SET name = 'bob' WHERE id = 9",
			want: "UPDATE wallet SET name = ? WHERE id = ?",
		},
		{
			name: "blank passes through",
			sql:  "  ",
			want: "  ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskSQL(tt.sql); got != tt.want {
				t.Errorf("MaskSQL(%q) = %q, want %q", tt.sql, got, tt.want)
			}
		})
	}
}

func TestMaskURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "sensitive query param",
			url:  "https://api.example.com/transfer?token=abc123&amount=100",
			want: "https://api.example.com/transfer?token=***&amount=100",
		},
		{
			name: "uppercase param name",
			url:  "https://api.example.com/x?API_KEY=zzz",
			want: "https://api.example.com/x?API_KEY=***",
		},
		{
			name: "email in path",
			url:  "https://api.example.com/user/user@example.com/profile",
			want: "https://api.example.com/user/***@***.***/profile",
		},
		{
			name: "uuid path segment",
			url:  "https://api.example.com/wallet/f47ac10b-58cc-4372-a567-0e02b2c3d479",
			want: "https://api.example.com/wallet/***-***-***-***-***",
		},
		{
			name: "benign params untouched",
			url:  "https://api.example.com/list?page=2&size=50",
			want: "https://api.example.com/list?page=2&size=50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskURL(tt.url); got != tt.want {
				t.Errorf("MaskURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestMaskPII(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "email",
			text: "notify user@example.com about it",
			want: "notify ***@***.*** about it",
		},
		{
			name: "phone",
			text: "call 555-123-4567 now",
			want: "call ***-***-**** now",
		},
		{
			name: "card number",
			text: "card 4111-1111-1111-1111 declined",
			want: "card ****-****-****-**** declined",
		},
		{
			name: "credential assignment",
			text: "login failed: password=hunter2",
			want: "login failed: password=***",
		},
		{
			name: "clean text untouched",
			text: "insufficient funds in wallet",
			want: "insufficient funds in wallet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskPII(tt.text); got != tt.want {
				t.Errorf("MaskPII(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSanitizeMasksAllowedPayloads(t *testing.T) {
	s := newTestSanitizer(t)

	got := s.Sanitize("db.statement", "SELECT * FROM wallet WHERE id = 5")
	if want := "SELECT * FROM wallet WHERE id = ?"; got != want {
		t.Errorf("db.statement = %q, want %q", got, want)
	}

	got = s.Sanitize("http.url", "https://pay.example.com/go?secret=s3cr3t")
	if !strings.Contains(got, "secret=***") {
		t.Errorf("http.url = %q, want masked secret param", got)
	}

	got = s.Sanitize("error.message", "timeout calling user@example.com")
	if strings.Contains(got, "user@example.com") {
		t.Errorf("error.message = %q, email survived masking", got)
	}
}
