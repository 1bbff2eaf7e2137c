package sanitize

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/dgraph-io/ristretto"

	"bloco-hq/tracehub/pkg/config"
)

// RedactionMarker replaces redact-listed and unclassified attribute values.
const RedactionMarker = "[REDACTED]"

// hashLength is the length of the deterministic digest replacing
// hash-listed values.
const hashLength = 16

// keySets is one immutable classification snapshot, swapped whole on
// configuration refresh so a Sanitize call never sees a half-updated rule
// set.
type keySets struct {
	allow  map[string]struct{}
	hash   map[string]struct{}
	redact map[string]struct{}
}

// Sanitizer classifies attribute keys against the configured allow, hash,
// and redact lists and transforms values accordingly. It is a pure
// function of (key, value) for a given configuration snapshot, idempotent,
// and safe for concurrent use.
//
// A key found in none of the lists is redacted entirely: the sanitizer
// fails closed so a forgotten classification can never leak a sensitive
// value.
type Sanitizer struct {
	sets   atomic.Pointer[keySets]
	cache  *ristretto.Cache
	logger *slog.Logger
}

// New creates a sanitizer from the configured key lists and subscribes it
// to configuration refreshes. The digest memoization cache is bounded by
// hash_cache_entries.
func New(store *config.Store, logger *slog.Logger) (*Sanitizer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := store.Snapshot().Tracing.Sanitizer
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.HashCacheEntries * 10,
		MaxCost:     cfg.HashCacheEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	s := &Sanitizer{
		cache:  cache,
		logger: logger,
	}
	s.sets.Store(buildKeySets(cfg))
	store.OnSwap(func(c *config.Config) {
		s.sets.Store(buildKeySets(c.Tracing.Sanitizer))
	})
	return s, nil
}

func buildKeySets(cfg config.SanitizerConfig) *keySets {
	toSet := func(keys []string) map[string]struct{} {
		m := make(map[string]struct{}, len(keys))
		for _, k := range keys {
			m[strings.ToLower(k)] = struct{}{}
		}
		return m
	}
	return &keySets{
		allow:  toSet(cfg.AllowKeys),
		hash:   toSet(cfg.HashKeys),
		redact: toSet(cfg.RedactKeys),
	}
}

// Sanitize transforms value for attachment to a span under key.
//
// Classification, in order: redact list wins over everything, then the
// hash list, then the allow list. Allow-listed free-form payloads still
// pass through format-specific maskers keyed off the attribute name (SQL
// statements, URLs, error/exception messages). Unknown keys redact.
func (s *Sanitizer) Sanitize(key, value string) string {
	if value == "" {
		return value
	}
	key = strings.ToLower(key)
	sets := s.sets.Load()

	if _, ok := sets.redact[key]; ok {
		return RedactionMarker
	}
	if _, ok := sets.hash[key]; ok {
		return s.digest(value)
	}
	if _, ok := sets.allow[key]; ok {
		return s.maskAllowed(key, value)
	}

	return RedactionMarker
}

// maskAllowed applies format-specific masking to allow-listed free-form
// payloads. Structured identifiers pass through unchanged.
func (s *Sanitizer) maskAllowed(key, value string) string {
	switch {
	case key == "db.statement" || strings.HasSuffix(key, ".sql"):
		return MaskSQL(value)
	case key == "http.url" || strings.HasSuffix(key, ".url") || strings.Contains(key, "endpoint"):
		return MaskURL(value)
	case strings.Contains(key, "message") || strings.Contains(key, "error") || strings.Contains(key, "stacktrace"):
		return MaskPII(value)
	default:
		return value
	}
}

// digest returns the deterministic 16-character digest for a hash-listed
// value: stable across calls so correlation survives, one-way so the raw
// value never leaves the process. Hot values are memoized.
func (s *Sanitizer) digest(value string) string {
	// A value that is already a digest stays fixed, keeping Sanitize
	// idempotent.
	if isDigest(value) {
		return value
	}

	if cached, ok := s.cache.Get(value); ok {
		if d, ok := cached.(string); ok {
			return d
		}
	}

	sum := sha256.Sum256([]byte(value))
	d := hex.EncodeToString(sum[:])[:hashLength]
	s.cache.Set(value, d, 1)
	return d
}

// isDigest reports whether v has the exact shape of a digest output.
func isDigest(v string) bool {
	if len(v) != hashLength {
		return false
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
