// Package sanitize keeps sensitive data out of span attributes.
//
// Every attribute value passes through a Sanitizer before it is stored on
// a span. Keys are classified against three configured lists: allow-listed
// keys pass through (with format-aware masking for free-form payloads such
// as SQL statements and URLs), hash-listed keys are replaced by a short
// deterministic digest so traces still correlate, and redact-listed keys
// are replaced outright. A key appearing in none of the lists is redacted,
// so the default posture for unclassified data is closed.
//
// Sanitization is idempotent: feeding an already sanitized value back
// through produces the same output, which makes re-sanitization at
// process boundaries harmless.
package sanitize
