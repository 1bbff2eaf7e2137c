package sanitize

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\b(\+\d{1,3}[-. ]?)?\(?\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}\b`)
	cardPattern  = regexp.MustCompile(`\b\d{4}[-. ]?\d{4}[-. ]?\d{4}[-. ]?\d{4}\b`)
	uuidPattern  = regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`)

	sqlStringLiteral = regexp.MustCompile(`'[^']*'`)
	sqlNumberLiteral = regexp.MustCompile(`=\s*\d+(\.\d+)?`)
	sqlInClause      = regexp.MustCompile(`(?i)IN\s*\([^)]+\)`)

	urlQueryParam = regexp.MustCompile(`([?&][^=&]+)=([^&]+)`)

	credentialAssignment = regexp.MustCompile(`(?i)(password|token|secret|key)\s*[:=]\s*\S+`)
)

// sensitiveQueryParams are query parameter names whose values are always
// masked regardless of context.
var sensitiveQueryParams = map[string]struct{}{
	"token":         {},
	"access_token":  {},
	"refresh_token": {},
	"api_key":       {},
	"apikey":        {},
	"key":           {},
	"secret":        {},
	"password":      {},
	"pwd":           {},
	"auth":          {},
	"authorization": {},
	"session":       {},
	"ssn":           {},
}

// MaskSQL replaces literal values in a SQL statement with placeholders,
// keeping the statement shape readable for debugging:
//
//	SELECT * FROM wallet WHERE id = 123 AND email = 'user@example.com'
//	SELECT * FROM wallet WHERE id = ? AND email = ?
func MaskSQL(sql string) string {
	if strings.TrimSpace(sql) == "" {
		return sql
	}
	masked := sqlStringLiteral.ReplaceAllString(sql, "?")
	masked = sqlNumberLiteral.ReplaceAllString(masked, "= ?")
	masked = sqlInClause.ReplaceAllString(masked, "IN (?)")
	return MaskPII(masked)
}

// MaskURL masks sensitive query parameter values, email addresses, and
// UUID path segments in a URL while keeping its structure intact:
//
//	https://api.wallet.example/transfer?token=abc123&amount=100
//	https://api.wallet.example/transfer?token=***&amount=100
func MaskURL(url string) string {
	if strings.TrimSpace(url) == "" {
		return url
	}
	masked := urlQueryParam.ReplaceAllStringFunc(url, func(match string) string {
		groups := urlQueryParam.FindStringSubmatch(match)
		name := strings.ToLower(groups[1][1:])
		if _, ok := sensitiveQueryParams[name]; ok {
			return groups[1] + "=***"
		}
		return match
	})
	masked = emailPattern.ReplaceAllString(masked, "***@***.***")
	masked = uuidPattern.ReplaceAllString(masked, "***-***-***-***-***")
	return masked
}

// MaskPII masks emails, phone numbers, payment card numbers, and inline
// credential assignments in free-form text. Used for exception messages
// and other payloads where sensitive fragments may be embedded.
func MaskPII(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	masked := emailPattern.ReplaceAllString(text, "***@***.***")
	masked = phonePattern.ReplaceAllString(masked, "***-***-****")
	masked = cardPattern.ReplaceAllString(masked, "****-****-****-****")
	masked = credentialAssignment.ReplaceAllString(masked, "$1=***")
	return masked
}
