// Package redact strips sensitive material from strings before they reach
// logs or error responses: connection strings, credentials, tokens, email
// addresses, SQL fragments, and filesystem paths.
package redact

import "regexp"

// Redaction placeholders
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedTokenPlaceholder      = "[REDACTED_TOKEN]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
)

// Precompiled redaction rules, applied in order. Connection strings must
// run before the path rule so the URL form wins.
var rules = []struct {
	pattern     *regexp.Regexp
	placeholder string
}{
	{
		regexp.MustCompile(`(?i)(postgres|postgresql|mysql|mongodb)://[^@\s]+@`),
		RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]['"]?)[^'"&\s]{3,}`),
		RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
		RedactedTokenPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(api[_-]?key|token|secret|bearer)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`),
		RedactedTokenPlaceholder,
	},
	{
		regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		RedactedEmailPlaceholder,
	},
	{
		regexp.MustCompile(
			`(?i)(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)[\s\w,*()]+(?:FROM|INTO|SET|TABLE)(?:[\s\w,*()='"]+)?`,
		),
		RedactedSQLPlaceholder,
	},
	{
		regexp.MustCompile(`(/[\w.-]+){2,}`),
		RedactedPathPlaceholder,
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, rule := range rules {
		result = rule.pattern.ReplaceAllString(result, rule.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's message.
// Returns an empty string for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
