// Package logging provides redaction helpers for values that may carry
// credentials. Startup logs the database DSN and errors from pgx or the
// narrative endpoint can echo connection details back.
package logging

import "regexp"

// Redacted replaces credential values in sanitized output.
const Redacted = "[REDACTED]"

var (
	// password=xxx, pwd=xxx, pass=xxx in key-value DSNs
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// user:pass@host in URL-style DSNs
	urlCredsPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@`)

	// api_key=xxx, apikey=xxx with a plausible key length
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey)=[A-Za-z0-9-_]{20,}`)
)

// SanitizeDSN redacts credentials from a connection string, URL or
// key-value form, so it can be logged.
func SanitizeDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	s := passwordPattern.ReplaceAllString(dsn, "${1}="+Redacted)
	return urlCredsPattern.ReplaceAllString(s, "://"+Redacted+"@")
}

// SanitizeError redacts credentials from an error message before it is
// logged. Connection errors from pgx include the full DSN.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	s := passwordPattern.ReplaceAllString(err.Error(), "${1}="+Redacted)
	s = apiKeyPattern.ReplaceAllString(s, "${1}="+Redacted)
	return urlCredsPattern.ReplaceAllString(s, "://"+Redacted+"@")
}
