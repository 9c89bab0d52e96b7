package status

import "regexp"

// redaction is one secret-shaped pattern and its replacement.
type redaction struct {
	pattern *regexp.Regexp
	replace string
}

// redactions is applied in order to every stored command. Best-effort
// defense in depth, not a guarantee of complete secret removal.
var redactions = []redaction{
	// Authorization: Bearer <token>
	{regexp.MustCompile(`(Authorization\s*:\s*Bearer\s+)\S+`), "$1[REDACTED]"},
	// password= / api_key= / token= / secret= style assignments
	{regexp.MustCompile(`(?i)(password\s*[:=]\s*)["']?[^"'\s]+["']?`), "$1[REDACTED]"},
	{regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)["']?[^"'\s]+["']?`), "$1[REDACTED]"},
	{regexp.MustCompile(`(?i)(token\s*[:=]\s*)["']?[^"'\s]+["']?`), "$1[REDACTED]"},
	{regexp.MustCompile(`(?i)(secret\s*[:=]\s*)["']?[^"'\s]+["']?`), "$1[REDACTED]"},
	// Credentials embedded in URLs
	{regexp.MustCompile(`(https?://)[^/:@\s]+:[^/:@\s]+@`), "$1[REDACTED]:[REDACTED]@"},
	// JWT-shaped three-segment strings
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), "[JWT REDACTED]"},
	// AWS access key IDs
	{regexp.MustCompile(`AKIA[0-9A-Z]{16}`), "AKIA[REDACTED]"},
	// AWS secret key assignments
	{regexp.MustCompile(`(?i)(aws_secret_access_key\s*[:=]\s*)[A-Za-z0-9/+=]{40}`), "$1[REDACTED]"},
	// PEM private-key blocks
	{regexp.MustCompile(`-----BEGIN (?:RSA |EC )?PRIVATE KEY-----[\s\S]*?-----END (?:RSA |EC )?PRIVATE KEY-----`), "[PRIVATE KEY REDACTED]"},
}

// RedactSecrets replaces secret-shaped substrings in text with fixed
// redaction markers.
func RedactSecrets(text string) string {
	for _, r := range redactions {
		text = r.pattern.ReplaceAllString(text, r.replace)
	}
	return text
}
