package logger

import (
	"regexp"
	"strings"
)

const redactedValue = "[REDACTED]"

// SensitiveDataPatterns match credentials embedded in free text such as DSNs and URLs
var SensitiveDataPatterns = []*regexp.Regexp{
	// user:password@host in connection URLs
	regexp.MustCompile(`(?i)(://[^:/@\s]+:)([^@\s]+)(@)`),
	// key=value style DSN and query parameters
	regexp.MustCompile(`(?i)((?:password|passwd|secret|token|api_key|apikey)\s*[=:]\s*)([^\s&;,]+)`),
	regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9\-._~+/]+=*)`),
}

// SensitiveKeywords are field keys whose string values are always redacted
var SensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "api_key", "apikey", "authorization", "dsn",
}

// RedactSensitiveData replaces credentials found in input with [REDACTED]
func RedactSensitiveData(input string) string {
	if input == "" {
		return input
	}

	for i, pattern := range SensitiveDataPatterns {
		if i == 0 {
			input = pattern.ReplaceAllString(input, "${1}"+redactedValue+"${3}")
			continue
		}
		input = pattern.ReplaceAllString(input, "${1}"+redactedValue)
	}

	return input
}

func isSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, sensitive := range SensitiveKeywords {
		if strings.Contains(keyLower, sensitive) {
			return true
		}
	}
	return false
}
