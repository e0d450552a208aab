package pipeline

import (
	"net/url"
	"strings"
)

var sensitiveKeys = []string{"password", "token", "authorization", "bearer"}

// RedactSensitive masks common secret markers in log-safe detail strings.
// Everything from the first occurrence of a sensitive key onward is replaced
// with "key=<redacted>".
func RedactSensitive(input string) string {
	redacted := input
	for _, key := range sensitiveKeys {
		redacted = redactKeyValue(redacted, key)
	}
	return redacted
}

func redactKeyValue(input, key string) string {
	lower := strings.ToLower(input)
	position := strings.Index(lower, key)
	if position < 0 {
		return input
	}
	return input[:position] + key + "=<redacted>"
}

// IsHTTPSEndpoint reports whether the endpoint parses as an HTTPS URL.
func IsHTTPSEndpoint(endpoint string) bool {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	return parsed.Scheme == "https"
}
