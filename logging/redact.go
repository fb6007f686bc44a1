package logging

import (
	"regexp"
	"strings"
)

// Redacted replaces every secret removed from log output.
const Redacted = "***"

// sensitiveKeyPatterns contains patterns that indicate a key holds sensitive data.
var sensitiveKeyPatterns = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"credential",
	"auth",
	"api_key",
	"apikey",
	"private_key",
	"access_key",
}

// Registry clients echo credentials in a few recognizable shapes: HTTP
// authorization headers in verbose traces, docker config.json fields, URLs
// with user info, and NAME=value pairs.
var (
	authHeaderPattern = regexp.MustCompile(`(?i)(authorization:\s*(?:bearer|basic)\s+)\S+`)
	jsonFieldPattern  = regexp.MustCompile(`(?i)("(?:auth|password|identitytoken|registrytoken|token)"\s*:\s*")[^"]*(")`)
	urlUserPattern    = regexp.MustCompile(`(://[^/\s:@]+:)[^/\s@]+(@)`)
	assignmentPattern = regexp.MustCompile(`(?i)((?:password|passwd|token|secret|key|credential|auth)=)\S+`)
)

// IsSensitiveKey returns true if the key name matches known sensitive patterns.
// The check is case-insensitive.
func IsSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(lowerKey, pattern) {
			return true
		}
	}
	return false
}

// RedactSensitiveValue hides value when key names a secret, e.g. an
// environment variable like REGISTRY_TOKEN.
func RedactSensitiveValue(key, value string) string {
	if IsSensitiveKey(key) {
		return Redacted
	}
	return value
}

// RedactSensitivePatterns hides credentials in captured tool output before
// it is logged. For example "Authorization: Bearer abc" becomes
// "Authorization: Bearer ***".
func RedactSensitivePatterns(input string) string {
	out := authHeaderPattern.ReplaceAllString(input, "${1}"+Redacted)
	out = jsonFieldPattern.ReplaceAllString(out, "${1}"+Redacted+"${2}")
	out = urlUserPattern.ReplaceAllString(out, "${1}"+Redacted+"${2}")
	return assignmentPattern.ReplaceAllString(out, "${1}"+Redacted)
}
