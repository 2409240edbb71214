// Package logger provides structured logging for lingvo.
package logger

import (
	"log/slog"
	"strings"
)

// authSchemes are Authorization header schemes whose parameter is masked.
var authSchemes = []string{
	"Token ",
	"Bearer ",
}

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"passphrase",
	"authorization",
}

// RedactedValue replaces sensitive values in logs and printed configuration.
const RedactedValue = "***REDACTED***"

func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		// Authorization values keep the scheme and a hint of the credential.
		for _, scheme := range authSchemes {
			if strings.HasPrefix(strVal, scheme) {
				return slog.String(a.Key, scheme+maskValue(strVal[len(scheme):]))
			}
		}
		if strVal != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, RedactedValue)
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// maskValue keeps the first and last three characters of long values.
func maskValue(value string) string {
	if len(value) <= 8 {
		return "***"
	}
	return value[:3] + "..." + value[len(value)-3:]
}

// RedactCredential masks a credential for display (e.g. "whoami").
func RedactCredential(value string) string {
	if value == "" {
		return ""
	}
	return maskValue(value)
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
