// Package logutil prepares contact data for logs. Outside development every
// personal value is masked and the message body is reduced to its length.
package logutil

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/vortex-fintech/contactform/contact"
	"github.com/vortex-fintech/contactform/piiutil"
)

var defaultSensitiveRe = regexp.MustCompile(`(?i)(password|pass|secret|token|otp)`)

// Verbose reports whether env logs raw values.
func Verbose(env string) bool {
	e := strings.ToLower(strings.TrimSpace(env))
	return e == "development" || e == "debug"
}

// SubmissionFields describes a form for a log line. In development the raw
// trimmed values are logged; elsewhere name, email and phone are masked and
// the message is logged only as a character count.
func SubmissionFields(f contact.Form, env string) []zap.Field {
	f = f.Trimmed()
	msgLen := zap.Int("message_length", utf8.RuneCountInString(f.Message))
	if Verbose(env) {
		return []zap.Field{
			zap.String("name", f.Name),
			zap.String("email", f.Email),
			zap.String("phone", f.Phone),
			zap.String("message", f.Message),
			msgLen,
		}
	}
	return []zap.Field{
		zap.String("name", piiutil.MaskName(f.Name)),
		zap.String("email", piiutil.MaskEmail(f.Email)),
		zap.String("phone", piiutil.MaskPhone(f.Phone)),
		msgLen,
	}
}

// SanitizeViolations prepares a field->message map for logging. Validation
// messages never echo input, so only keys that look like secrets are
// replaced.
func SanitizeViolations(
	fields map[string]string,
	env string,
	replacement string,
	sensitiveKeys ...string,
) map[string]string {
	if fields == nil {
		return nil
	}
	if Verbose(env) {
		return fields
	}

	if replacement == "" {
		replacement = "[REDACTED]"
	}

	sens := map[string]struct{}{}
	for _, k := range sensitiveKeys {
		sens[strings.ToLower(k)] = struct{}{}
	}

	sanitized := make(map[string]string, len(fields))
	for field, msg := range fields {
		lk := strings.ToLower(field)
		if _, ok := sens[lk]; ok || defaultSensitiveRe.MatchString(lk) {
			sanitized[field] = replacement
		} else {
			sanitized[field] = msg
		}
	}
	return sanitized
}
