package logging

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsRateLimit reports whether err looks like an upstream rate limit (Discord 429).
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "rate_limit") || strings.Contains(msg, "429")
}

// IsDuplicate reports whether err is a unique-constraint violation.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}

// Kind returns a short tag for err suitable for log lines.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsRateLimit(err):
		return "rate_limited"
	case IsDuplicate(err):
		return "duplicate"
	default:
		return "error"
	}
}
