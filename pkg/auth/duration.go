package auth

import (
	"strconv"
	"time"
)

// DurationToMillis converts a duration string of the form <integer><unit>
// to milliseconds, where unit is one of m (minutes), h (hours) or d (days).
// Malformed input (empty string, missing unit, non-numeric prefix, unknown
// unit) converts to zero rather than failing. Clients receive these values
// as token expiry fields.
func DurationToMillis(s string) int64 {
	if s == "" {
		return 0
	}

	unit := s[len(s)-1]
	value, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
	if err != nil {
		value = 0
	}

	switch unit {
	case 'm':
		return value * 60 * 1000
	case 'h':
		return value * 3600 * 1000
	case 'd':
		return value * 86400 * 1000
	default:
		return 0
	}
}

// ParseDuration converts a duration string to a time.Duration using the same
// rules as DurationToMillis.
func ParseDuration(s string) time.Duration {
	return time.Duration(DurationToMillis(s)) * time.Millisecond
}
