package utils

import (
	"strings"
	"time"
)

// ParseRFC3339 parses an RFC 3339 timestamp, such as the dateFrom and
// dateTo query parameters on note listings. Surrounding whitespace is
// tolerated.
func ParseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.TrimSpace(s))
}
