// Package patientid converts between the internal numeric patient id and
// its external representation: "P" followed by ten zero-padded digits.
// The conversion happens only at the HTTP boundary; domain and storage code
// deal exclusively in int64.
package patientid

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	prefix = "P"
	digits = 10
)

// Format renders an internal id in the canonical external form,
// e.g. 42 -> "P0000000042".
func Format(id int64) string {
	return fmt.Sprintf("%s%0*d", prefix, digits, id)
}

// Parse accepts either the canonical "P"-prefixed form or a bare integer.
// Older clients still send bare integers; both resolve to the same id.
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty patient id")
	}

	raw := s
	if strings.HasPrefix(s, prefix) || strings.HasPrefix(s, strings.ToLower(prefix)) {
		raw = s[len(prefix):]
		if len(raw) != digits {
			return 0, fmt.Errorf("patient id %q: expected %d digits after %q", s, digits, prefix)
		}
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("patient id %q: %w", s, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("patient id %q: must be positive", s)
	}
	return id, nil
}
