// Package formatting parses and formats human-readable byte sizes.
package formatting

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var units = []string{"B", "KB", "MB", "GB", "TB", "PB"}

var bytesPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([A-Za-z]*)$`)

// FormatBytes renders n with base-1024 units, e.g. 1536 -> "1.5 KB".
func FormatBytes(n int64, precision int) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}

	f := float64(n)
	i := min(int(math.Log(f)/math.Log(1024)), len(units)-1)

	return strconv.FormatFloat(f/math.Pow(1024, float64(i)), 'f', max(precision, 0), 64) + " " + units[i]
}

// ParseBytes parses sizes such as "32MB", "512 kb" or "1024" (bytes) using base-1024 units.
func ParseBytes(s string) (int64, error) {
	m := bytesPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	unit := strings.ToUpper(m[2])
	if unit == "" {
		unit = "B"
	}

	idx := slices.Index(units, unit)
	if idx == -1 {
		return 0, fmt.Errorf("unknown byte size unit: %q", m[2])
	}

	return int64(value * math.Pow(1024, float64(idx))), nil
}
