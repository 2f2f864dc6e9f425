package scan

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseSize converts a human size string such as "100", "512KB", "1.5MB"
// or "2G" into bytes. Suffixes are case-insensitive; a bare number is
// bytes.
func ParseSize(s string) (int64, error) {
	trimmed := strings.TrimSpace(strings.ToUpper(s))
	if trimmed == "" {
		return 0, fmt.Errorf("empty size")
	}

	multipliers := []struct {
		suffix string
		factor float64
	}{
		{"TB", 1 << 40},
		{"GB", 1 << 30},
		{"MB", 1 << 20},
		{"KB", 1 << 10},
		{"T", 1 << 40},
		{"G", 1 << 30},
		{"M", 1 << 20},
		{"K", 1 << 10},
		{"B", 1},
	}

	factor := 1.0
	num := trimmed
	for _, m := range multipliers {
		if strings.HasSuffix(trimmed, m.suffix) {
			factor = m.factor
			num = strings.TrimSpace(strings.TrimSuffix(trimmed, m.suffix))
			break
		}
	}

	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	if value < 0 {
		return 0, fmt.Errorf("size cannot be negative: %q", s)
	}
	return int64(value * factor), nil
}

// ParseDate accepts YYYY-MM-DD or YYYY/MM/DD.
func ParseDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006/01/02"} {
		if t, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
}

// ParseAge converts an age string such as "30d", "2w" or "12h" into a
// duration. A bare number counts days.
func ParseAge(s string) (time.Duration, error) {
	trimmed := strings.TrimSpace(strings.ToLower(s))
	if trimmed == "" {
		return 0, fmt.Errorf("empty duration")
	}

	unit := time.Hour * 24
	num := trimmed
	switch {
	case strings.HasSuffix(trimmed, "w"):
		unit = time.Hour * 24 * 7
		num = strings.TrimSuffix(trimmed, "w")
	case strings.HasSuffix(trimmed, "d"):
		num = strings.TrimSuffix(trimmed, "d")
	case strings.HasSuffix(trimmed, "h"):
		unit = time.Hour
		num = strings.TrimSuffix(trimmed, "h")
	}

	value, err := strconv.ParseFloat(num, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid duration %q (use forms like 30d, 2w, 12h)", s)
	}
	return time.Duration(value * float64(unit)), nil
}
