package transcript

import (
	"strings"
	"time"
)

// parseSQLiteDateTime parses the datetime layouts SQLite hands back for a
// DATETIME column. Returns the zero time when nothing matches.
func parseSQLiteDateTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	layouts := []string{
		"2006-01-02 15:04:05.999999-07:00",
		"2006-01-02 15:04:05.999-07:00",
		"2006-01-02 15:04:05-07:00",
		"2006-01-02 15:04:05.999999",
		"2006-01-02 15:04:05.999",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}

	// Some writers store "YYYY-MM-DD HH:MM:SS.sss+TZ"; RFC3339 parsing needs
	// the 'T' separator, so only attempt it when a zone tail is present.
	if strings.Contains(value, " ") {
		tail := ""
		if len(value) > 19 {
			tail = value[19:]
		}
		if strings.Contains(tail, "+") || strings.Contains(tail, "-") || strings.Contains(tail, "Z") {
			if t, err := time.Parse(time.RFC3339Nano, strings.Replace(value, " ", "T", 1)); err == nil {
				return t
			}
		}
	}

	return time.Time{}
}
