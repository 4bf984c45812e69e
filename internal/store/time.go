package store

import "time"

// sqliteTimeFormats covers the timestamp layouts SQLite emits for
// CURRENT_TIMESTAMP depending on driver text conversion.
var sqliteTimeFormats = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05Z07:00",
}

func parseSQLiteTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range sqliteTimeFormats {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
