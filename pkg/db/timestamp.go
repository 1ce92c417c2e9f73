package db

import (
	"strings"
	"time"
)

// TimeLayout matches SQLite's datetime('now'), which older rows were written with.
const TimeLayout = "2006-01-02 15:04:05"

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime accepts TimeLayout and RFC3339, returning zero for blanks.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(TimeLayout, value, time.UTC); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
