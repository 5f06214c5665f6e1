package models

import (
	"fmt"
	"strings"
	"time"
)

// Stored dates are ISO, operator-entered dates are day/month/year. The
// asymmetry is deliberate: files and the database always hold the machine
// format, prompts and flags always accept the human one.
const (
	DateFormat      = "2006-01-02"
	TimestampFormat = "2006-01-02 15:04:05"
	InputDateFormat = "02/01/2006"
)

// Date builds a midnight-UTC date, the canonical in-memory form.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseInputDate parses an operator-entered dd/mm/yyyy date.
func ParseInputDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(InputDateFormat, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected dd/mm/yyyy: %w", s, ErrValidation)
	}
	return t, nil
}

// ParseStoredDate parses an ISO date from the store. Empty means unset.
func ParseStoredDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(DateFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored date %q: %w", s, err)
	}
	return t, nil
}

// ParseImportDate accepts either the stored or the operator format. Imported
// files may contain rows originally typed by hand.
func ParseImportDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(DateFormat, s, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(InputDateFormat, s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: %w", s, ErrValidation)
}

// FormatDate renders t for storage, empty when unset.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateFormat)
}

// FormatInputDate renders t for display to the operator.
func FormatInputDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(InputDateFormat)
}

// DateOnly truncates t to its midnight-UTC date.
func DateOnly(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}
