// Package util holds small formatting helpers shared by the admin CLI.
package util //nolint:revive // package name util hosts shared formatting helpers

import "time"

// FormatRunDuration formats the wall time between start and end for display.
// Returns "—" when the run has not started, or has not finished and now is zero.
func FormatRunDuration(start, end *time.Time, now time.Time) string {
	if start == nil {
		return "—"
	}
	stop := now
	if end != nil {
		stop = *end
	}
	if stop.IsZero() {
		return "—"
	}
	d := stop.Sub(*start)
	switch {
	case d <= 0:
		return "—"
	case d < time.Millisecond:
		return d.String()
	default:
		return d.Truncate(time.Millisecond).String()
	}
}

// FormatTimestamp renders t in UTC, or "—" for nil.
func FormatTimestamp(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "—"
	}
	return t.UTC().Format(time.RFC3339)
}

// Deref returns *p, or fallback when p is nil or empty.
func Deref(p *string, fallback string) string {
	if p == nil || *p == "" {
		return fallback
	}
	return *p
}
