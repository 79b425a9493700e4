package session

import "fmt"

// FormatRemaining renders a progress record's remaining time as mm:ss.
// Absent progress renders as the empty string so the display never has
// to special-case missing data.
func FormatRemaining(p *Progress) string {
	if p == nil {
		return ""
	}
	return FormatSeconds(p.RemainingSeconds)
}

// FormatSeconds converts a remaining-seconds count to a mm:ss display
// string, clamped at 00:00. The backend lets the countdown dip below
// zero between ticks; that must never be shown.
func FormatSeconds(seconds int) string {
	minutes := seconds / 60
	if minutes < 0 {
		minutes = 0
	}
	secs := 0
	if seconds > -1 {
		secs = seconds % 60
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
