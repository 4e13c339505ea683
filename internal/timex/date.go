package timex

import "time"

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

// FormatDate renders t as YYYY-MM-DD; the zero time renders as "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// OnOrAfter reports whether the calendar date s falls on or after the
// calendar day of ref. Unparseable dates never match.
func OnOrAfter(s string, ref time.Time) bool {
	if s == "" {
		return false
	}
	date, err := ParseDate(s)
	if err != nil {
		return false
	}
	y, m, d := ref.Date()
	return !date.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
