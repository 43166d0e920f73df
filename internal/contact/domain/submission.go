package domain

import "time"

const (
	timestampLayout      = "2006-01-02T15:04:05"
	timestampMicroLayout = "2006-01-02T15:04:05.000000"
)

// Submission is one contact-form entry.
// Timestamp is assigned once at handling time and doubles as the sort key next to Email.
type Submission struct {
	Email     string
	Name      string
	Message   string
	Timestamp string
}

// FormatTimestamp renders t as a zone-less ISO-8601 local timestamp with microsecond precision.
// The fractional part is dropped when it is zero.
func FormatTimestamp(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format(timestampLayout)
	}
	return t.Format(timestampMicroLayout)
}
