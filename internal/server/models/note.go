package models

import "time"

// TimestampLayout is the layout notes are stamped with, minus the trailing
// designator. A literal "Z" is appended after formatting so stamps always
// read "2006-01-02T15:04:05.000000Z" regardless of the host timezone.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Attachment describes a file uploaded alongside a note. StoredName is the
// on-disk key inside the owner's upload directory and is never derived from
// the user-supplied OriginalName.
type Attachment struct {
	OriginalName string `json:"original_name"`
	StoredName   string `json:"stored_name"`
	Size         int64  `json:"size"`
}

// Note is a single timestamped entry owned by one user. Timestamp doubles
// as the note's key within its owner's store: no two notes of the same user
// may carry the same value.
type Note struct {
	Text       string      `json:"text"`
	Timestamp  string      `json:"timestamp"`
	Attachment *Attachment `json:"attachment"`
}

// FormatTimestamp renders t as an ISO-8601 UTC stamp with a literal Z
// suffix, microsecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout) + "Z"
}

// ParseTimestamp reads a stamp produced by FormatTimestamp (or any RFC 3339
// timestamp).
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
