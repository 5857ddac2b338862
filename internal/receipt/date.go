package receipt

import "time"

// DateFormat is the calendar date layout used on the wire and in storage.
const DateFormat = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date string as a local-midnight instant.
// Invalid strings return an error; callers that aggregate treat them as
// unparsable and skip the receipt rather than failing.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.Local)
}
