package r4

import "time"

// instantLayouts covers the date/dateTime notations Synthea and other R4
// producers actually emit, from full offset timestamps down to bare years.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseInstant normalizes any accepted FHIR date/dateTime string to a UTC
// instant. Timestamps without an explicit offset are taken as UTC. The second
// return value reports whether the input was parseable; an empty or garbled
// string is a valid absent value, not an error.
func ParseInstant(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// StartInstant returns the normalized start instant of a period, when present.
func (p *Period) StartInstant() (time.Time, bool) {
	if p == nil {
		return time.Time{}, false
	}
	return ParseInstant(p.Start)
}

// EndInstant returns the normalized end instant of a period, when present.
func (p *Period) EndInstant() (time.Time, bool) {
	if p == nil {
		return time.Time{}, false
	}
	return ParseInstant(p.End)
}
