package r4

import (
	"testing"
	"time"
)

func TestParseInstantNormalizesOffsetsToUTC(t *testing.T) {
	want := time.Date(2019, 5, 1, 14, 0, 0, 0, time.UTC)

	// The same instant in different offset notations must map to one UTC
	// instant regardless of how the source wrote it.
	inputs := []string{
		"2019-05-01T14:00:00Z",
		"2019-05-01T10:00:00-04:00",
		"2019-05-01T16:00:00+02:00",
		"2019-05-01T14:00:00",
	}
	for _, in := range inputs {
		got, ok := ParseInstant(in)
		if !ok {
			t.Fatalf("ParseInstant(%q) not parseable", in)
		}
		if !got.Equal(want) {
			t.Errorf("ParseInstant(%q) = %v, want %v", in, got, want)
		}
		if got.Location() != time.UTC {
			t.Errorf("ParseInstant(%q) location = %v, want UTC", in, got.Location())
		}
	}
}

func TestParseInstantReducedPrecision(t *testing.T) {
	cases := map[string]time.Time{
		"2019-05-01": time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC),
		"2019-05":    time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC),
		"2019":       time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, ok := ParseInstant(in)
		if !ok {
			t.Fatalf("ParseInstant(%q) not parseable", in)
		}
		if !got.Equal(want) {
			t.Errorf("ParseInstant(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseInstantAbsentAndGarbage(t *testing.T) {
	for _, in := range []string{"", "not-a-date", "05/01/2019"} {
		if _, ok := ParseInstant(in); ok {
			t.Errorf("ParseInstant(%q) parsed, want absent", in)
		}
	}
}
