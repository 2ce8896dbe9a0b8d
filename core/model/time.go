package model

import (
	"fmt"
	"strings"
	"time"
)

// timeFormats lists the timestamp layouts the optimizer backend is known to
// emit. Naive ISO-8601 (no zone suffix) is interpreted as UTC.
var timeFormats = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Time wraps time.Time to tolerate the backend's ISO-8601 variants.
type Time struct {
	time.Time
}

// NewTime builds a Time from a time.Time.
func NewTime(t time.Time) Time { return Time{Time: t} }

func (t *Time) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeFormats {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", s)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}
