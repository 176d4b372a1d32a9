package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Date wraps time.Time with tolerant JSON decoding. Transaction exports come
// from spreadsheets and third-party tools with inconsistent date formats; a
// value that cannot be parsed decodes as the zero time so the surrounding
// batch still loads. Aggregation skips zero-dated records.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"2 Jan 2006",
}

// NewDate builds a Date from a time.Time.
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

// UnmarshalJSON accepts any of the supported layouts. Unparsable input leaves
// the zero value and does not return an error.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// Not a string: leave zero rather than failing the whole batch.
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return nil
}

// MarshalJSON emits RFC 3339, or null for the zero value.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.RFC3339))
}

// Valid reports whether the date parsed successfully.
func (d Date) Valid() bool {
	return !d.IsZero()
}
