package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Date is a date-only value that marshals as "2006-01-02". Spreadsheet
// imports parse dates leniently, so a handful of layouts are accepted.
type Date struct {
	time.Time
}

// dateLayouts are tried in order when parsing. The "01-02-06" entry is
// the default display format excelize produces for date-styled cells.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"01-02-06",
	"1/2/06",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2 January 2006",
	"Jan 2, 2006",
	"02.01.2006",
}

// ParseDate attempts to parse s as a date. Returns ok=false when no
// layout matches; callers treat that as a null date, not an error.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, true
		}
	}
	return Date{}, false
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format("2006-01-02"))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = Date{}
		return nil
	}
	parsed, ok := ParseDate(*s)
	if !ok {
		return fmt.Errorf("invalid date %q", *s)
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

// Scan implements sql.Scanner
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = Date{Time: v}
	case string:
		parsed, ok := ParseDate(v)
		if !ok {
			return fmt.Errorf("cannot scan %q into Date", v)
		}
		*d = parsed
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
	return nil
}

// GormDataType tells GORM to create a DATE column
func (Date) GormDataType() string {
	return "date"
}

// Timestamp is a datetime value that marshals as "2006-01-02 15:04:05",
// matching the format the frontend displays for upload dates.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format("2006-01-02 15:04:05"))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*t = Timestamp{}
		return nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, *s); err == nil {
			*t = Timestamp{Time: parsed}
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", *s)
}

// Value implements driver.Valuer
func (t Timestamp) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.Time, nil
}

// Scan implements sql.Scanner
func (t *Timestamp) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = Timestamp{}
	case time.Time:
		*t = Timestamp{Time: v}
	case string:
		for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02T15:04:05Z07:00", "2006-01-02"} {
			if parsed, err := time.Parse(layout, v); err == nil {
				*t = Timestamp{Time: parsed}
				return nil
			}
		}
		return fmt.Errorf("cannot scan %q into Timestamp", v)
	case []byte:
		return t.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", value)
	}
	return nil
}

// GormDataType tells GORM to create a timestamp column
func (Timestamp) GormDataType() string {
	return "timestamp"
}
