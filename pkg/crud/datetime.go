package crud

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// Date is a calendar date without time zone, encoded as YYYY-MM-DD.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the normalized date for year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the date part of t in its location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	return d.UnmarshalText([]byte(s))
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// TimeOfDay is a wall clock time, encoded as HH:MM:SS.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// TimeOfDayOf returns the clock part of t.
func TimeOfDayOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay{Hour: h, Minute: m, Second: s}
}

// ParseTimeOfDay parses HH:MM:SS, HH:MM or HH:MM:SS with fractional seconds.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{timeLayout, "15:04", "15:04:05.999999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDayOf(t), nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Scan implements sql.Scanner.
func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*t = TimeOfDayOf(v)
		return nil
	case string:
		return t.UnmarshalText([]byte(v))
	case []byte:
		return t.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

// Value implements driver.Valuer.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// dateTimeLayouts are accepted when a driver returns timestamps as text.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// DateTime is an instant encoded as RFC 3339. It scans timestamps that
// drivers return either as time.Time or as text.
type DateTime struct {
	time.Time
}

// DateTimeOf wraps t.
func DateTimeOf(t time.Time) DateTime {
	return DateTime{Time: t}
}

// ParseDateTime parses RFC 3339 and the common SQL text layouts.
func ParseDateTime(s string) (DateTime, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateTime{Time: t}, nil
		}
	}
	return DateTime{}, fmt.Errorf("invalid date time %q", s)
}

// Equal reports whether both values denote the same instant.
func (d DateTime) Equal(other DateTime) bool {
	return d.Time.Equal(other.Time)
}

func (d DateTime) MarshalText() ([]byte, error) {
	return []byte(d.Time.Format(time.RFC3339Nano)), nil
}

func (d *DateTime) UnmarshalText(text []byte) error {
	parsed, err := ParseDateTime(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner.
func (d *DateTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into DateTime", src)
	}
}

// Value implements driver.Valuer.
func (d DateTime) Value() (driver.Value, error) {
	return d.Time, nil
}
