package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrDateOutOfRange rejects dates whose storage form would not sort lexically
var ErrDateOutOfRange = errors.New("date must fall between years 1 and 9999")

const (
	// DateLayout is the storage form of a Date; it sorts lexically.
	DateLayout = "2006-01-02"
	// DisplayDateLayout is the form users type and read.
	DisplayDateLayout = "02/01/2006"
)

// Date is a calendar day with no time-of-day component. Dates compare with ==.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalises out-of-range values the same way time.Date does
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(layout, value string) (Date, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the day
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool { return d == Date{} }

// Valid reports whether d has a four-digit year, the range in which the
// storage form orders the same way as the dates themselves.
func (d Date) Valid() bool {
	return d.Year >= 1 && d.Year <= 9999
}

func (d Date) Before(other Date) bool { return d.Time().Before(other.Time()) }

func (d Date) After(other Date) bool { return d.Time().After(other.Time()) }

// Within reports whether start <= d <= end
func (d Date) Within(start, end Date) bool {
	return !d.Before(start) && !d.After(end)
}

func (d Date) Format(layout string) string { return d.Time().Format(layout) }

func (d Date) String() string { return d.Format(DateLayout) }
