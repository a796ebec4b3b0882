// Package calendar holds the civil-date arithmetic used to bucket sessions
// into days.
package calendar

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// Layout is the canonical text form of a Date.
const Layout = "2006-01-02"

// MaxDaysBack bounds how far into the past a report or day argument may
// reach.
const MaxDaysBack = 3650

const secondsPerDay = 24 * 60 * 60

// Date is a calendar day with no time of day or zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the calendar day of instant t as seen from loc.
func Today(t time.Time, loc *time.Location) Date {
	return DateOf(t.In(loc))
}

// Parse reads a Date in Layout form.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns d shifted by n days; n may be negative.
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

// DaysUntil returns the number of days from d to o, negative when o is
// earlier.
func (d Date) DaysUntil(o Date) int {
	return int((o.In(time.UTC).Unix() - d.In(time.UTC).Unix()) / secondsPerDay)
}

func (d Date) Before(o Date) bool {
	return d.In(time.UTC).Before(o.In(time.UTC))
}

func (d Date) After(o Date) bool {
	return o.Before(d)
}

// Format renders d with a Go time layout such as "Monday" or "January 02".
func (d Date) Format(layout string) string {
	return d.In(time.UTC).Format(layout)
}

func (d Date) String() string {
	return d.Format(Layout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Bounds returns the inclusive instant range covering start 00:00:00 through
// (start + extraDays) 23:59:59 in loc.
func Bounds(start Date, extraDays int, loc *time.Location) (time.Time, time.Time) {
	from := now.With(start.In(loc)).BeginningOfDay()
	to := now.With(start.AddDays(extraDays).In(loc)).EndOfDay().Truncate(time.Second)
	return from, to
}
