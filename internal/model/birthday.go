package model

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// BirthdayLayout is the textual form of a birthday, used for parsing and rendering.
const BirthdayLayout = "2006-01-02"

// birthdayPattern accepts a year of four or more digits followed by a two digit month and day.
var birthdayPattern = regexp.MustCompile(`^(\d{4,})-(\d{2})-(\d{2})$`)

// Birthday is an optional calendar date. The zero value means "no birthday set".
type Birthday struct {
	date time.Time
	set  bool
}

// ParseBirthday parses raw as YYYY-MM-DD. An empty raw yields an unset birthday. Dates that do
// not exist in the calendar, like 2023-02-29, are rejected.
func ParseBirthday(raw string) (Birthday, error) {
	if raw == "" {
		return Birthday{}, nil
	}
	m := birthdayPattern.FindStringSubmatch(raw)
	if m == nil {
		return Birthday{}, fmt.Errorf("%w: %q", ErrInvalidBirthday, raw)
	}
	year, errYear := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if errYear != nil || year < 1 {
		return Birthday{}, fmt.Errorf("%w: %q", ErrInvalidBirthday, raw)
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflowing values, so a changed component means the date does not exist.
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return Birthday{}, fmt.Errorf("%w: %q", ErrInvalidBirthday, raw)
	}
	return Birthday{date: date, set: true}, nil
}

// BirthdayOf returns a set birthday for the calendar date of t.
func BirthdayOf(t time.Time) Birthday {
	y, m, d := t.Date()
	return Birthday{date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), set: true}
}

// IsSet reports whether a birthday is present.
func (b Birthday) IsSet() bool {
	return b.set
}

// Date returns the birthday at midnight UTC and whether it is set.
func (b Birthday) Date() (time.Time, bool) {
	return b.date, b.set
}

// String renders the birthday as YYYY-MM-DD, or the empty string when unset.
func (b Birthday) String() string {
	if !b.set {
		return ""
	}
	return b.date.Format(BirthdayLayout)
}

// DaysUntilNext returns the number of days from the calendar date of today to the next
// occurrence of the birthday's month and day. A birthday falling on today yields 0. The second
// result is false when no birthday is set.
//
// A Feb 29 birthday is celebrated on Mar 1 in years that are not leap years.
func (b Birthday) DaysUntilNext(today time.Time) (int, bool) {
	if !b.set {
		return 0, false
	}
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	next := time.Date(y, b.date.Month(), b.date.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(start) {
		next = time.Date(y+1, b.date.Month(), b.date.Day(), 0, 0, 0, 0, time.UTC)
	}
	return int(next.Sub(start).Hours() / 24), true
}
