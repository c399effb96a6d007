package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// date is a shorthand for a calendar date at midnight UTC.
func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TestParseBirthday parses well formed dates, including Feb 29 of a leap year.
func TestParseBirthday(t *testing.T) {
	tests := []struct {
		raw      string
		expected time.Time
	}{
		{"2000-05-01", date(2000, time.May, 1)},
		{"2024-02-29", date(2024, time.February, 29)},
		{"1974-11-29", date(1974, time.November, 29)},
		{"0001-01-01", date(1, time.January, 1)},
		{"12345-06-07", date(12345, time.June, 7)},
	}
	for _, tt := range tests {
		b, err := ParseBirthday(tt.raw)
		require.NoError(t, err, tt.raw)
		got, ok := b.Date()
		assert.True(t, ok)
		assert.Equal(t, tt.expected, got, tt.raw)
	}
}

// TestParseBirthdayEmpty expects that an empty string yields a birthday that is not set.
func TestParseBirthdayEmpty(t *testing.T) {
	b, err := ParseBirthday("")
	require.NoError(t, err)
	assert.False(t, b.IsSet())
	assert.Equal(t, "", b.String())
}

// TestParseBirthdayInvalid expects ErrInvalidBirthday for malformed or non-existent dates.
func TestParseBirthdayInvalid(t *testing.T) {
	invalid := []string{
		"2023-02-29",
		"2000-13-01",
		"2000-00-10",
		"2000-04-31",
		"2000-5-1",
		"99-05-01",
		"0000-01-01",
		"2000/05/01",
		"01-05-2000",
		"2000-05-01T00:00:00Z",
		"birthday",
		" 2000-05-01",
	}
	for _, raw := range invalid {
		_, err := ParseBirthday(raw)
		assert.ErrorIs(t, err, ErrInvalidBirthday, raw)
	}
}

// TestBirthdayString expects the YYYY-MM-DD rendering of a set birthday.
func TestBirthdayString(t *testing.T) {
	b, err := ParseBirthday("1969-03-02")
	require.NoError(t, err)
	assert.Equal(t, "1969-03-02", b.String())
	assert.Equal(t, "1969-03-02", BirthdayOf(time.Date(1969, 3, 2, 15, 4, 5, 0, time.Local)).String())
}

// TestDaysUntilNext covers birthdays later this year, today, already passed and the year
// rollover, including the Feb 29 fallback to Mar 1 in non-leap years.
func TestDaysUntilNext(t *testing.T) {
	tests := []struct {
		name     string
		birthday string
		today    time.Time
		expected int
	}{
		{"later this year", "1990-12-31", date(2025, time.June, 15), 199},
		{"today", "1990-06-15", date(2025, time.June, 15), 0},
		{"tomorrow", "1990-06-16", date(2025, time.June, 15), 1},
		{"yesterday", "1990-06-14", date(2025, time.June, 15), 364},
		{"passed, next year is leap", "1990-06-14", date(2027, time.June, 15), 365},
		{"new year's eve to new year", "1990-01-01", date(2025, time.December, 31), 1},
		{"leapling in leap year", "2000-02-29", date(2024, time.January, 1), 59},
		{"leapling on feb 28 of non-leap year", "2000-02-29", date(2025, time.February, 28), 1},
		{"leapling on mar 1 of non-leap year", "2000-02-29", date(2025, time.March, 1), 0},
		{"leapling after mar 1, next year leap", "2000-02-29", date(2027, time.March, 2), 364},
		{"leapling after mar 1, next year not leap", "2000-02-29", date(2025, time.March, 2), 364},
		{"time of day is ignored", "1990-06-16", time.Date(2025, time.June, 15, 23, 59, 0, 0, time.UTC), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBirthday(tt.birthday)
			require.NoError(t, err)
			days, ok := b.DaysUntilNext(tt.today)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, days)
		})
	}
}

// TestDaysUntilNextUnset expects that an unset birthday reports no distance.
func TestDaysUntilNextUnset(t *testing.T) {
	_, ok := Birthday{}.DaysUntilNext(date(2025, time.June, 15))
	assert.False(t, ok)
}
