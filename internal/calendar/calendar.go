// Package calendar exports the birthdays of an address book as an iCalendar feed.
package calendar

import (
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"gitlab.com/dirk.krummacker/phonebook/internal/model"
)

const (
	version  = "2.0"
	prodID   = "-//Phonebook//Birthdays//EN"
	calName  = "Birthdays"
	uidHost  = "phonebook"
	uidBytes = 12

	// yearly repeats on the birthday's month and day.
	yearly = "FREQ=YEARLY"
	// yearlyLeapDay repeats on the 60th day of the year, which is Feb 29 in leap years and Mar 1
	// otherwise.
	yearlyLeapDay = "FREQ=YEARLY;BYYEARDAY=60"
)

// emptyCalendar is written when no record has a birthday, because a VCALENDAR needs at least one
// component to be encoded.
const emptyCalendar = "BEGIN:VCALENDAR\r\nVERSION:" + version + "\r\nPRODID:" + prodID + "\r\nEND:VCALENDAR\r\n"

// SummaryFunc renders the title of a birthday event.
type SummaryFunc func(name string) string

// DefaultSummary is used when Write is called without a SummaryFunc.
func DefaultSummary(name string) string {
	return "Birthday of " + name
}

// Write encodes one all-day, yearly recurring event per record with a birthday. now is stamped
// into every event. Records without a birthday are left out.
func Write(w io.Writer, book *model.AddressBook, now time.Time) error {
	return WriteWithSummary(w, book, now, DefaultSummary)
}

// WriteWithSummary is Write with a custom event title.
func WriteWithSummary(w io.Writer, book *model.AddressBook, now time.Time, summary SummaryFunc) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, version)
	cal.Props.SetText(ical.PropProductID, prodID)
	cal.Props.SetText("X-WR-CALNAME", calName)

	stamp := ical.NewProp(ical.PropDateTimeStamp)
	stamp.SetDateTime(now.UTC())

	for _, r := range book.Values() {
		date, ok := r.Birthday().Date()
		if !ok {
			continue
		}
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, uid(r.Name()))
		event.Props.Set(stamp)
		event.Props.SetText(ical.PropSummary, summary(r.Name()))

		start := ical.NewProp(ical.PropDateTimeStart)
		start.SetDate(date)
		event.Props.Set(start)

		// Set the rule manually to avoid the VALUE=TEXT param.
		rule := ical.NewProp(ical.PropRecurrenceRule)
		rule.Value = yearly
		if date.Month() == time.February && date.Day() == 29 {
			rule.Value = yearlyLeapDay
		}
		event.Props.Set(rule)

		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		_, err := io.WriteString(w, emptyCalendar)
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

// uid is stable for a name, so calendar clients update events instead of duplicating them.
func uid(name string) string {
	sum := sha256.Sum256([]byte(name))
	return fmt.Sprintf("%x@%s", sum[:uidBytes], uidHost)
}
