package model

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"
)

// Record is one contact: a name that never changes, an ordered set of phone numbers and an
// optional birthday.
type Record struct {
	name     string
	phones   []PhoneNumber
	birthday Birthday
}

// NewRecord builds a record from the persisted shape of a contact. Duplicate phones collapse into
// one entry. Any invalid phone or birthday fails the whole construction, and so does a blank name
// or one with control characters.
func NewRecord(name string, phones []string, birthday string) (*Record, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingArgument)
	}
	if strings.ContainsFunc(name, unicode.IsControl) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	b, err := ParseBirthday(birthday)
	if err != nil {
		return nil, err
	}
	r := &Record{name: name, birthday: b}
	for _, raw := range phones {
		if err := r.AddPhone(raw); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Name returns the contact's name.
func (r *Record) Name() string {
	return r.name
}

// Phones returns a copy of the phone numbers in insertion order.
func (r *Record) Phones() []PhoneNumber {
	return slices.Clone(r.phones)
}

// Birthday returns the contact's birthday, which may be unset.
func (r *Record) Birthday() Birthday {
	return r.birthday
}

// AddPhone validates raw and appends it. Adding a number the record already holds does nothing.
func (r *Record) AddPhone(raw string) error {
	phone, err := NewPhoneNumber(raw)
	if err != nil {
		return err
	}
	if !slices.Contains(r.phones, phone) {
		r.phones = append(r.phones, phone)
	}
	return nil
}

// EditPhone replaces the first phone equal to oldRaw with newRaw, keeping its position. The phone
// list is left untouched when oldRaw is absent or newRaw is invalid. If newRaw is already held at
// another position the edited entry is dropped instead, so every number appears once.
func (r *Record) EditPhone(oldRaw, newRaw string) error {
	i := r.indexOf(oldRaw)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrPhoneNotFound, oldRaw)
	}
	phone, err := NewPhoneNumber(newRaw)
	if err != nil {
		return err
	}
	if j := slices.Index(r.phones, phone); j >= 0 && j != i {
		r.phones = slices.Delete(r.phones, i, i+1)
		return nil
	}
	r.phones[i] = phone
	return nil
}

// RemovePhone removes the phone equal to raw. It fails with ErrPhoneNotFound when the record has
// no such number.
func (r *Record) RemovePhone(raw string) error {
	i := r.indexOf(raw)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrPhoneNotFound, raw)
	}
	r.phones = slices.Delete(r.phones, i, i+1)
	return nil
}

// FindPhone returns the phone equal to raw, or ErrPhoneNotFound.
func (r *Record) FindPhone(raw string) (PhoneNumber, error) {
	i := r.indexOf(raw)
	if i < 0 {
		return PhoneNumber{}, fmt.Errorf("%w: %q", ErrPhoneNotFound, raw)
	}
	return r.phones[i], nil
}

// SetBirthday replaces the current birthday, set or not.
func (r *Record) SetBirthday(b Birthday) {
	r.birthday = b
}

// DaysToBirthday returns the days from today until the next birthday. The second result is false
// when no birthday is set.
func (r *Record) DaysToBirthday(today time.Time) (int, bool) {
	return r.birthday.DaysUntilNext(today)
}

// String renders the record on a single line.
func (r *Record) String() string {
	birthday := r.birthday.String()
	if birthday == "" {
		birthday = "not set"
	}
	phones := make([]string, len(r.phones))
	for i, p := range r.phones {
		phones[i] = p.String()
	}
	return fmt.Sprintf("Contact name: %s, birthday: %s, phones: %s",
		r.name, birthday, strings.Join(phones, "; "))
}

func (r *Record) indexOf(raw string) int {
	return slices.IndexFunc(r.phones, func(p PhoneNumber) bool { return p.value == raw })
}
