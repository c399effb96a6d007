package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// phoneStrings returns the digits of each phone of r.
func phoneStrings(r *Record) []string {
	var phones []string
	for _, p := range r.Phones() {
		phones = append(phones, p.String())
	}
	return phones
}

// TestNewRecord builds a record from the persisted shape and expects all values to be kept.
func TestNewRecord(t *testing.T) {
	r, err := NewRecord("Erika Mustermann", []string{"1234567890", "0987654321"}, "1969-03-02")
	require.NoError(t, err)
	assert.Equal(t, "Erika Mustermann", r.Name())
	assert.Equal(t, []string{"1234567890", "0987654321"}, phoneStrings(r))
	assert.Equal(t, "1969-03-02", r.Birthday().String())
}

// TestNewRecordWithoutPhonesAndBirthday expects that phones and birthday are optional.
func TestNewRecordWithoutPhonesAndBirthday(t *testing.T) {
	r, err := NewRecord("Rudi", nil, "")
	require.NoError(t, err)
	assert.Empty(t, r.Phones())
	assert.False(t, r.Birthday().IsSet())
}

// TestNewRecordInvalid expects that any invalid part fails the construction.
func TestNewRecordInvalid(t *testing.T) {
	_, err := NewRecord("", nil, "")
	assert.ErrorIs(t, err, ErrMissingArgument)
	_, err = NewRecord("Rudi", []string{"1234567890", "0815"}, "")
	assert.ErrorIs(t, err, ErrInvalidPhone)
	_, err = NewRecord("Rudi", []string{"1234567890"}, "2023-02-29")
	assert.ErrorIs(t, err, ErrInvalidBirthday)
}

// TestNewRecordNames expects blank names and names with control characters to be rejected, and
// names with digits to be kept as they are.
func TestNewRecordNames(t *testing.T) {
	for _, name := range []string{"  ", "\t"} {
		_, err := NewRecord(name, nil, "")
		assert.ErrorIs(t, err, ErrMissingArgument, name)
	}
	for _, name := range []string{"Agent\t007", "Alice\nBob", "Carla\r"} {
		_, err := NewRecord(name, nil, "")
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
	for _, name := range []string{"Agent 007", "R2D2", " Alice"} {
		r, err := NewRecord(name, nil, "")
		require.NoError(t, err, name)
		assert.Equal(t, name, r.Name())
	}
}

// TestAddPhoneTwice adds the identical phone twice. It expects exactly one phone in the record.
func TestAddPhoneTwice(t *testing.T) {
	r, _ := NewRecord("Alice", nil, "")
	require.NoError(t, r.AddPhone("1234567890"))
	require.NoError(t, r.AddPhone("1234567890"))
	assert.Equal(t, []string{"1234567890"}, phoneStrings(r))
}

// TestAddPhoneKeepsOrder expects that phones are kept in insertion order.
func TestAddPhoneKeepsOrder(t *testing.T) {
	r, _ := NewRecord("Alice", nil, "")
	for _, p := range []string{"3333333333", "1111111111", "2222222222"} {
		require.NoError(t, r.AddPhone(p))
	}
	assert.Equal(t, []string{"3333333333", "1111111111", "2222222222"}, phoneStrings(r))
}

// TestAddPhoneInvalid expects ErrInvalidPhone and an unchanged phone list.
func TestAddPhoneInvalid(t *testing.T) {
	r, _ := NewRecord("Alice", []string{"1234567890"}, "")
	assert.ErrorIs(t, r.AddPhone("12345"), ErrInvalidPhone)
	assert.Equal(t, []string{"1234567890"}, phoneStrings(r))
}

// TestPhonesReturnsCopy expects that modifying the returned slice does not touch the record.
func TestPhonesReturnsCopy(t *testing.T) {
	r, _ := NewRecord("Alice", []string{"1234567890"}, "")
	phones := r.Phones()
	phones[0] = PhoneNumber{value: "0000000000"}
	assert.Equal(t, []string{"1234567890"}, phoneStrings(r))
}

// TestEditPhone replaces the middle phone and expects its position to be kept.
func TestEditPhone(t *testing.T) {
	r, _ := NewRecord("Alice", []string{"1111111111", "2222222222", "3333333333"}, "")
	require.NoError(t, r.EditPhone("2222222222", "4444444444"))
	assert.Equal(t, []string{"1111111111", "4444444444", "3333333333"}, phoneStrings(r))
}

// TestEditPhoneNotFound edits a phone the record does not have. It expects ErrPhoneNotFound and
// an unchanged phone list.
func TestEditPhoneNotFound(t *testing.T) {
	r, _ := NewRecord("Alice", []string{"1111111111"}, "")
	assert.ErrorIs(t, r.EditPhone("9999999999", "4444444444"), ErrPhoneNotFound)
	assert.Equal(t, []string{"1111111111"}, phoneStrings(r))
}

// TestEditPhoneInvalid replaces a phone with an invalid one. It expects ErrInvalidPhone and an
// unchanged phone list.
func TestEditPhoneInvalid(t *testing.T) {
	r, _ := NewRecord("Alice", []string{"1111111111"}, "")
	assert.ErrorIs(t, r.EditPhone("1111111111", "44-44"), ErrInvalidPhone)
	assert.Equal(t, []string{"1111111111"}, phoneStrings(r))
}

// TestEditPhoneToExisting replaces a phone with one the record already holds. It expects that the
// number appears only once afterwards.
func TestEditPhoneToExisting(t *testing.T) {
	r, _ := NewRecord("Alice", []string{"1111111111", "2222222222"}, "")
	require.NoError(t, r.EditPhone("2222222222", "1111111111"))
	assert.Equal(t, []string{"1111111111"}, phoneStrings(r))
	require.NoError(t, r.EditPhone("1111111111", "1111111111"))
	assert.Equal(t, []string{"1111111111"}, phoneStrings(r))
}

// TestRemovePhone removes one of two phones.
func TestRemovePhone(t *testing.T) {
	r, _ := NewRecord("Alice", []string{"1111111111", "2222222222"}, "")
	require.NoError(t, r.RemovePhone("1111111111"))
	assert.Equal(t, []string{"2222222222"}, phoneStrings(r))
}

// TestRemovePhoneNotFound expects ErrPhoneNotFound when the phone is absent.
func TestRemovePhoneNotFound(t *testing.T) {
	r, _ := NewRecord("Alice", []string{"1111111111"}, "")
	assert.ErrorIs(t, r.RemovePhone("2222222222"), ErrPhoneNotFound)
	assert.Equal(t, []string{"1111111111"}, phoneStrings(r))
}

// TestFindPhone looks up a present and an absent phone.
func TestFindPhone(t *testing.T) {
	r, _ := NewRecord("Alice", []string{"1111111111"}, "")
	phone, err := r.FindPhone("1111111111")
	require.NoError(t, err)
	assert.Equal(t, "1111111111", phone.String())
	_, err = r.FindPhone("2222222222")
	assert.ErrorIs(t, err, ErrPhoneNotFound)
}

// TestSetBirthday replaces a birthday and then clears it.
func TestSetBirthday(t *testing.T) {
	r, _ := NewRecord("Alice", nil, "2000-05-01")
	b, _ := ParseBirthday("1999-12-24")
	r.SetBirthday(b)
	assert.Equal(t, "1999-12-24", r.Birthday().String())
	r.SetBirthday(Birthday{})
	assert.False(t, r.Birthday().IsSet())
}

// TestDaysToBirthdayIdempotent calls DaysToBirthday twice without mutation and expects the same
// value both times.
func TestDaysToBirthdayIdempotent(t *testing.T) {
	r, _ := NewRecord("Alice", nil, "2000-05-01")
	today := date(2025, time.April, 1)
	first, ok := r.DaysToBirthday(today)
	require.True(t, ok)
	second, _ := r.DaysToBirthday(today)
	assert.Equal(t, 30, first)
	assert.Equal(t, first, second)
}

// TestDaysToBirthdayUnset expects no value when the record has no birthday.
func TestDaysToBirthdayUnset(t *testing.T) {
	r, _ := NewRecord("Alice", nil, "")
	_, ok := r.DaysToBirthday(date(2025, time.April, 1))
	assert.False(t, ok)
}

// TestRecordString checks the single line rendering with and without a birthday.
func TestRecordString(t *testing.T) {
	r, _ := NewRecord("Alice", []string{"1111111111", "2222222222"}, "2000-05-01")
	assert.Equal(t, "Contact name: Alice, birthday: 2000-05-01, phones: 1111111111; 2222222222", r.String())
	r, _ = NewRecord("Bob", nil, "")
	assert.Equal(t, "Contact name: Bob, birthday: not set, phones: ", r.String())
}
