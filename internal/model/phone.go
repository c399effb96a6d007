package model

import "fmt"

// minPhoneLength is the smallest number of digits a phone number may have.
const minPhoneLength = 10

// PhoneNumber is a validated phone number consisting of digits only. The zero value is not a
// valid phone number; use NewPhoneNumber.
type PhoneNumber struct {
	value string
}

// NewPhoneNumber validates raw and wraps it. No separators are stripped here, so "+49 123" is
// rejected just like "abc".
func NewPhoneNumber(raw string) (PhoneNumber, error) {
	if len(raw) < minPhoneLength || !isDigits(raw) {
		return PhoneNumber{}, fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
	}
	return PhoneNumber{value: raw}, nil
}

// String returns the digits exactly as they were supplied.
func (p PhoneNumber) String() string {
	return p.value
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
