package model

import "errors"

// The error kinds surfaced by the core. Callers match them with errors.Is; the concrete errors
// returned by constructors and mutators wrap them together with the offending input.
var (
	// ErrInvalidPhone means a phone string is shorter than 10 characters or holds a non-digit.
	ErrInvalidPhone = errors.New("invalid phone number")

	// ErrInvalidBirthday means a birthday string is not a valid YYYY-MM-DD calendar date.
	ErrInvalidBirthday = errors.New("invalid birthday")

	// ErrRecordNotFound means no record exists for the requested name.
	ErrRecordNotFound = errors.New("record not found")

	// ErrPhoneNotFound means the record does not hold the requested phone number.
	ErrPhoneNotFound = errors.New("phone not found")

	// ErrInvalidName means a name holds a control character such as a tab or a line break.
	ErrInvalidName = errors.New("invalid name")

	// ErrMissingArgument means a required value was not supplied.
	ErrMissingArgument = errors.New("missing argument")
)
