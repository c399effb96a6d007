// Package lineformat splits whitespace separated contact lines of the form
//
//	<name words...> <phone> [<phone>...] [<YYYY-MM-DD>]
//
// as typed on the command line and as stored in the plain text phonebook file. Names that this
// form cannot carry, such as "Agent 007", are written with a tab after the name instead:
//
//	<name>\t<phone> [<phone>...] [<YYYY-MM-DD>]
package lineformat

import (
	"regexp"
	"strings"
	"unicode"
)

// nameSeparator ends the name in lines whose name contains digits or irregular spaces.
const nameSeparator = "\t"

// datePattern matches arguments meant as a date, including ones with one digit month or day that
// are then rejected as invalid birthdays.
var datePattern = regexp.MustCompile(`^\d{4,}-\d{1,2}-\d{1,2}$`)

// phoneNoise holds the characters people type into phone numbers that are not part of them.
var phoneNoise = strings.NewReplacer("+", "", "-", "", "(", "", ")", "", " ", "")

// NormalizePhone strips the formatting characters from a typed phone number.
func NormalizePhone(raw string) string {
	return phoneNoise.Replace(raw)
}

// SplitName joins the leading tokens that contain no digit into a name and returns it together
// with the remaining tokens.
func SplitName(tokens []string) (string, []string) {
	i := 0
	for i < len(tokens) && !strings.ContainsFunc(tokens[i], unicode.IsDigit) {
		i++
	}
	return strings.Join(tokens[:i], " "), tokens[i:]
}

// SplitBirthday separates a trailing birthday from args. The last argument is a birthday when it
// has the shape of a date, or when it contains a '-' but is no phone number once the formatting
// characters are stripped. So "050-123-4567" stays a phone.
func SplitBirthday(args []string) ([]string, string) {
	if n := len(args); n > 0 && isBirthday(args[n-1]) {
		return args[:n-1], args[n-1]
	}
	return args, ""
}

func isBirthday(arg string) bool {
	if !strings.Contains(arg, "-") {
		return false
	}
	if datePattern.MatchString(arg) {
		return true
	}
	digits := NormalizePhone(arg)
	return digits == "" || strings.ContainsFunc(digits, func(r rune) bool { return !unicode.IsDigit(r) })
}

// Parse splits a complete line into name, phones and birthday. A line with a tab takes everything
// before the tab as the name.
func Parse(line string) (name string, phones []string, birthday string) {
	if head, tail, ok := strings.Cut(line, nameSeparator); ok {
		phones, birthday = SplitBirthday(strings.Fields(tail))
		return head, phones, birthday
	}
	name, rest := SplitName(strings.Fields(line))
	phones, birthday = SplitBirthday(rest)
	return name, phones, birthday
}

// Format renders name, phones and birthday as a single line, the inverse of Parse. The name is
// followed by a tab unless it reads back unchanged from the space separated form.
func Format(name string, phones []string, birthday string) string {
	rest := phones
	if birthday != "" {
		rest = append(rest[:len(rest):len(rest)], birthday)
	}
	if !isPlainName(name) {
		return name + nameSeparator + strings.Join(rest, " ")
	}
	return strings.Join(append([]string{name}, rest...), " ")
}

// isPlainName reports whether name survives being split into words and joined again.
func isPlainName(name string) bool {
	parsed, rest := SplitName(strings.Fields(name))
	return parsed == name && len(rest) == 0
}
