package email

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
)

const (
	maxLength    = 254
	fallbackName = "there"
)

// Normalize trims surrounding space and lower-cases an address so that
// uniqueness checks are case-insensitive.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValid reports whether email is a syntactically valid address.
func IsValid(email string) bool {
	if email == "" || len(email) > maxLength {
		return false
	}
	return govalidator.IsEmail(email)
}

// GreetingName picks a first name out of the local part of an address
// ("marie.curie@x" greets "Marie"). Invitees have no account, so this is
// the only name the invitation mail can use.
func GreetingName(addr string) string {
	local, _, _ := strings.Cut(addr, "@")
	for _, part := range strings.FieldsFunc(local, isNameSeparator) {
		r, size := utf8.DecodeRuneInString(part)
		if !unicode.IsLetter(r) {
			continue
		}
		return string(unicode.ToUpper(r)) + part[size:]
	}
	return fallbackName
}

func isNameSeparator(r rune) bool {
	switch r {
	case '.', '_', '-', '+':
		return true
	}
	return unicode.IsDigit(r)
}
