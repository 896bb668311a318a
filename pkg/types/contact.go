package types

import "strings"

// Phone numbers carry between minPhoneDigits and maxPhoneDigits digits once
// separators are removed.
const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// ValidateEmail returns ErrInvalidEmail unless email is empty or has exactly
// one "@" with non-empty local and domain parts and no spaces.
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	if strings.ContainsAny(email, " \t") || strings.Count(email, "@") != 1 {
		return ErrInvalidEmail
	}
	local, domain, _ := strings.Cut(email, "@")
	if local == "" || domain == "" || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePhone returns ErrInvalidPhone unless phone is empty or consists of
// digits and the separators " -.()" with an optional leading "+", and
// carries between 7 and 15 digits.
func ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	digits := 0
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return ErrInvalidPhone
		}
	}
	if digits < minPhoneDigits || digits > maxPhoneDigits {
		return ErrInvalidPhone
	}
	return nil
}
