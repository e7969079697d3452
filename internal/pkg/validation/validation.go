package validation

import (
	"math"
	"regexp"
	"unicode"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Currency codes are three uppercase ASCII letters (ISO 4217).
var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword: at least 8 characters with a letter, a number and a
// special character.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter, hasDigit, hasSpecial := false, false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}

func IsValidCurrency(code string) bool {
	return currencyRe.MatchString(code)
}

// IsFiniteNumber rejects the NaN/Inf values JSON bodies can smuggle in
// through float fields.
func IsFiniteNumber(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsValidVatRate checks a VAT percentage: finite and within [0, 100].
func IsValidVatRate(rate float64) bool {
	return IsFiniteNumber(rate) && rate >= 0 && rate <= 100
}

// IsValidYear bounds a model year to the plausible automotive window.
func IsValidYear(year int) bool {
	return year >= 1900 && year <= 2100
}
