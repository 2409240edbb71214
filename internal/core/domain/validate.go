package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// PasswordSymbols is the set of special characters a password must draw from.
const PasswordSymbols = "@$!%*?&"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks the local@domain.tld shape.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces the strength policy: at least MinPasswordLength
// characters, drawn only from letters, digits and PasswordSymbols, with one of
// each of lowercase, uppercase, digit and symbol.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		default:
			return ErrWeakPassword
		}
	}
	if !lower || !upper || !digit || !symbol {
		return ErrWeakPassword
	}
	return nil
}

// Registration is the input of a sign-up.
type Registration struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
}

// Validate runs the local checks in display order: email, confirmation, strength.
func (r Registration) Validate() error {
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if strings.TrimSpace(r.Username) == "" {
		return ErrMissingArgument.WithMessage("username is required")
	}
	if r.Password != r.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return ValidatePassword(r.Password)
}

// Language is a language the service translates between.
type Language struct {
	Code string
	Name string
}

// Languages is the supported set, in menu order.
var Languages = []Language{
	{Code: "en", Name: "English"},
	{Code: "uk", Name: "Ukrainian"},
	{Code: "fr", Name: "French"},
	{Code: "gr", Name: "German"},
	{Code: "es", Name: "Spanish"},
}

// LookupLanguage returns the language for a code, case-insensitively.
func LookupLanguage(code string) (Language, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, l := range Languages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// NewOrderRequest validates an order locally and returns the request body.
func NewOrderRequest(text, source, target string) (OrderRequest, error) {
	if strings.TrimSpace(text) == "" {
		return OrderRequest{}, ErrEmptyText
	}
	src, ok := LookupLanguage(source)
	if !ok {
		return OrderRequest{}, ErrUnsupportedLanguage.WithMessage("unsupported source language: " + source)
	}
	tgt, ok := LookupLanguage(target)
	if !ok {
		return OrderRequest{}, ErrUnsupportedLanguage.WithMessage("unsupported target language: " + target)
	}
	if src.Code == tgt.Code {
		return OrderRequest{}, ErrSameLanguage
	}
	return OrderRequest{SourceText: text, SourceLang: src.Code, TargetLang: tgt.Code}, nil
}

// EstimatePrice returns the displayed price in whole UAH: one per started
// block of ten characters.
func EstimatePrice(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 9) / 10
}
