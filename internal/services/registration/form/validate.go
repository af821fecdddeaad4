package form

import (
	"regexp"
	"strconv"
	"unicode/utf16"

	apperrors "github.com/louisbranch/rawcn/internal/platform/errors"
)

// MinPasswordLength is the shortest password the form accepts.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

var (
	// ErrRequiredFields indicates a missing full name, email or password.
	ErrRequiredFields = apperrors.New(apperrors.CodeRegistrationRequiredFields, "required fields are missing")
	// ErrPasswordMismatch indicates the confirmation differs from the password.
	ErrPasswordMismatch = apperrors.New(apperrors.CodeRegistrationPasswordMismatch, "passwords do not match")
	// ErrPasswordTooShort indicates a password under MinPasswordLength characters.
	ErrPasswordTooShort = apperrors.WithMetadata(
		apperrors.CodeRegistrationPasswordTooShort,
		"password is too short",
		map[string]string{"MinLength": strconv.Itoa(MinPasswordLength)},
	)
	// ErrInvalidEmail indicates an email without the name@host.tld shape.
	ErrInvalidEmail = apperrors.New(apperrors.CodeRegistrationInvalidEmail, "email address is invalid")
	// ErrCompanyRequired indicates a producer without a company name.
	ErrCompanyRequired = apperrors.New(apperrors.CodeRegistrationCompanyRequired, "company name is required for producers")
)

// ValidEmail reports whether email has the loose name@host.tld shape the
// form accepts.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// PasswordLength counts UTF-16 code units, so a character outside the Basic
// Multilingual Plane such as an emoji counts as two.
func PasswordLength(password string) int {
	return len(utf16.Encode([]rune(password)))
}

// Validate checks in against the form rules and returns the first failure.
// It never reports more than one problem at a time.
func Validate(in Input, isProducer bool) error {
	if in.FullName == "" || in.Email == "" || in.Password == "" || in.ConfirmPassword == "" {
		return ErrRequiredFields
	}
	if in.Password != in.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if PasswordLength(in.Password.Reveal()) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if !ValidEmail(in.Email) {
		return ErrInvalidEmail
	}
	if isProducer && in.CompanyName == "" {
		return ErrCompanyRequired
	}
	return nil
}
