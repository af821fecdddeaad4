// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Registration form errors
	CodeRegistrationRequiredFields   Code = "REGISTRATION_REQUIRED_FIELDS"
	CodeRegistrationPasswordMismatch Code = "REGISTRATION_PASSWORD_MISMATCH"
	CodeRegistrationPasswordTooShort Code = "REGISTRATION_PASSWORD_TOO_SHORT"
	CodeRegistrationInvalidEmail     Code = "REGISTRATION_INVALID_EMAIL"
	CodeRegistrationCompanyRequired  Code = "REGISTRATION_COMPANY_REQUIRED"
	CodeRegistrationUnknownField     Code = "REGISTRATION_UNKNOWN_FIELD"
	CodeRegistrationInvalidIndustry  Code = "REGISTRATION_INVALID_INDUSTRY"
	CodeRegistrationFailed           Code = "REGISTRATION_FAILED"

	// Image upload errors
	CodeImageUploadFailed Code = "IMAGE_UPLOAD_FAILED"

	// Account provider errors
	CodeAuthInvalidEmail      Code = "AUTH_INVALID_EMAIL"
	CodeAuthWeakPassword      Code = "AUTH_WEAK_PASSWORD"
	CodeAuthEmailAlreadyInUse Code = "AUTH_EMAIL_ALREADY_IN_USE"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeRegistrationRequiredFields,
		CodeRegistrationPasswordMismatch,
		CodeRegistrationPasswordTooShort,
		CodeRegistrationInvalidEmail,
		CodeRegistrationCompanyRequired,
		CodeRegistrationUnknownField,
		CodeRegistrationInvalidIndustry,
		CodeAuthInvalidEmail,
		CodeAuthWeakPassword:
		return codes.InvalidArgument

	// AlreadyExists - unique resource constraint
	case CodeAuthEmailAlreadyInUse:
		return codes.AlreadyExists

	// Unavailable - a remote collaborator could not serve the request
	case CodeImageUploadFailed:
		return codes.Unavailable

	case CodeNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
