package errors

import (
	"errors"

	"github.com/louisbranch/rawcn/internal/platform/errors/i18n"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultLocale is the default locale for error messages.
const DefaultLocale = i18n.BaseLocale

// HandleError converts domain errors to gRPC status for client responses.
// The user-facing message comes from the i18n catalog for locale.
func HandleError(err error, locale string) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		catalog := i18n.GetCatalog(locale)
		return appErr.ToGRPCStatus(catalog.Locale(), catalog.Format(string(appErr.Code), appErr.Metadata))
	}

	return status.Error(codes.Internal, "an unexpected error occurred")
}

// HandleErrorWithMessage converts err to a gRPC status carrying message as the
// user-facing text. Errors without a domain code are reported under fallback.
func HandleErrorWithMessage(err error, locale string, message string, fallback Code) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Wrap(fallback, err.Error(), err)
	}
	return appErr.ToGRPCStatus(i18n.GetCatalog(locale).Locale(), message)
}

// LocalizedMessage renders the user-facing message for err in locale.
// Non-domain errors render their own text.
func LocalizedMessage(err error, locale string) string {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return i18n.GetCatalog(locale).Format(string(appErr.Code), appErr.Metadata)
	}
	return err.Error()
}

// GetCode extracts the error code from any error.
// Returns CodeUnknown if the error is not a domain error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error has the specified code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}
