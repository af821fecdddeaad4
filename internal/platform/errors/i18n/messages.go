package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeRegistrationRequiredFields   = "REGISTRATION_REQUIRED_FIELDS"
	CodeRegistrationPasswordMismatch = "REGISTRATION_PASSWORD_MISMATCH"
	CodeRegistrationPasswordTooShort = "REGISTRATION_PASSWORD_TOO_SHORT"
	CodeRegistrationInvalidEmail     = "REGISTRATION_INVALID_EMAIL"
	CodeRegistrationCompanyRequired  = "REGISTRATION_COMPANY_REQUIRED"
	CodeRegistrationUnknownField     = "REGISTRATION_UNKNOWN_FIELD"
	CodeRegistrationInvalidIndustry  = "REGISTRATION_INVALID_INDUSTRY"
	CodeRegistrationFailed           = "REGISTRATION_FAILED"
	CodeImageUploadFailed            = "IMAGE_UPLOAD_FAILED"
	CodeAuthInvalidEmail             = "AUTH_INVALID_EMAIL"
	CodeAuthWeakPassword             = "AUTH_WEAK_PASSWORD"
	CodeAuthEmailAlreadyInUse        = "AUTH_EMAIL_ALREADY_IN_USE"
	CodeNotFound                     = "NOT_FOUND"
)

var enUS = map[Code]string{
	CodeRegistrationRequiredFields:   "Please complete all required fields.",
	CodeRegistrationPasswordMismatch: "Passwords do not match.",
	CodeRegistrationPasswordTooShort: "Password must be at least {{.MinLength}} characters.",
	CodeRegistrationInvalidEmail:     "Please enter a valid email address.",
	CodeRegistrationCompanyRequired:  "Company name is required for producers.",
	CodeRegistrationUnknownField:     "Unknown form field {{.Field}}.",
	CodeRegistrationInvalidIndustry:  "Industry type {{.Value}} is not supported.",
	CodeRegistrationFailed:           "Error registering the user: {{.Cause}}",
	CodeImageUploadFailed:            "Image upload failed.",
	CodeAuthInvalidEmail:             "The email address is badly formatted.",
	CodeAuthWeakPassword:             "Password should be at least {{.MinLength}} characters.",
	CodeAuthEmailAlreadyInUse:        "The email address is already in use by another account.",
	CodeNotFound:                     "Record not found.",
}

var es = map[Code]string{
	CodeRegistrationRequiredFields:   "Por favor complete todos los campos obligatorios.",
	CodeRegistrationPasswordMismatch: "Las contraseñas no coinciden.",
	CodeRegistrationPasswordTooShort: "La contraseña debe tener al menos {{.MinLength}} caracteres.",
	CodeRegistrationInvalidEmail:     "Por favor ingrese un correo electrónico válido.",
	CodeRegistrationCompanyRequired:  "El nombre de la empresa es obligatorio para productores.",
	CodeRegistrationUnknownField:     "Campo de formulario desconocido {{.Field}}.",
	CodeRegistrationInvalidIndustry:  "El tipo de industria {{.Value}} no está soportado.",
	CodeRegistrationFailed:           "Error al registrar el usuario: {{.Cause}}",
	CodeImageUploadFailed:            "La subida de la imagen falló.",
	CodeAuthInvalidEmail:             "El correo electrónico tiene un formato incorrecto.",
	CodeAuthWeakPassword:             "La contraseña debe tener al menos {{.MinLength}} caracteres.",
	CodeAuthEmailAlreadyInUse:        "El correo electrónico ya está en uso por otra cuenta.",
	CodeNotFound:                     "Registro no encontrado.",
}
