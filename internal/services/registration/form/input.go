// Package form holds the registration form model: the input record, its
// validation rules, the records it persists and the screen phase transitions.
package form

import (
	"sort"
	"strings"

	apperrors "github.com/louisbranch/rawcn/internal/platform/errors"
)

// Role is the account role marker persisted in the role record.
type Role int

const (
	// RoleBuyer is the default role.
	RoleBuyer Role = 1
	// RoleProducer represents a company selling raw materials.
	RoleProducer Role = 2
)

// RoleFor maps the producer toggle to a role.
func RoleFor(isProducer bool) Role {
	if isProducer {
		return RoleProducer
	}
	return RoleBuyer
}

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleBuyer:
		return "buyer"
	case RoleProducer:
		return "producer"
	default:
		return "unknown"
	}
}

// IndustryType is the producer's sector.
type IndustryType string

const (
	IndustryForestal     IndustryType = "Forestal"
	IndustryChemical     IndustryType = "Chemical"
	IndustryMineral      IndustryType = "Mineral"
	IndustryAgricultural IndustryType = "Agricultural"
)

// DefaultIndustryType is preselected on a new form.
const DefaultIndustryType = IndustryForestal

// IndustryTypes lists the selectable industries in display order.
func IndustryTypes() []IndustryType {
	return []IndustryType{IndustryForestal, IndustryChemical, IndustryMineral, IndustryAgricultural}
}

// ParseIndustryType matches value case-insensitively against the known industries.
func ParseIndustryType(value string) (IndustryType, error) {
	trimmed := strings.TrimSpace(value)
	for _, industry := range IndustryTypes() {
		if strings.EqualFold(trimmed, string(industry)) {
			return industry, nil
		}
	}
	return "", apperrors.WithMetadata(
		apperrors.CodeRegistrationInvalidIndustry,
		"unsupported industry type",
		map[string]string{"Value": value},
	)
}

// Secret holds a password. It redacts itself when formatted so inputs can be
// logged or printed without leaking credentials.
type Secret string

// String redacts the secret when formatted with fmt.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// GoString redacts the secret during %#v formatting.
func (s Secret) GoString() string {
	return s.String()
}

// MarshalText redacts the secret in JSON and text encodings.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Reveal returns the raw value.
func (s Secret) Reveal() string {
	return string(s)
}

// LocalImage is an image picked on the device that has not been hosted yet.
type LocalImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Input is the mutable registration form record.
type Input struct {
	FullName           string
	Email              string
	Phone              string
	Address            string
	Password           Secret
	ConfirmPassword    Secret
	CompanyName        string
	IndustryType       IndustryType
	CompanyDescription string
	// ProfileImageURL is filled once the selected image is hosted.
	ProfileImageURL string
	// Image is the selected image awaiting upload, if any.
	Image *LocalImage
}

// NewInput returns an empty form with the default industry preselected.
func NewInput() Input {
	return Input{IndustryType: DefaultIndustryType}
}

// HasImage reports whether an image was selected.
func (in Input) HasImage() bool {
	return in.Image != nil && len(in.Image.Data) > 0
}

// Field names one editable text field of the form.
type Field string

const (
	FieldFullName           Field = "fullName"
	FieldEmail              Field = "email"
	FieldPhone              Field = "phone"
	FieldAddress            Field = "address"
	FieldPassword           Field = "password"
	FieldConfirmPassword    Field = "confirmPassword"
	FieldCompanyName        Field = "companyName"
	FieldIndustryType       Field = "industryType"
	FieldCompanyDescription Field = "companyDescription"
	FieldProfileImage       Field = "profileImage"
)

// Set applies one field edit. Values are stored as typed; trimming happens
// only where the rules compare values.
func (in *Input) Set(field Field, value string) error {
	switch field {
	case FieldFullName:
		in.FullName = value
	case FieldEmail:
		in.Email = value
	case FieldPhone:
		in.Phone = value
	case FieldAddress:
		in.Address = value
	case FieldPassword:
		in.Password = Secret(value)
	case FieldConfirmPassword:
		in.ConfirmPassword = Secret(value)
	case FieldCompanyName:
		in.CompanyName = value
	case FieldIndustryType:
		industry, err := ParseIndustryType(value)
		if err != nil {
			return err
		}
		in.IndustryType = industry
	case FieldCompanyDescription:
		in.CompanyDescription = value
	case FieldProfileImage:
		in.ProfileImageURL = value
	default:
		return unknownField(field)
	}
	return nil
}

func unknownField(field Field) error {
	return apperrors.WithMetadata(
		apperrors.CodeRegistrationUnknownField,
		"unknown form field",
		map[string]string{"Field": string(field)},
	)
}

// Apply sets client-submitted fields in field name order, stopping at the
// first rejected edit. The hosted image URL comes only from the upload step,
// so FieldProfileImage is rejected like any unknown field.
func (in *Input) Apply(fields map[string]string) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		field := Field(name)
		if field == FieldProfileImage {
			return unknownField(field)
		}
		if err := in.Set(field, fields[name]); err != nil {
			return err
		}
	}
	return nil
}
