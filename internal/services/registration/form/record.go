package form

import "time"

const (
	// ProfileCollection holds one profile record per account email.
	ProfileCollection = "users"
	// RoleCollection holds one role record per account email.
	RoleCollection = "Roles"
)

// Profile record field names.
const (
	ProfileFieldFullName           = "fullName"
	ProfileFieldEmail              = "email"
	ProfileFieldPhone              = "phone"
	ProfileFieldAddress            = "address"
	ProfileFieldCompanyName        = "companyName"
	ProfileFieldIndustryType       = "industryType"
	ProfileFieldCompanyDescription = "companyDescription"
	ProfileFieldProfileImage       = "profileImage"
	ProfileFieldCreatedAt          = "createdAt"
	RoleFieldRole                  = "role"
)

// ProfileRecord builds the profile document for in. Producer-only fields are
// blank for buyers, and profileImage is nil when no image was hosted.
func ProfileRecord(in Input, isProducer bool, createdAt time.Time) map[string]any {
	var profileImage any
	if in.ProfileImageURL != "" {
		profileImage = in.ProfileImageURL
	}
	companyName, industryType, companyDescription := "", "", ""
	if isProducer {
		companyName = in.CompanyName
		industryType = string(in.IndustryType)
		companyDescription = in.CompanyDescription
	}
	return map[string]any{
		ProfileFieldFullName:           in.FullName,
		ProfileFieldEmail:              in.Email,
		ProfileFieldPhone:              in.Phone,
		ProfileFieldAddress:            in.Address,
		ProfileFieldCompanyName:        companyName,
		ProfileFieldIndustryType:       industryType,
		ProfileFieldCompanyDescription: companyDescription,
		ProfileFieldProfileImage:       profileImage,
		ProfileFieldCreatedAt:          createdAt.UTC(),
	}
}

// RoleRecord builds the role document.
func RoleRecord(role Role) map[string]any {
	return map[string]any{RoleFieldRole: int(role)}
}
