package form

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestProfileRecordProducer(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := validBuyer()
	in.Phone = "555"
	in.CompanyName = "Acme"
	in.IndustryType = IndustryChemical
	in.CompanyDescription = "Solvents"
	in.ProfileImageURL = "https://x/img.png"

	got := ProfileRecord(in, true, now)
	want := map[string]any{
		"fullName":           "Ada Lovelace",
		"email":              "ada@example.com",
		"phone":              "555",
		"address":            "",
		"companyName":        "Acme",
		"industryType":       "Chemical",
		"companyDescription": "Solvents",
		"profileImage":       "https://x/img.png",
		"createdAt":          now,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("profile record mismatch (-want +got):\n%s", diff)
	}
}

func TestProfileRecordBuyerBlanksProducerFields(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := validBuyer()
	in.CompanyName = "Acme"
	in.CompanyDescription = "Solvents"

	got := ProfileRecord(in, false, now)
	for _, field := range []string{ProfileFieldCompanyName, ProfileFieldIndustryType, ProfileFieldCompanyDescription} {
		if got[field] != "" {
			t.Fatalf("%s = %v, want blank", field, got[field])
		}
	}
	if got[ProfileFieldProfileImage] != nil {
		t.Fatalf("profileImage = %v, want nil", got[ProfileFieldProfileImage])
	}
}

func TestRoleRecord(t *testing.T) {
	if diff := cmp.Diff(map[string]any{"role": 1}, RoleRecord(RoleBuyer)); diff != "" {
		t.Fatalf("buyer role record (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"role": 2}, RoleRecord(RoleProducer)); diff != "" {
		t.Fatalf("producer role record (-want +got):\n%s", diff)
	}
}
