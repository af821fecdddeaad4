package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	apperrors "github.com/louisbranch/rawcn/internal/platform/errors"
	"github.com/louisbranch/rawcn/internal/services/registration/flow"
	"github.com/louisbranch/rawcn/internal/services/registration/form"
)

type fakeAccounts struct {
	err error
}

func (f *fakeAccounts) CreateAccount(_ context.Context, email, _ string) (form.Identity, error) {
	if f.err != nil {
		return form.Identity{}, f.err
	}
	return form.Identity{UID: "uid-1", Email: email, IDToken: "token-1"}, nil
}

type fakeRecords struct {
	mu      sync.Mutex
	records map[string]map[string]any
}

func (f *fakeRecords) WriteRecord(_ context.Context, collection, key string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.records == nil {
		f.records = map[string]map[string]any{}
	}
	f.records[collection+"/"+key] = fields
	return nil
}

type fakeUploader struct {
	image form.LocalImage
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, _ string, image form.LocalImage) (string, error) {
	f.image = image
	if f.err != nil {
		return "", f.err
	}
	return "https://x/img.png", nil
}

type fixture struct {
	mux      *http.ServeMux
	uploader *fakeUploader
	accounts *fakeAccounts
	records  *fakeRecords
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		mux:      http.NewServeMux(),
		uploader: &fakeUploader{},
		accounts: &fakeAccounts{},
		records:  &fakeRecords{},
	}
	submitter, err := flow.NewSubmitter(f.uploader, f.accounts, f.records)
	if err != nil {
		t.Fatalf("new submitter: %v", err)
	}
	NewHandler(submitter, nil).RegisterRoutes(f.mux)
	return f
}

func (f *fixture) do(req *http.Request) (*httptest.ResponseRecorder, registerResponse) {
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	var body registerResponse
	_ = json.NewDecoder(rec.Body).Decode(&body)
	return rec, body
}

func jsonRequest(t *testing.T, payload map[string]any) *http.Request {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, RegisterPath, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func validPayload() map[string]any {
	return map[string]any{
		"fullName":        "Ada Lovelace",
		"email":           "ada@example.com",
		"password":        "secret1",
		"confirmPassword": "secret1",
	}
}

func TestRegisterJSONSuccess(t *testing.T) {
	f := newFixture(t)
	rec, body := f.do(jsonRequest(t, validPayload()))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("content type = %q", rec.Header().Get("Content-Type"))
	}
	want := registerResponse{
		Phase:           "success",
		Message:         "User successfully registered",
		NextScreen:      "Login",
		NavigateAfterMS: 2000,
		UID:             "uid-1",
		Email:           "ada@example.com",
		IDToken:         "token-1",
	}
	if body != want {
		t.Fatalf("body = %+v, want %+v", body, want)
	}
	if f.records.records["Roles/ada@example.com"]["role"] != 1 {
		t.Fatalf("role record = %v", f.records.records["Roles/ada@example.com"])
	}
}

func TestRegisterJSONProducerWithImage(t *testing.T) {
	f := newFixture(t)
	payload := validPayload()
	payload["isProducer"] = true
	payload["companyName"] = "Acme"
	payload["image"] = map[string]any{"filename": "me.png", "contentType": "image/png", "data": "cG5n"}

	rec, body := f.do(jsonRequest(t, payload))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %+v", rec.Code, body)
	}
	if body.ProfileImage != "https://x/img.png" {
		t.Fatalf("profile image = %q", body.ProfileImage)
	}
	if string(f.uploader.image.Data) != "png" || f.uploader.image.Filename != "me.png" {
		t.Fatalf("uploaded image = %+v", f.uploader.image)
	}
	if f.records.records["Roles/ada@example.com"]["role"] != 2 {
		t.Fatalf("role record = %v", f.records.records["Roles/ada@example.com"])
	}
}

func TestRegisterMultipartWithImage(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range map[string]string{
		"fullName":        "Ada Lovelace",
		"email":           "ada@example.com",
		"password":        "secret1",
		"confirmPassword": "secret1",
		"companyName":     "Acme",
		"industryType":    "Mineral",
		"isProducer":      "true",
	} {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	part, err := writer.CreateFormFile("image", "me.png")
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	_, _ = part.Write([]byte("png-bytes"))
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, RegisterPath, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec, body := f.do(req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %+v", rec.Code, body)
	}
	if string(f.uploader.image.Data) != "png-bytes" {
		t.Fatalf("uploaded = %q", f.uploader.image.Data)
	}
	profile := f.records.records["users/ada@example.com"]
	if profile["industryType"] != "Mineral" || profile["profileImage"] != "https://x/img.png" {
		t.Fatalf("profile = %v", profile)
	}
}

func TestRegisterFailures(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*fixture, map[string]any)
		status     int
		code       string
		message    string
		wantWrites bool
	}{
		{
			name:    "validation",
			mutate:  func(_ *fixture, p map[string]any) { p["email"] = "a@b" },
			status:  http.StatusBadRequest,
			code:    "REGISTRATION_INVALID_EMAIL",
			message: "Please enter a valid email address.",
		},
		{
			name: "duplicate email",
			mutate: func(f *fixture, _ map[string]any) {
				f.accounts.err = apperrors.New(apperrors.CodeAuthEmailAlreadyInUse, "auth/email-already-in-use")
			},
			status:  http.StatusConflict,
			code:    "AUTH_EMAIL_ALREADY_IN_USE",
			message: "Error registering the user: The email address is already in use by another account.",
		},
		{
			name: "upload failure",
			mutate: func(f *fixture, p map[string]any) {
				f.uploader.err = apperrors.New(apperrors.CodeImageUploadFailed, "host down")
				p["image"] = map[string]any{"filename": "me.png", "data": "cG5n"}
			},
			status:  http.StatusBadGateway,
			code:    "IMAGE_UPLOAD_FAILED",
			message: "Image upload failed.",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			payload := validPayload()
			tc.mutate(f, payload)

			rec, body := f.do(jsonRequest(t, payload))
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if body.Phase != "failed" || body.Code != tc.code || body.Message != tc.message {
				t.Fatalf("body = %+v", body)
			}
			if body.NextScreen != "" {
				t.Fatalf("unexpected navigation to %q", body.NextScreen)
			}
			if len(f.records.records) != 0 {
				t.Fatalf("expected no writes, got %v", f.records.records)
			}
		})
	}
}

func TestRegisterLocalizesFromAcceptLanguage(t *testing.T) {
	f := newFixture(t)
	payload := validPayload()
	payload["confirmPassword"] = "other1"
	req := jsonRequest(t, payload)
	req.Header.Set("Accept-Language", "es-CL,es;q=0.9")

	_, body := f.do(req)
	if body.Message != "Las contraseñas no coinciden." {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestRegisterLangParamWinsOverAcceptLanguage(t *testing.T) {
	f := newFixture(t)
	payload := validPayload()
	payload["confirmPassword"] = "other1"
	req := jsonRequest(t, payload)
	req.URL.RawQuery = LangParam + "=en-US"
	req.Header.Set("Accept-Language", "es")

	_, body := f.do(req)
	if body.Message != "Passwords do not match." {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestRegisterRejectsMalformedRequests(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		code        string
	}{
		{name: "bad json", contentType: "application/json", body: "{"},
		{name: "unsupported type", contentType: "text/plain", body: "hi"},
		{name: "missing type", contentType: "", body: "{}"},
		{name: "unknown field", contentType: "application/json", body: `{"nickname":"x"}`, code: "REGISTRATION_UNKNOWN_FIELD"},
		{name: "bad industry", contentType: "application/json", body: `{"industryType":"Fishing"}`, code: "REGISTRATION_INVALID_INDUSTRY"},
		{name: "non string", contentType: "application/json", body: `{"fullName":1}`},
		{name: "bad producer flag", contentType: "application/json", body: `{"isProducer":"yes"}`},
		{name: "bad image", contentType: "application/json", body: `{"image":{"data":"***"}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			req := httptest.NewRequest(http.MethodPost, RegisterPath, strings.NewReader(tc.body))
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}
			rec, body := f.do(req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if body.Code != tc.code {
				t.Fatalf("code = %q, want %q", body.Code, tc.code)
			}
		})
	}
}

func multipartRequest(t *testing.T, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "me.png")
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		_, _ = part.Write(image)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, RegisterPath, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestRegisterRejectsClientProfileImage(t *testing.T) {
	buyer := map[string]string{
		"fullName":        "Ada Lovelace",
		"email":           "ada@example.com",
		"password":        "secret1",
		"confirmPassword": "secret1",
		"profileImage":    "javascript:alert(1)",
	}
	payload := validPayload()
	payload["profileImage"] = "javascript:alert(1)"

	tests := []struct {
		name string
		req  func(t *testing.T) *http.Request
	}{
		{"json", func(t *testing.T) *http.Request { return jsonRequest(t, payload) }},
		{"multipart", func(t *testing.T) *http.Request { return multipartRequest(t, buyer, nil) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			rec, body := f.do(tc.req(t))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if body.Code != string(apperrors.CodeRegistrationUnknownField) {
				t.Fatalf("code = %q", body.Code)
			}
			if len(f.records.records) != 0 {
				t.Fatalf("records = %v, want none", f.records.records)
			}
		})
	}
}

func TestRegisterMultipartRejectsEmptyImage(t *testing.T) {
	f := newFixture(t)
	req := multipartRequest(t, map[string]string{
		"fullName":        "Ada Lovelace",
		"email":           "ada@example.com",
		"password":        "secret1",
		"confirmPassword": "secret1",
	}, []byte{})

	rec, body := f.do(req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body.Message != "image must be non-empty" {
		t.Fatalf("message = %q", body.Message)
	}
	if len(f.records.records) != 0 {
		t.Fatalf("records = %v, want none", f.records.records)
	}
}

func TestRegisterRejectsOversizedBody(t *testing.T) {
	f := newFixture(t)
	big := `{"fullName":"` + strings.Repeat("a", MaxRequestBytes+1) + `"}`
	req := httptest.NewRequest(http.MethodPost, RegisterPath, strings.NewReader(big))
	req.Header.Set("Content-Type", "application/json")

	rec, _ := f.do(req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestRegisterRequiresPost(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, RegisterPath, nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
