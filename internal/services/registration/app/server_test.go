package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	platformgrpc "github.com/louisbranch/rawcn/internal/platform/grpc"
	"github.com/louisbranch/rawcn/internal/services/registration/account"
	registrationservice "github.com/louisbranch/rawcn/internal/services/registration/api/grpc/registration"
	"github.com/louisbranch/rawcn/internal/services/registration/form"
	regsqlite "github.com/louisbranch/rawcn/internal/services/registration/storage/sqlite"
	"go.uber.org/zap"
)

func newImageHostServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/demo/image/upload" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.FormValue("upload_preset") != "rawcn_users" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"message":"Upload preset not found"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"public_id":"users/ada","format":"png","secure_url":"https://res.cloudinary.com/demo/image/upload/v1/users/ada.png"}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, imageAPI string) Config {
	t.Helper()
	return Config{
		Port:     0,
		HTTPAddr: "127.0.0.1:0",
		DBPath:   filepath.Join(t.TempDir(), "nested", "registration.db"),
		Auth:     account.Config{TokenSecret: "secret", TokenIssuer: "rawcn-auth", TokenTTL: time.Hour},
		Images: ImageHostConfig{
			CloudName:    "demo",
			APIBase:      imageAPI,
			UploadPreset: "rawcn_users",
			DeliveryBase: "https://res.cloudinary.com/demo/image/upload",
		},
		Logger: zap.NewNop(),
	}
}

func startServer(t *testing.T, cfg Config) (*Server, func() error) {
	t.Helper()
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx)
	}()
	var once sync.Once
	var stopErr error
	stop := func() error {
		once.Do(func() {
			cancel()
			select {
			case stopErr = <-done:
			case <-time.After(5 * time.Second):
				stopErr = errors.New("server did not stop")
			}
		})
		return stopErr
	}
	t.Cleanup(func() { _ = stop() })
	return srv, stop
}

func TestServerServesGRPCAndHTTP(t *testing.T) {
	imageAPI := newImageHostServer(t)
	cfg := testConfig(t, imageAPI.URL)
	srv, stop := startServer(t, cfg)

	conn, err := platformgrpc.DialWithHealth(context.Background(), srv.Addr(), 2*time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	req, err := registrationservice.EncodeRequest(registrationservice.Request{
		Fields: map[string]string{
			"fullName":        "Ada Lovelace",
			"email":           "ada@example.com",
			"password":        "secret1",
			"confirmPassword": "secret1",
			"companyName":     "Acme",
		},
		IsProducer: true,
		Image:      &form.LocalImage{Filename: "ada.png", ContentType: "image/png", Data: []byte("png")},
	})
	if err != nil {
		t.Fatalf("encode request: %v", err)
	}
	resp, err := registrationservice.NewClient(conn).Register(context.Background(), req)
	if err != nil {
		t.Fatalf("register over gRPC: %v", err)
	}
	wantImage := "https://res.cloudinary.com/demo/image/upload/f_auto,q_auto,dpr_auto,c_limit,w_512/users/ada.png"
	if got := resp.GetFields()[registrationservice.KeyProfileImage].GetStringValue(); got != wantImage {
		t.Fatalf("profile image = %q, want %q", got, wantImage)
	}

	body := `{"fullName":"Grace Hopper","email":"grace@example.com","password":"secret1","confirmPassword":"secret1"}`
	httpResp, err := http.Post("http://"+srv.HTTPAddr()+"/register", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("register over HTTP: %v", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusCreated {
		t.Fatalf("HTTP status = %d", httpResp.StatusCode)
	}
	var payload map[string]any
	if err := json.NewDecoder(httpResp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode HTTP response: %v", err)
	}
	if payload["next_screen"] != "Login" || payload["navigate_after_ms"] != float64(2000) {
		t.Fatalf("HTTP payload = %v", payload)
	}

	dup, err := http.Post("http://"+srv.HTTPAddr()+"/register", "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("duplicate register: %v", err)
	}
	_ = dup.Body.Close()
	if dup.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", dup.StatusCode)
	}

	if err := stop(); err != nil {
		t.Fatalf("serve: %v", err)
	}

	store, err := regsqlite.Open(cfg.DBPath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer store.Close()
	role, err := store.GetRecord(context.Background(), form.RoleCollection, "ada@example.com")
	if err != nil {
		t.Fatalf("get role record: %v", err)
	}
	if role.Fields["role"] != float64(2) {
		t.Fatalf("role = %v, want 2", role.Fields["role"])
	}
	profile, err := store.GetRecord(context.Background(), form.ProfileCollection, "grace@example.com")
	if err != nil {
		t.Fatalf("get profile record: %v", err)
	}
	if profile.Fields["companyName"] != "" || profile.Fields["profileImage"] != nil {
		t.Fatalf("buyer profile = %v", profile.Fields)
	}
}

func TestNewRequiresTokenSecret(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Auth.TokenSecret = ""
	if _, err := New(cfg); err == nil {
		t.Fatal("expected missing token secret error")
	}
}

func TestServerWithoutImageHostRejectsImages(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Images.CloudName = ""
	cfg.HTTPAddr = ""
	srv, _ := startServer(t, cfg)
	if srv.HTTPAddr() != "" {
		t.Fatalf("expected HTTP to be disabled, got %q", srv.HTTPAddr())
	}

	conn, err := platformgrpc.DialWithHealth(context.Background(), srv.Addr(), 2*time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	req, err := registrationservice.EncodeRequest(registrationservice.Request{
		Fields: map[string]string{
			"fullName":        "Ada Lovelace",
			"email":           "ada@example.com",
			"password":        "secret1",
			"confirmPassword": "secret1",
		},
		Image: &form.LocalImage{Filename: "ada.png", Data: []byte("png")},
	})
	if err != nil {
		t.Fatalf("encode request: %v", err)
	}
	_, err = registrationservice.NewClient(conn).Register(context.Background(), req)
	if err == nil || !strings.Contains(err.Error(), "Image upload failed.") {
		t.Fatalf("expected upload failure, got %v", err)
	}
}

func TestImageHostFallsBackToSecureURL(t *testing.T) {
	imageAPI := newImageHostServer(t)
	host, err := newImageHost(ImageHostConfig{CloudName: "demo", APIBase: imageAPI.URL}, nil)
	if err != nil {
		t.Fatalf("new image host: %v", err)
	}
	got, err := host.Upload(context.Background(), "rawcn_users", form.LocalImage{Filename: "a.png", Data: []byte("png")})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if got != "https://res.cloudinary.com/demo/image/upload/v1/users/ada.png" {
		t.Fatalf("url = %q", got)
	}

	if _, err := host.Upload(context.Background(), "other", form.LocalImage{Data: []byte("png")}); err == nil {
		t.Fatal("expected preset rejection")
	}
}

func TestNewImageHostDisabledWithoutCloudName(t *testing.T) {
	host, err := newImageHost(ImageHostConfig{}, nil)
	if err != nil || host != nil {
		t.Fatalf("newImageHost() = %v, %v; want nil, nil", host, err)
	}
}
