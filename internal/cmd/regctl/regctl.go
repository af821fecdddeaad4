// Package regctl submits one registration to a running registration service.
package regctl

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	entrypoint "github.com/louisbranch/rawcn/internal/platform/cmd"
	"github.com/louisbranch/rawcn/internal/platform/discovery"
	platformgrpc "github.com/louisbranch/rawcn/internal/platform/grpc"
	"github.com/louisbranch/rawcn/internal/platform/timeouts"
	registrationservice "github.com/louisbranch/rawcn/internal/services/registration/api/grpc/registration"
	"github.com/louisbranch/rawcn/internal/services/registration/form"
	"go.uber.org/zap"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Config holds regctl configuration.
type Config struct {
	Addr     string `env:"RAWCN_REGISTRATION_ADDR"`
	Locale   string `env:"RAWCN_LOCALE"`
	Password string `env:"RAWCN_REGCTL_PASSWORD"`

	FullName           string
	Email              string
	Phone              string
	Address            string
	ConfirmPassword    string
	Producer           bool
	CompanyName        string
	IndustryType       string
	CompanyDescription string
	ImagePath          string
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "registration service gRPC address")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "preferred locale for messages (e.g. en-US, es)")
	fs.StringVar(&cfg.FullName, "full-name", cfg.FullName, "full name")
	fs.StringVar(&cfg.Email, "email", cfg.Email, "email address")
	fs.StringVar(&cfg.Phone, "phone", cfg.Phone, "phone number")
	fs.StringVar(&cfg.Address, "address", cfg.Address, "postal address")
	fs.StringVar(&cfg.Password, "password", cfg.Password, "password (prefer RAWCN_REGCTL_PASSWORD)")
	fs.StringVar(&cfg.ConfirmPassword, "confirm-password", cfg.ConfirmPassword, "password confirmation; defaults to the password")
	fs.BoolVar(&cfg.Producer, "producer", cfg.Producer, "register as a producer")
	fs.StringVar(&cfg.CompanyName, "company", cfg.CompanyName, "company name (producers)")
	fs.StringVar(&cfg.IndustryType, "industry", string(form.DefaultIndustryType), "industry type: Forestal, Chemical, Mineral or Agricultural")
	fs.StringVar(&cfg.CompanyDescription, "description", cfg.CompanyDescription, "company description (producers)")
	fs.StringVar(&cfg.ImagePath, "image", cfg.ImagePath, "path to a profile image")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Addr = discovery.OrDefaultGRPCAddr(cfg.Addr, discovery.ServiceRegistration)
	if cfg.ConfirmPassword == "" {
		cfg.ConfirmPassword = cfg.Password
	}
	return cfg, nil
}

// Request builds the registration request described by cfg.
func (cfg Config) Request() (registrationservice.Request, error) {
	req := registrationservice.Request{
		Fields: map[string]string{
			string(form.FieldFullName):        cfg.FullName,
			string(form.FieldEmail):           cfg.Email,
			string(form.FieldPhone):           cfg.Phone,
			string(form.FieldAddress):         cfg.Address,
			string(form.FieldPassword):        cfg.Password,
			string(form.FieldConfirmPassword): cfg.ConfirmPassword,
		},
		IsProducer: cfg.Producer,
	}
	if cfg.Producer {
		req.Fields[string(form.FieldCompanyName)] = cfg.CompanyName
		req.Fields[string(form.FieldIndustryType)] = cfg.IndustryType
		req.Fields[string(form.FieldCompanyDescription)] = cfg.CompanyDescription
	}
	if path := strings.TrimSpace(cfg.ImagePath); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return registrationservice.Request{}, fmt.Errorf("read image: %w", err)
		}
		req.Image = &form.LocalImage{
			Filename:    filepath.Base(path),
			ContentType: http.DetectContentType(data),
			Data:        data,
		}
	}
	return req, nil
}

// Run dials the registration service, submits the request and writes the
// response as JSON to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		return errors.New("output writer is required")
	}
	req, err := cfg.Request()
	if err != nil {
		return err
	}
	payload, err := registrationservice.EncodeRequest(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	conn, err := platformgrpc.DialWithHealth(ctx, cfg.Addr, timeouts.GRPCDial, zap.NewNop())
	if err != nil {
		return fmt.Errorf("dial registration service: %w", err)
	}
	defer conn.Close()

	if locale := strings.TrimSpace(cfg.Locale); locale != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, registrationservice.LocaleMetadataKey, locale)
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Submission)
	defer cancel()

	resp, err := registrationservice.NewClient(conn).Register(ctx, payload)
	if err != nil {
		if st, ok := status.FromError(err); ok {
			return fmt.Errorf("register: %s", st.Message())
		}
		return fmt.Errorf("register: %w", err)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(resp.AsMap()); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
