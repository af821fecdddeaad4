// Package flow runs registration submissions against the account, record and
// image collaborators and drives one form instance through its phases.
package flow

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/louisbranch/rawcn/internal/platform/errors"
	"github.com/louisbranch/rawcn/internal/platform/requestctx"
	"github.com/louisbranch/rawcn/internal/services/registration/form"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// LoginScreen is the screen shown after a successful registration.
	LoginScreen = "Login"
	// NavigationDelay is how long the success text stays before navigating.
	NavigationDelay = 2000 * time.Millisecond
	// DefaultUploadPreset is the image host preset for profile pictures.
	DefaultUploadPreset = "rawcn_users"

	tracerName = "github.com/louisbranch/rawcn/internal/services/registration/flow"
)

// ImageUploader hosts a locally selected image and returns its URL.
type ImageUploader interface {
	Upload(ctx context.Context, preset string, image form.LocalImage) (string, error)
}

// AccountCreator creates an authentication account.
type AccountCreator interface {
	CreateAccount(ctx context.Context, email, password string) (form.Identity, error)
}

// RecordWriter sets a document in a collection, replacing any previous one.
type RecordWriter interface {
	WriteRecord(ctx context.Context, collection, key string, fields map[string]any) error
}

// Navigator switches screens.
type Navigator interface {
	NavigateTo(screen string)
}

var errImageNotHosted = errors.New("image host returned no url")

// Submitter runs the registration sequence: optional image upload, account
// creation, profile record, role record. Steps run in order and a failure
// stops the sequence without undoing earlier steps.
type Submitter struct {
	uploader ImageUploader
	accounts AccountCreator
	records  RecordWriter
	preset   string
	now      func() time.Time
	logger   *zap.Logger
	tracer   trace.Tracer
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithUploadPreset overrides the image host preset.
func WithUploadPreset(preset string) Option {
	return func(s *Submitter) {
		if strings.TrimSpace(preset) != "" {
			s.preset = strings.TrimSpace(preset)
		}
	}
}

// WithClock overrides the clock used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Submitter) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Submitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Submitter) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// NewSubmitter builds a Submitter. The uploader may be nil when image hosting
// is not configured; submissions with a selected image then fail at the
// upload step.
func NewSubmitter(uploader ImageUploader, accounts AccountCreator, records RecordWriter, opts ...Option) (*Submitter, error) {
	if accounts == nil {
		return nil, errors.New("account creator is required")
	}
	if records == nil {
		return nil, errors.New("record writer is required")
	}
	s := &Submitter{
		uploader: uploader,
		accounts: accounts,
		records:  records,
		preset:   DefaultUploadPreset,
		now:      time.Now,
		logger:   zap.NewNop(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Submit validates in and, when valid, runs the remote sequence. Failure text
// is rendered in the locale carried by ctx.
func (s *Submitter) Submit(ctx context.Context, in form.Input, isProducer bool) form.Result {
	locale := requestctx.LocaleFromContext(ctx)
	role := form.RoleFor(isProducer)
	ctx, span := s.tracer.Start(ctx, "registration.submit", trace.WithAttributes(
		attribute.String("registration.role", role.String()),
		attribute.Bool("registration.has_image", in.HasImage()),
	))
	defer span.End()

	if err := form.Validate(in, isProducer); err != nil {
		span.SetStatus(codes.Error, string(apperrors.GetCode(err)))
		return ValidationFailure(err, locale)
	}

	if in.HasImage() {
		imageURL, err := s.uploadImage(ctx, *in.Image)
		if err != nil {
			s.fail(span, "upload profile image", err)
			return form.RemoteFailed(apperrors.LocalizedMessage(err, locale), err, "")
		}
		in.ProfileImageURL = imageURL
	}

	var identity form.Identity
	err := s.step(ctx, "registration.create_account", func(ctx context.Context) error {
		var err error
		identity, err = s.accounts.CreateAccount(ctx, in.Email, in.Password.Reveal())
		return err
	})
	if err != nil {
		s.fail(span, "create account", err)
		return form.RemoteFailed(registrationFailure(err, locale), err, in.ProfileImageURL)
	}

	err = s.step(ctx, "registration.write_profile", func(ctx context.Context) error {
		return s.records.WriteRecord(ctx, form.ProfileCollection, identity.Email, form.ProfileRecord(in, isProducer, s.now()))
	})
	if err != nil {
		s.fail(span, "write profile record", err, zap.String("uid", identity.UID))
		return form.RemoteFailed(registrationFailure(err, locale), err, in.ProfileImageURL)
	}

	err = s.step(ctx, "registration.write_role", func(ctx context.Context) error {
		return s.records.WriteRecord(ctx, form.RoleCollection, identity.Email, form.RoleRecord(role))
	})
	if err != nil {
		s.fail(span, "write role record", err, zap.String("uid", identity.UID))
		return form.RemoteFailed(registrationFailure(err, locale), err, in.ProfileImageURL)
	}

	span.SetAttributes(attribute.String("registration.uid", identity.UID))
	s.logger.Info("user registered",
		zap.String("uid", identity.UID),
		zap.String("role", role.String()),
		zap.Bool("profile_image", in.ProfileImageURL != ""),
	)
	return form.Succeeded(identity, in.ProfileImageURL)
}

func (s *Submitter) uploadImage(ctx context.Context, image form.LocalImage) (string, error) {
	var imageURL string
	err := s.step(ctx, "registration.upload_image", func(ctx context.Context) error {
		if s.uploader == nil {
			return errors.New("image uploader is not configured")
		}
		var err error
		imageURL, err = s.uploader.Upload(ctx, s.preset, image)
		if err != nil {
			return err
		}
		if strings.TrimSpace(imageURL) == "" {
			return errImageNotHosted
		}
		return nil
	})
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeImageUploadFailed, "upload profile image: "+err.Error(), err)
	}
	return imageURL, nil
}

func (s *Submitter) step(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, name)
	defer span.End()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s *Submitter) fail(span trace.Span, step string, err error, fields ...zap.Field) {
	span.SetStatus(codes.Error, step)
	fields = append(fields, zap.String("step", step), zap.String("code", string(apperrors.GetCode(err))), zap.Error(err))
	s.logger.Warn("registration failed", fields...)
}

// ValidationFailure renders a local validation error as a result.
func ValidationFailure(err error, locale string) form.Result {
	return form.ValidationFailed(apperrors.LocalizedMessage(err, locale), err)
}

// registrationFailure renders "Error registering the user: <cause>".
func registrationFailure(err error, locale string) string {
	wrapped := apperrors.WithMetadata(apperrors.CodeRegistrationFailed, "register user", map[string]string{
		"Cause": apperrors.LocalizedMessage(err, locale),
	})
	return apperrors.LocalizedMessage(wrapped, locale)
}
