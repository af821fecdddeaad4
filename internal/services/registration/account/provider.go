// Package account creates email and password accounts and issues the ID token
// returned to the client after sign-up.
package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/louisbranch/rawcn/internal/platform/config"
	apperrors "github.com/louisbranch/rawcn/internal/platform/errors"
	"github.com/louisbranch/rawcn/internal/platform/id"
	"github.com/louisbranch/rawcn/internal/services/registration/form"
	"github.com/louisbranch/rawcn/internal/services/registration/storage"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the provider's password policy.
const MinPasswordLength = 6

var (
	// ErrInvalidEmail mirrors the provider's auth/invalid-email rejection.
	ErrInvalidEmail = apperrors.New(apperrors.CodeAuthInvalidEmail, "auth/invalid-email")
	// ErrWeakPassword mirrors the provider's auth/weak-password rejection.
	ErrWeakPassword = apperrors.WithMetadata(apperrors.CodeAuthWeakPassword, "auth/weak-password", map[string]string{
		"MinLength": strconv.Itoa(MinPasswordLength),
	})
	// ErrEmailAlreadyInUse mirrors the provider's auth/email-already-in-use rejection.
	ErrEmailAlreadyInUse = apperrors.New(apperrors.CodeAuthEmailAlreadyInUse, "auth/email-already-in-use")
)

// Config holds ID token settings.
type Config struct {
	TokenSecret string        `env:"RAWCN_AUTH_TOKEN_SECRET"`
	TokenIssuer string        `env:"RAWCN_AUTH_TOKEN_ISSUER" envDefault:"rawcn-auth"`
	TokenTTL    time.Duration `env:"RAWCN_AUTH_TOKEN_TTL"    envDefault:"1h"`
}

// LoadConfigFromEnv reads Config from RAWCN_AUTH_* variables.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse auth token config: %w", err)
	}
	return cfg, nil
}

// Claims are the ID token claims.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Provider creates accounts in an AccountStore.
type Provider struct {
	store    storage.AccountStore
	secret   []byte
	issuer   string
	ttl      time.Duration
	hashCost int
	now      func() time.Time
	newID    func() (string, error)
}

// Option configures a Provider.
type Option func(*Provider)

// WithClock overrides the clock used for account and token timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// WithIDGenerator overrides UID generation.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(p *Provider) {
		if newID != nil {
			p.newID = newID
		}
	}
}

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(p *Provider) {
		p.hashCost = cost
	}
}

// NewProvider builds a Provider. The token secret is required.
func NewProvider(store storage.AccountStore, cfg Config, opts ...Option) (*Provider, error) {
	if store == nil {
		return nil, errors.New("account store is required")
	}
	if strings.TrimSpace(cfg.TokenSecret) == "" {
		return nil, errors.New("auth token secret is required")
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("auth token ttl must be positive, got %s", cfg.TokenTTL)
	}
	p := &Provider{
		store:    store,
		secret:   []byte(cfg.TokenSecret),
		issuer:   strings.TrimSpace(cfg.TokenIssuer),
		ttl:      cfg.TokenTTL,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
		newID:    id.NewID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateAccount registers email with password and returns the new identity.
func (p *Provider) CreateAccount(ctx context.Context, email, password string) (form.Identity, error) {
	if err := ctx.Err(); err != nil {
		return form.Identity{}, err
	}
	normalized := NormalizeEmail(email)
	if !validEmail(normalized) {
		return form.Identity{}, ErrInvalidEmail
	}
	if form.PasswordLength(password) < MinPasswordLength {
		return form.Identity{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.hashCost)
	if err != nil {
		return form.Identity{}, fmt.Errorf("hash password: %w", err)
	}
	uid, err := p.newID()
	if err != nil {
		return form.Identity{}, fmt.Errorf("generate account id: %w", err)
	}
	now := p.now().UTC()

	err = p.store.PutAccount(ctx, storage.Account{
		UID:          uid,
		Email:        normalized,
		PasswordHash: string(hash),
		CreatedAt:    now,
	})
	if errors.Is(err, storage.ErrEmailTaken) {
		return form.Identity{}, ErrEmailAlreadyInUse
	}
	if err != nil {
		return form.Identity{}, fmt.Errorf("store account: %w", err)
	}

	token, err := p.issueToken(uid, normalized, now)
	if err != nil {
		return form.Identity{}, err
	}
	return form.Identity{UID: uid, Email: normalized, IDToken: token}, nil
}

// VerifyIDToken parses and validates a token issued by this provider.
func (p *Provider) VerifyIDToken(token string) (Claims, error) {
	var claims Claims
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
	}
	if p.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(p.issuer))
	}
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, parserOpts...)
	if err != nil {
		return Claims{}, fmt.Errorf("verify id token: %w", err)
	}
	return claims, nil
}

func (p *Provider) issueToken(uid, email string, now time.Time) (string, error) {
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign id token: %w", err)
	}
	return signed, nil
}

// validEmail accepts a single bare address with a dotted domain.
func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
