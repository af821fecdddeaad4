package storage

import (
	"context"
	"time"

	"github.com/louisbranch/rawcn/internal/platform/errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New(errors.CodeNotFound, "record not found")

// ErrEmailTaken indicates an account already exists for the email.
var ErrEmailTaken = errors.New(errors.CodeAuthEmailAlreadyInUse, "email already registered")

// Account is an authentication account.
type Account struct {
	UID          string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// AccountStore persists authentication accounts keyed by UID with unique
// emails.
type AccountStore interface {
	PutAccount(ctx context.Context, account Account) error
	GetAccountByEmail(ctx context.Context, email string) (Account, error)
}

// Record is one document in a collection.
type Record struct {
	Collection string
	Key        string
	// Fields holds the decoded JSON document. Numbers decode as float64 and
	// timestamps as RFC 3339 strings.
	Fields    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecordStore persists documents with set semantics: a write replaces the
// whole document under collection and key.
type RecordStore interface {
	WriteRecord(ctx context.Context, collection, key string, fields map[string]any) error
	GetRecord(ctx context.Context, collection, key string) (Record, error)
}
