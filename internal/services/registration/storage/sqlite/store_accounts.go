package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/rawcn/internal/services/registration/storage"
)

// PutAccount inserts a new account. An existing email yields
// storage.ErrEmailTaken.
func (s *Store) PutAccount(ctx context.Context, account storage.Account) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(account.UID) == "" {
		return fmt.Errorf("account uid is required")
	}
	if strings.TrimSpace(account.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if account.PasswordHash == "" {
		return fmt.Errorf("password hash is required")
	}
	createdAt := account.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO accounts (uid, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		account.UID,
		account.Email,
		account.PasswordHash,
		toMillis(createdAt),
	)
	if isUniqueViolation(err) {
		return storage.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("put account: %w", err)
	}
	return nil
}

// GetAccountByEmail returns the account registered for email.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (storage.Account, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Account{}, err
	}
	if strings.TrimSpace(email) == "" {
		return storage.Account{}, fmt.Errorf("email is required")
	}

	var account storage.Account
	var createdAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT uid, email, password_hash, created_at FROM accounts WHERE email = ?`,
		email,
	).Scan(&account.UID, &account.Email, &account.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Account{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Account{}, fmt.Errorf("get account: %w", err)
	}
	account.CreatedAt = fromMillis(createdAt)
	return account, nil
}
