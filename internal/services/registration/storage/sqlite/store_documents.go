package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/rawcn/internal/services/registration/storage"
)

// WriteRecord sets the document under collection and key, replacing any
// previous fields. The creation time of an existing document is kept.
func (s *Store) WriteRecord(ctx context.Context, collection, key string, fields map[string]any) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return fmt.Errorf("collection is required")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("document key is required")
	}
	if fields == nil {
		fields = map[string]any{}
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, key, err)
	}

	now := toMillis(s.now())
	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO documents (collection, doc_key, fields_json, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (collection, doc_key) DO UPDATE SET
    fields_json = excluded.fields_json,
    updated_at = excluded.updated_at`,
		collection,
		key,
		string(payload),
		now,
		now,
	); err != nil {
		return fmt.Errorf("write document %s/%s: %w", collection, key, err)
	}
	return nil
}

// GetRecord returns the document under collection and key.
func (s *Store) GetRecord(ctx context.Context, collection, key string) (storage.Record, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Record{}, err
	}
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return storage.Record{}, fmt.Errorf("collection is required")
	}

	var payload string
	var createdAt, updatedAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT fields_json, created_at, updated_at FROM documents WHERE collection = ? AND doc_key = ?`,
		collection,
		key,
	).Scan(&payload, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Record{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Record{}, fmt.Errorf("get document %s/%s: %w", collection, key, err)
	}

	fields := map[string]any{}
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return storage.Record{}, fmt.Errorf("decode document %s/%s: %w", collection, key, err)
	}
	return storage.Record{
		Collection: collection,
		Key:        key,
		Fields:     fields,
		CreatedAt:  fromMillis(createdAt),
		UpdatedAt:  fromMillis(updatedAt),
	}, nil
}
