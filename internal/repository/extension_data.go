package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrValueNotFound = errors.New("extension data value not found")
)

// ExtensionDataRepository is a durable mapping from string keys to JSON values,
// scoped to the extension. Writes overwrite the whole value.
type ExtensionDataRepository interface {
	Value(ctx context.Context, key string) (json.RawMessage, error)
	// Values omits keys that have no value.
	Values(ctx context.Context, keys []string) (map[string]json.RawMessage, error)
	SetValue(ctx context.Context, key string, value any) error
}

type extensionDataRow struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

type extensionDataRepository struct {
	db *sqlx.DB
}

func NewExtensionDataRepository(db *sqlx.DB) ExtensionDataRepository {
	return &extensionDataRepository{db: db}
}

func (r *extensionDataRepository) Value(ctx context.Context, key string) (json.RawMessage, error) {
	var value string
	query := r.db.Rebind(`SELECT value FROM extension_data WHERE key = ?`)

	err := r.db.GetContext(ctx, &value, query, key)
	if err == sql.ErrNoRows {
		return nil, ErrValueNotFound
	}
	if err != nil {
		return nil, err
	}

	return json.RawMessage(value), nil
}

func (r *extensionDataRepository) Values(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	values := make(map[string]json.RawMessage, len(keys))
	if len(keys) == 0 {
		return values, nil
	}

	query, args, err := sqlx.In(`SELECT key, value, updated_at FROM extension_data WHERE key IN (?)`, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []extensionDataRow
	err = r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		values[row.Key] = json.RawMessage(row.Value)
	}
	return values, nil
}

func (r *extensionDataRepository) SetValue(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}

	// Last writer wins
	query := r.db.Rebind(`INSERT INTO extension_data (key, value, updated_at)
	          VALUES (?, ?, ?)
	          ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)

	_, err = r.db.ExecContext(ctx, query, key, string(data), time.Now())
	return err
}
