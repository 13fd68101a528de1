package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/onboarding/internal/domain/model"
	"github.com/ericfisherdev/onboarding/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ConfigStore = (*ConfigRepo)(nil)

// ConfigRepo is the SQLite implementation of the ConfigStore port. The
// configuration lives in a single row; entries are stored with their position
// so the list order survives restarts. The password is encrypted with the same
// AES-256-GCM key as stored credentials.
type ConfigRepo struct {
	db  *DB
	box secretBox
	now func() time.Time
}

// NewConfigRepo creates a new ConfigRepo. key must be 32 bytes, or nil to
// disable password storage. With a nil key an empty password still
// round-trips; a non-empty one fails with driven.ErrEncryptionKeyNotSet.
func NewConfigRepo(db *DB, key []byte) *ConfigRepo {
	return &ConfigRepo{db: db, box: secretBox{key: key}, now: time.Now}
}

// Load returns the stored configuration. A database with no saved
// configuration yields the zero Configuration with an empty entry list.
func (r *ConfigRepo) Load(ctx context.Context) (model.Configuration, error) {
	cfg := model.Configuration{Entries: []model.Entry{}}

	const query = `SELECT name, description, url, username, password FROM onboarding_config WHERE id = 1`
	var encrypted string
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(&cfg.Name, &cfg.Description, &cfg.URL, &cfg.Username, &encrypted)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return model.Configuration{}, fmt.Errorf("load configuration: %w", err)
	}

	if encrypted != "" {
		password, err := r.box.decrypt(encrypted)
		if err != nil {
			return model.Configuration{}, fmt.Errorf("decrypt configuration password: %w", err)
		}
		cfg.Password = model.NewSecret(password)
	}

	const entriesQuery = `SELECT id, name FROM onboarding_entries ORDER BY position`
	rows, err := r.db.Reader.QueryContext(ctx, entriesQuery)
	if err != nil {
		return model.Configuration{}, fmt.Errorf("load entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e model.Entry
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return model.Configuration{}, fmt.Errorf("scan entry: %w", err)
		}
		cfg.Entries = append(cfg.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return model.Configuration{}, fmt.Errorf("iterate entries: %w", err)
	}

	return cfg, nil
}

// Save replaces the stored configuration and entry list in one transaction.
func (r *ConfigRepo) Save(ctx context.Context, cfg model.Configuration) error {
	var encrypted string
	if !cfg.Password.IsEmpty() {
		var err error
		encrypted, err = r.box.encrypt(cfg.Password.Reveal())
		if err != nil {
			return fmt.Errorf("encrypt configuration password: %w", err)
		}
	}

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save configuration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const upsert = `
		INSERT INTO onboarding_config (id, name, description, url, username, password, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			url = excluded.url,
			username = excluded.username,
			password = excluded.password,
			updated_at = excluded.updated_at`

	_, err = tx.ExecContext(ctx, upsert,
		cfg.Name, cfg.Description, cfg.URL, cfg.Username, encrypted, formatTime(r.now()),
	)
	if err != nil {
		return fmt.Errorf("save configuration: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM onboarding_entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	const insertEntry = `INSERT INTO onboarding_entries (id, name, position) VALUES (?, ?, ?)`
	for i, e := range cfg.Entries {
		if _, err := tx.ExecContext(ctx, insertEntry, e.ID, e.Name, i); err != nil {
			return fmt.Errorf("insert entry %q: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit configuration: %w", err)
	}
	return nil
}
