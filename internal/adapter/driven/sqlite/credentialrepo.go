package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/onboarding/internal/domain/model"
	"github.com/ericfisherdev/onboarding/internal/domain/port/driven"
	"github.com/ericfisherdev/onboarding/internal/idgen"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port interface.
// Secret values are encrypted with AES-256-GCM before write and decrypted after read.
type CredentialRepo struct {
	db  *DB
	box secretBox
	now func() time.Time
}

// NewCredentialRepo creates a new CredentialRepo. key must be 32 bytes for AES-256-GCM,
// or nil to disable credential storage (all operations except Delete return
// driven.ErrEncryptionKeyNotSet).
func NewCredentialRepo(db *DB, key []byte) *CredentialRepo {
	return &CredentialRepo{db: db, box: secretBox{key: key}, now: time.Now}
}

// Create stores cred. An empty ID is replaced with a generated one.
func (r *CredentialRepo) Create(ctx context.Context, cred model.Credential) (model.Credential, error) {
	if !cred.Kind.Valid() {
		return model.Credential{}, fmt.Errorf("create credential: unknown kind %q", cred.Kind)
	}

	encrypted, err := r.box.encrypt(cred.Secret.Reveal())
	if err != nil {
		return model.Credential{}, err
	}

	if cred.ID == "" {
		cred.ID, err = idgen.NewCredentialID()
		if err != nil {
			return model.Credential{}, err
		}
	}
	cred.UpdatedAt = r.now().UTC()

	const query = `
		INSERT INTO credentials (id, kind, description, username, value, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err = r.db.Writer.ExecContext(ctx, query,
		cred.ID, string(cred.Kind), cred.Description, cred.Username, encrypted, formatTime(cred.UpdatedAt),
	)
	if err != nil {
		return model.Credential{}, fmt.Errorf("create credential %q: %w", cred.ID, err)
	}
	return cred, nil
}

// Resolve returns the credential with the given ID and its decrypted secret.
func (r *CredentialRepo) Resolve(ctx context.Context, id string) (model.Credential, error) {
	if r.box.key == nil {
		return model.Credential{}, driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT id, kind, description, username, value, updated_at FROM credentials WHERE id = ?`
	cred, err := r.scan(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Credential{}, driven.ErrCredentialNotFound
	}
	if err != nil {
		return model.Credential{}, fmt.Errorf("resolve credential %q: %w", id, err)
	}
	return cred, nil
}

// List returns all stored credentials with decrypted secrets, ordered by ID.
func (r *CredentialRepo) List(ctx context.Context) ([]model.Credential, error) {
	if r.box.key == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT id, kind, description, username, value, updated_at FROM credentials ORDER BY id`
	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	creds := []model.Credential{}
	for rows.Next() {
		cred, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}

	return creds, nil
}

// Delete removes the credential with the given ID.
func (r *CredentialRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM credentials WHERE id = ?`
	res, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete credential %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete credential %q: %w", id, err)
	}
	if n == 0 {
		return driven.ErrCredentialNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *CredentialRepo) scan(row rowScanner) (model.Credential, error) {
	var (
		cred      model.Credential
		kind      string
		encrypted string
		updatedAt string
	)
	if err := row.Scan(&cred.ID, &kind, &cred.Description, &cred.Username, &encrypted, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Credential{}, err
		}
		return model.Credential{}, fmt.Errorf("scan credential: %w", err)
	}
	cred.Kind = model.CredentialKind(kind)

	plaintext, err := r.box.decrypt(encrypted)
	if err != nil {
		return model.Credential{}, fmt.Errorf("decrypt credential %q: %w", cred.ID, err)
	}
	cred.Secret = model.NewSecret(plaintext)

	cred.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return model.Credential{}, fmt.Errorf("parse updated_at for credential %q: %w", cred.ID, err)
	}
	return cred, nil
}
