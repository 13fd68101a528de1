package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/onboarding/internal/domain/model"
)

// Sentinel errors returned by CredentialStore and ConfigStore implementations.
var (
	// ErrEncryptionKeyNotSet is returned when a secret must be written or read
	// but ONBOARDING_SECRET_KEY has not been configured.
	ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set ONBOARDING_SECRET_KEY")

	// ErrCredentialNotFound indicates no credential exists with the requested ID.
	ErrCredentialNotFound = errors.New("credential not found")
)

// CredentialStore defines the driven port for encrypted credential persistence.
// The adapter layer is responsible for encryption/decryption; this interface
// operates on plaintext values (wrapped in model.Secret) at the domain boundary.
type CredentialStore interface {
	// Create stores a new credential and returns it with ID and UpdatedAt set.
	// A caller-supplied ID is kept; an empty ID is generated.
	Create(ctx context.Context, cred model.Credential) (model.Credential, error)

	// Resolve looks up a credential by ID. Returns ErrCredentialNotFound if no
	// credential exists with that ID.
	Resolve(ctx context.Context, id string) (model.Credential, error)

	// List returns all stored credentials ordered by ID.
	List(ctx context.Context) ([]model.Credential, error)

	// Delete removes the credential. Returns ErrCredentialNotFound if absent.
	Delete(ctx context.Context, id string) error
}
