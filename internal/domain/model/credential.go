package model

import "time"

// CredentialKind identifies what a stored credential holds.
type CredentialKind string

const (
	// CredentialKindString is a single secret text value.
	CredentialKindString CredentialKind = "string"
	// CredentialKindUsernamePassword is a username with a password secret.
	CredentialKindUsernamePassword CredentialKind = "username_password"
)

// Valid reports whether k is a known credential kind.
func (k CredentialKind) Valid() bool {
	switch k {
	case CredentialKindString, CredentialKindUsernamePassword:
		return true
	}
	return false
}

// Credential is a stored secret addressed by an opaque ID. Only
// CredentialKindString credentials can be forwarded to the callback endpoint.
type Credential struct {
	ID          string
	Kind        CredentialKind
	Description string
	Username    string // set for CredentialKindUsernamePassword
	Secret      Secret
	UpdatedAt   time.Time
}
