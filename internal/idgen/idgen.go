// Package idgen provides short, URL-safe unique ID generation backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// CredentialPrefix is prepended to generated credential IDs.
const CredentialPrefix = "cred-"

// alphabet is the character set used for the random portion of an ID.
const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// length is the number of random characters generated (excluding the prefix).
const length = 12

// NewCredentialID returns a new unique credential ID such as "cred-4f9x0k2m1qzt".
func NewCredentialID() (string, error) {
	return WithPrefix(CredentialPrefix)
}

// WithPrefix returns a new unique ID with the given prefix.
func WithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(alphabet, length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
