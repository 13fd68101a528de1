package model

import (
	"encoding/json"
	"log/slog"
)

// redacted is what a Secret renders as anywhere other than Reveal.
const redacted = "********"

// Secret wraps a sensitive string so it cannot leak through fmt, JSON, or
// slog. The plaintext is only reachable through Reveal.
type Secret struct {
	value string
}

// NewSecret wraps plaintext.
func NewSecret(plaintext string) Secret {
	return Secret{value: plaintext}
}

// Reveal returns the plaintext value.
func (s Secret) Reveal() string {
	return s.value
}

// IsEmpty reports whether the secret holds no value.
func (s Secret) IsEmpty() bool {
	return s.value == ""
}

// String implements fmt.Stringer.
func (s Secret) String() string {
	if s.value == "" {
		return ""
	}
	return redacted
}

// GoString keeps %#v from printing the wrapped field.
func (s Secret) GoString() string {
	return `model.Secret{` + s.String() + `}`
}

// LogValue implements slog.LogValuer.
func (s Secret) LogValue() slog.Value {
	return slog.StringValue(s.String())
}

// MarshalJSON always emits the redacted form.
func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
