package application

import (
	"errors"
	"fmt"
)

// ErrUnknownCategory is returned by RunStep when the category is not a
// configured entry name.
var ErrUnknownCategory = errors.New("unknown category")

// ConfigErrBindFailed is the only ConfigurationError kind: submitted form data
// failed validation and the whole update was rejected.
const ConfigErrBindFailed = "bind-failed"

// ConfigurationError reports a rejected configuration update. Nothing is
// changed when it is returned.
type ConfigurationError struct {
	Kind  string
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration rejected: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func bindFailed(field string, err error) *ConfigurationError {
	return &ConfigurationError{Kind: ConfigErrBindFailed, Field: field, Err: err}
}

// CallbackErrorKind classifies why a callback did not succeed.
type CallbackErrorKind string

const (
	CallbackMissingField              CallbackErrorKind = "missing-field"
	CallbackUnsupportedCredentialType CallbackErrorKind = "unsupported-credential-type"
	CallbackCredentialNotFound        CallbackErrorKind = "credential-not-found"
	CallbackEmptySecret               CallbackErrorKind = "empty-secret"
	CallbackHTTPStatus                CallbackErrorKind = "http-status"
	CallbackTransportFailure          CallbackErrorKind = "transport-failure"
)

// CallbackError is returned by Dispatcher operations. Message is suitable for
// showing to the administrator. StatusCode is set for CallbackHTTPStatus and
// Err for CallbackTransportFailure.
type CallbackError struct {
	Kind       CallbackErrorKind
	Message    string
	StatusCode int
	Err        error
}

func (e *CallbackError) Error() string {
	return e.Message
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// IsCallbackKind reports whether err is a *CallbackError of the given kind.
func IsCallbackKind(err error, kind CallbackErrorKind) bool {
	var cbErr *CallbackError
	return errors.As(err, &cbErr) && cbErr.Kind == kind
}
