package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ericfisherdev/onboarding/internal/domain/model"
	"github.com/ericfisherdev/onboarding/internal/domain/port/driven"
)

// ConfigSource provides the configuration the Dispatcher sends stored
// credentials with.
type ConfigSource interface {
	Snapshot() model.Configuration
}

// Dispatcher delivers authenticated callbacks to the configured endpoint. Each
// call is one synchronous attempt: no retry, and only the status code of the
// response is consulted.
type Dispatcher struct {
	client      driven.CallbackClient
	credentials driven.CredentialStore
	config      ConfigSource
	events      driven.EventPublisher
	logger      *slog.Logger
}

// NewDispatcher creates a Dispatcher with all required dependencies.
func NewDispatcher(
	client driven.CallbackClient,
	credentials driven.CredentialStore,
	config ConfigSource,
	events driven.EventPublisher,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		client:      client,
		credentials: credentials,
		config:      config,
		events:      events,
		logger:      logger,
	}
}

// TestConnection posts an empty authenticated request to url, trimmed of
// surrounding whitespace. It succeeds only when the endpoint answers 200. A
// blank url, username, or password fails with CallbackMissingField before any
// network call.
func (d *Dispatcher) TestConnection(ctx context.Context, url, username, password string) error {
	url = strings.TrimSpace(url)
	if isBlank(url) || isBlank(username) || isBlank(password) {
		return missingField("url or username or password must not be null or empty")
	}

	return d.post(ctx, "test-connection", "", driven.CallbackRequest{
		URL:      url,
		Username: username,
		Password: model.NewSecret(password),
	})
}

// SubmitCredential posts payload to url with Basic Auth. The payload is sent
// as the request body when it is not blank.
func (d *Dispatcher) SubmitCredential(ctx context.Context, url, username, password, payload string) error {
	return d.submit(ctx, "", url, username, password, payload)
}

// SubmitStoredCredential resolves credentialID and forwards its secret to the
// configured endpoint using the configured username and password. Only string
// credentials can be forwarded. None of the rejection paths touch the network.
func (d *Dispatcher) SubmitStoredCredential(ctx context.Context, credentialID string) error {
	if isBlank(credentialID) {
		return missingField("credential id must not be null or empty")
	}

	cred, err := d.credentials.Resolve(ctx, credentialID)
	if errors.Is(err, driven.ErrCredentialNotFound) {
		return &CallbackError{
			Kind:    CallbackCredentialNotFound,
			Message: "No credential found with id: " + credentialID,
		}
	}
	if err != nil {
		return fmt.Errorf("resolve credential %q: %w", credentialID, err)
	}

	if cred.Kind != model.CredentialKindString {
		return &CallbackError{
			Kind:    CallbackUnsupportedCredentialType,
			Message: "Only string credentials are supported",
		}
	}
	if cred.Secret.IsEmpty() {
		return &CallbackError{
			Kind:    CallbackEmptySecret,
			Message: "The credential secret must not be null or empty",
		}
	}

	cfg := d.config.Snapshot()
	return d.submit(ctx, credentialID, cfg.URL, cfg.Username, cfg.Password.Reveal(), cred.Secret.Reveal())
}

func (d *Dispatcher) submit(ctx context.Context, credentialID, url, username, password, payload string) error {
	url = strings.TrimSpace(url)
	if isBlank(url) || isBlank(username) || isBlank(password) {
		return missingField("url or username or password must not be null or empty")
	}

	req := driven.CallbackRequest{
		URL:      url,
		Username: username,
		Password: model.NewSecret(password),
	}
	if !isBlank(payload) {
		req.Body = payload
	}

	return d.post(ctx, "submit-credential", credentialID, req)
}

func (d *Dispatcher) post(ctx context.Context, operation, credentialID string, req driven.CallbackRequest) error {
	event := CallbackDispatched{Operation: operation, URL: req.URL, CredentialID: credentialID}

	status, err := d.client.Post(ctx, req)
	if err != nil {
		d.logger.Warn("callback failed", "operation", operation, "url", req.URL, "error", err)
		event.Error = err.Error()
		publish(ctx, d.events, d.logger, driven.TopicCallbackDispatched, event)
		return &CallbackError{Kind: CallbackTransportFailure, Message: err.Error(), Err: err}
	}

	event.StatusCode = status
	event.OK = status == http.StatusOK
	publish(ctx, d.events, d.logger, driven.TopicCallbackDispatched, event)

	if status != http.StatusOK {
		d.logger.Warn("callback rejected", "operation", operation, "url", req.URL, "status", status)
		return &CallbackError{
			Kind:       CallbackHTTPStatus,
			Message:    fmt.Sprintf("Server error : %d", status),
			StatusCode: status,
		}
	}

	d.logger.Info("callback delivered", "operation", operation, "url", req.URL)
	return nil
}

func missingField(msg string) *CallbackError {
	return &CallbackError{Kind: CallbackMissingField, Message: msg}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
