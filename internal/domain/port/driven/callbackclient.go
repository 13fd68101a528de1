package driven

import (
	"context"

	"github.com/ericfisherdev/onboarding/internal/domain/model"
)

// CallbackRequest is a single authenticated POST to an administrator-configured
// webhook. Body is sent only when non-empty.
type CallbackRequest struct {
	URL      string
	Username string
	Password model.Secret
	Body     string
}

// CallbackClient defines the driven port for delivering callbacks. Post returns
// the HTTP status code of the response, or an error when no response was
// received (invalid URL, connection failure, timeout, cancellation).
type CallbackClient interface {
	Post(ctx context.Context, req CallbackRequest) (int, error)
}
