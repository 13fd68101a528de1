// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"

	"github.com/ericfisherdev/onboarding/internal/domain/model"
)

// ConfigStore defines the driven port for durable configuration persistence.
// Load returns a zero Configuration (not an error) when nothing has been saved yet.
// Save replaces the stored configuration, entries included, atomically.
type ConfigStore interface {
	Load(ctx context.Context) (model.Configuration, error)
	Save(ctx context.Context, cfg model.Configuration) error
}
