package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/ericfisherdev/onboarding/internal/domain/model"
	"github.com/ericfisherdev/onboarding/internal/domain/port/driven"
)

// ConfigurationSaved is published after every persisted configuration change.
// It deliberately carries no password.
type ConfigurationSaved struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Username   string    `json:"username"`
	EntryCount int       `json:"entry_count"`
	SavedAt    time.Time `json:"saved_at"`
}

// EntryEvent is the event representation of an entry.
type EntryEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EntriesReplaced is published when the entry list changes.
type EntriesReplaced struct {
	Entries []EntryEvent `json:"entries"`
}

// CallbackDispatched is published after each callback attempt that reached
// the network.
type CallbackDispatched struct {
	Operation    string `json:"operation"` // "test-connection" or "submit-credential"
	URL          string `json:"url"`
	CredentialID string `json:"credential_id,omitempty"`
	StatusCode   int    `json:"status_code,omitempty"`
	OK           bool   `json:"ok"`
	Error        string `json:"error,omitempty"`
}

// StepExecuted is published when an onboarding step runs.
type StepExecuted struct {
	Category string `json:"category"`
}

func toEntryEvents(entries []model.Entry) []EntryEvent {
	out := make([]EntryEvent, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryEvent{ID: e.ID, Name: e.Name})
	}
	return out
}

// publish emits an event and logs, rather than returns, any failure. Event
// delivery never fails the operation that produced it.
func publish(ctx context.Context, events driven.EventPublisher, logger *slog.Logger, topic string, event any) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, topic, event); err != nil {
		logger.Warn("failed to publish event", "topic", topic, "error", err)
	}
}
