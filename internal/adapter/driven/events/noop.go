// Package events implements the EventPublisher port. Events are JSON-encoded
// and published to NATS subjects named after their topic.
package events

import (
	"context"

	"github.com/ericfisherdev/onboarding/internal/domain/port/driven"
)

var _ driven.EventPublisher = (*NoopPublisher)(nil)

// NoopPublisher discards every event. It is used when ONBOARDING_NATS_URL is unset.
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}
