package driven

import "context"

// Event topics published by the application layer.
const (
	TopicConfigurationSaved = "onboarding.configuration.saved"
	TopicEntriesReplaced    = "onboarding.entries.replaced"
	TopicCallbackDispatched = "onboarding.callback.dispatched"
	TopicStepExecuted       = "onboarding.step.executed"
)

// EventPublisher is the driven port for emitting change notifications.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
