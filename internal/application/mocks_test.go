package application_test

import (
	"context"
	"sync"

	"github.com/ericfisherdev/onboarding/internal/domain/model"
	"github.com/ericfisherdev/onboarding/internal/domain/port/driven"
)

// mockConfigStore implements driven.ConfigStore in memory.
type mockConfigStore struct {
	mu      sync.Mutex
	cfg     model.Configuration
	saves   int
	loadErr error
	saveErr error
}

func (m *mockConfigStore) Load(_ context.Context) (model.Configuration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.Clone(), m.loadErr
}

func (m *mockConfigStore) Save(_ context.Context, cfg model.Configuration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.cfg = cfg.Clone()
	m.saves++
	return nil
}

func (m *mockConfigStore) saved() (model.Configuration, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.Clone(), m.saves
}

// mockCredentialStore implements driven.CredentialStore in memory.
type mockCredentialStore struct {
	creds      map[string]model.Credential
	resolveErr error
}

func (m *mockCredentialStore) Create(_ context.Context, cred model.Credential) (model.Credential, error) {
	if m.creds == nil {
		m.creds = map[string]model.Credential{}
	}
	m.creds[cred.ID] = cred
	return cred, nil
}

func (m *mockCredentialStore) Resolve(_ context.Context, id string) (model.Credential, error) {
	if m.resolveErr != nil {
		return model.Credential{}, m.resolveErr
	}
	cred, ok := m.creds[id]
	if !ok {
		return model.Credential{}, driven.ErrCredentialNotFound
	}
	return cred, nil
}

func (m *mockCredentialStore) List(_ context.Context) ([]model.Credential, error) {
	out := make([]model.Credential, 0, len(m.creds))
	for _, c := range m.creds {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCredentialStore) Delete(_ context.Context, id string) error {
	if _, ok := m.creds[id]; !ok {
		return driven.ErrCredentialNotFound
	}
	delete(m.creds, id)
	return nil
}

// mockCallbackClient records requests and returns a canned status.
type mockCallbackClient struct {
	status   int
	err      error
	requests []driven.CallbackRequest
}

func (m *mockCallbackClient) Post(_ context.Context, req driven.CallbackRequest) (int, error) {
	m.requests = append(m.requests, req)
	return m.status, m.err
}

// recordingPublisher captures published topics.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []any
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

// staticConfig implements application.ConfigSource.
type staticConfig struct {
	cfg model.Configuration
}

func (s staticConfig) Snapshot() model.Configuration { return s.cfg }
