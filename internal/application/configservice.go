// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/onboarding/internal/domain/model"
	"github.com/ericfisherdev/onboarding/internal/domain/port/driven"
)

// StepResult is the outcome of running an onboarding step.
type StepResult struct {
	Category string
	Message  string
}

// ConfigurationService owns the process-wide onboarding configuration. Every
// mutation is validated, persisted through the ConfigStore, and only then made
// visible in memory. Mutations are serialized so the stored order matches the
// in-memory order.
type ConfigurationService struct {
	mu       sync.RWMutex
	cfg      model.Configuration // Entries is kept in registry, not here.
	store    driven.ConfigStore
	registry *Registry
	events   driven.EventPublisher
	logger   *slog.Logger
	now      func() time.Time
}

// NewConfigurationService creates a ConfigurationService. Call Init before use
// to load the stored configuration.
func NewConfigurationService(
	store driven.ConfigStore,
	registry *Registry,
	events driven.EventPublisher,
	logger *slog.Logger,
) *ConfigurationService {
	return &ConfigurationService{
		store:    store,
		registry: registry,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// Init cold-loads the configuration from the store and seeds the registry.
func (s *ConfigurationService) Init(ctx context.Context) error {
	cfg, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.registry.Swap(cfg.Entries)
	cfg.Entries = nil
	s.cfg = cfg

	s.logger.Info("configuration loaded",
		"name", cfg.Name,
		"url", cfg.URL,
		"entries", len(s.registry.List()),
	)
	return nil
}

// Flush writes the current configuration to the store. It is called once at
// shutdown so the stored state matches memory even if an earlier save raced
// with a store outage.
func (s *ConfigurationService) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(ctx, s.currentLocked()); err != nil {
		return fmt.Errorf("flush configuration: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current configuration including entries.
func (s *ConfigurationService) Snapshot() model.Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentLocked()
}

// Entries returns the current entries in order.
func (s *ConfigurationService) Entries() []model.Entry {
	return s.registry.List()
}

// Categories returns the entry names offered for category selection.
func (s *ConfigurationService) Categories() []string {
	return s.registry.Names()
}

// SetName validates and persists the configuration name.
func (s *ConfigurationService) SetName(ctx context.Context, name string) error {
	if err := model.ValidateName(name); err != nil {
		return err
	}
	return s.update(ctx, func(c *model.Configuration) { c.Name = name })
}

// SetDescription persists the free-text description.
func (s *ConfigurationService) SetDescription(ctx context.Context, description string) error {
	return s.update(ctx, func(c *model.Configuration) { c.Description = description })
}

// SetURL persists the callback URL.
func (s *ConfigurationService) SetURL(ctx context.Context, url string) error {
	return s.update(ctx, func(c *model.Configuration) { c.URL = strings.TrimSpace(url) })
}

// SetUsername validates and persists the callback username.
func (s *ConfigurationService) SetUsername(ctx context.Context, username string) error {
	if err := model.ValidateUsername(username); err != nil {
		return err
	}
	return s.update(ctx, func(c *model.Configuration) { c.Username = username })
}

// SetPassword persists the callback password.
func (s *ConfigurationService) SetPassword(ctx context.Context, password model.Secret) error {
	return s.update(ctx, func(c *model.Configuration) { c.Password = password })
}

// SetEntries replaces the entry list. A nil candidates slice is a no-op.
func (s *ConfigurationService) SetEntries(ctx context.Context, candidates []model.EntryCandidate) ([]model.Entry, error) {
	if candidates == nil {
		return s.registry.List(), nil
	}
	if err := validateCandidates(candidates); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commitEntriesLocked(ctx, s.registry.Prepare(candidates)); err != nil {
		return nil, err
	}
	return s.registry.List(), nil
}

// AddEntry appends a new entry named name. Existing entries keep their IDs
// under either ID policy.
func (s *ConfigurationService) AddEntry(ctx context.Context, name string) (model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, entry, err := s.registry.PrepareAdd(name)
	if err != nil {
		return model.Entry{}, err
	}
	if err := s.commitEntriesLocked(ctx, entries); err != nil {
		return model.Entry{}, err
	}
	return entry, nil
}

// RenameEntry renames the entry with the given ID, keeping its ID and position.
func (s *ConfigurationService) RenameEntry(ctx context.Context, id, name string) (model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, entry, err := s.registry.PrepareRename(id, name)
	if err != nil {
		return model.Entry{}, err
	}
	if err := s.commitEntriesLocked(ctx, entries); err != nil {
		return model.Entry{}, err
	}
	return entry, nil
}

// RemoveEntry removes the entry with the given ID.
func (s *ConfigurationService) RemoveEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.registry.PrepareRemove(id)
	if err != nil {
		return err
	}
	return s.commitEntriesLocked(ctx, entries)
}

// Configure applies a whole-form submission. Name, username, and every entry
// name are validated first; any failure returns a *ConfigurationError and
// leaves the configuration unchanged.
func (s *ConfigurationService) Configure(ctx context.Context, form model.ConfigurationForm) (model.Configuration, error) {
	if err := model.ValidateName(form.Name); err != nil {
		return model.Configuration{}, bindFailed("name", err)
	}
	if err := model.ValidateUsername(form.Username); err != nil {
		return model.Configuration{}, bindFailed("username", err)
	}
	if err := validateCandidates(form.Entries); err != nil {
		return model.Configuration{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.currentLocked()
	next.Name = form.Name
	next.Description = form.Description
	next.URL = strings.TrimSpace(form.URL)
	next.Username = form.Username
	if form.Password != nil {
		next.Password = model.NewSecret(*form.Password)
	}
	if form.Entries != nil {
		next.Entries = s.registry.Prepare(form.Entries)
	}

	if err := s.commitLocked(ctx, next); err != nil {
		return model.Configuration{}, err
	}
	if form.Entries != nil {
		publish(ctx, s.events, s.logger, driven.TopicEntriesReplaced, EntriesReplaced{Entries: toEntryEvents(next.Entries)})
	}

	s.logger.Info("configuration updated", "name", next.Name, "url", next.URL, "entries", len(next.Entries))
	return s.currentLocked(), nil
}

// RunStep executes the onboarding step for a selected category.
func (s *ConfigurationService) RunStep(ctx context.Context, category string) (StepResult, error) {
	category = strings.TrimSpace(category)
	if category == "" || !s.registry.Contains(category) {
		return StepResult{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	msg := "Executing onboarding step with category: " + category
	s.logger.Info("onboarding step executed", "category", category)
	publish(ctx, s.events, s.logger, driven.TopicStepExecuted, StepExecuted{Category: category})

	return StepResult{Category: category, Message: msg}, nil
}

// update applies fn to a copy of the current configuration and commits it.
func (s *ConfigurationService) update(ctx context.Context, fn func(*model.Configuration)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.currentLocked()
	fn(&next)
	return s.commitLocked(ctx, next)
}

func (s *ConfigurationService) commitEntriesLocked(ctx context.Context, entries []model.Entry) error {
	next := s.currentLocked()
	next.Entries = entries
	if err := s.commitLocked(ctx, next); err != nil {
		return err
	}
	publish(ctx, s.events, s.logger, driven.TopicEntriesReplaced, EntriesReplaced{Entries: toEntryEvents(entries)})
	return nil
}

// commitLocked persists next and then makes it current. On a store error
// neither the stored nor the in-memory state changes. Callers must hold s.mu.
func (s *ConfigurationService) commitLocked(ctx context.Context, next model.Configuration) error {
	if next.Entries == nil {
		next.Entries = []model.Entry{}
	}
	if err := s.store.Save(ctx, next); err != nil {
		s.logger.Error("failed to save configuration", "error", err)
		return fmt.Errorf("save configuration: %w", err)
	}

	s.registry.Swap(next.Entries)
	entryCount := len(next.Entries)
	next.Entries = nil
	s.cfg = next

	publish(ctx, s.events, s.logger, driven.TopicConfigurationSaved, ConfigurationSaved{
		Name:       next.Name,
		URL:        next.URL,
		Username:   next.Username,
		EntryCount: entryCount,
		SavedAt:    s.now().UTC(),
	})
	return nil
}

// currentLocked assembles the configuration with the registry's entries.
// Callers must hold s.mu (read or write).
func (s *ConfigurationService) currentLocked() model.Configuration {
	cfg := s.cfg.Clone()
	cfg.Entries = s.registry.List()
	if cfg.Entries == nil {
		cfg.Entries = []model.Entry{}
	}
	return cfg
}

func validateCandidates(candidates []model.EntryCandidate) error {
	for i, c := range candidates {
		if err := model.CheckName(c.Name); err != nil {
			return bindFailed(fmt.Sprintf("entries[%d].name", i), err)
		}
	}
	return nil
}
