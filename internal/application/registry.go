package application

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ericfisherdev/onboarding/internal/domain/model"
)

// ErrEntryNotFound is returned when an entry ID does not name a current entry.
var ErrEntryNotFound = errors.New("entry not found")

// IDPolicy controls how ReplaceAll assigns IDs to submitted rows.
type IDPolicy int

const (
	// PreserveIDs keeps the ID of every row that still exists (by ID, or by
	// name for rows submitted without an ID) and mints IDs only for new rows.
	PreserveIDs IDPolicy = iota
	// RegenerateIDs mints a fresh ID for every row on every submission.
	RegenerateIDs
)

// ParseIDPolicy maps "preserve" and "regenerate" to their IDPolicy.
func ParseIDPolicy(s string) (IDPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "preserve":
		return PreserveIDs, nil
	case "regenerate":
		return RegenerateIDs, nil
	}
	return PreserveIDs, fmt.Errorf("unknown id policy %q: expected preserve or regenerate", s)
}

func (p IDPolicy) String() string {
	if p == RegenerateIDs {
		return "regenerate"
	}
	return "preserve"
}

// Registry holds the ordered list of onboarding entries. The list is replaced
// as a whole snapshot under a write lock, so concurrent readers observe either
// the old or the new list, never a mix.
type Registry struct {
	mu      sync.RWMutex
	entries []model.Entry
	policy  IDPolicy
	newID   func() string
}

// NewRegistry creates an empty Registry using the given ID policy.
func NewRegistry(policy IDPolicy) *Registry {
	return &Registry{
		entries: []model.Entry{},
		policy:  policy,
		newID:   uuid.NewString,
	}
}

// List returns a copy of the current entries in insertion order.
func (r *Registry) List() []model.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneEntries(r.entries)
}

// Names returns the entry names in order, for populating a category selection.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.Name)
	}
	return names
}

// Contains reports whether any entry has the given name.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.Name == name {
			return true
		}
	}
	return false
}

// ReplaceAll replaces the whole entry list with one entry per candidate and
// returns the new list. A nil candidates slice is a no-op that returns the
// current list; an empty non-nil slice clears the registry.
func (r *Registry) ReplaceAll(candidates []model.EntryCandidate) []model.Entry {
	if candidates == nil {
		return r.List()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = r.prepareLocked(candidates)
	return cloneEntries(r.entries)
}

// Prepare computes the list ReplaceAll would produce without committing it.
// Pair with Swap when the new list must be persisted before it becomes visible.
func (r *Registry) Prepare(candidates []model.EntryCandidate) []model.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.prepareLocked(candidates)
}

// Swap installs entries as the current list.
func (r *Registry) Swap(entries []model.Entry) {
	next := cloneEntries(entries)
	if next == nil {
		next = []model.Entry{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = next
}

// Add appends a new entry with a freshly minted ID.
func (r *Registry) Add(name string) (model.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, entry, err := r.withAdded(name)
	if err != nil {
		return model.Entry{}, err
	}
	r.entries = next
	return entry, nil
}

// Rename changes the name of the entry with the given ID, keeping its ID and
// position.
func (r *Registry) Rename(id, name string) (model.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, entry, err := r.withRenamed(id, name)
	if err != nil {
		return model.Entry{}, err
	}
	r.entries = next
	return entry, nil
}

// Remove deletes the entry with the given ID.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := r.withRemoved(id)
	if err != nil {
		return err
	}
	r.entries = next
	return nil
}

// PrepareAdd computes the list Add would produce, and the new entry, without
// committing it. Single-entry changes keep every other ID regardless of the
// ID policy.
func (r *Registry) PrepareAdd(name string) ([]model.Entry, model.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.withAdded(name)
}

// PrepareRename computes the list Rename would produce without committing it.
func (r *Registry) PrepareRename(id, name string) ([]model.Entry, model.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.withRenamed(id, name)
}

// PrepareRemove computes the list Remove would produce without committing it.
func (r *Registry) PrepareRemove(id string) ([]model.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.withRemoved(id)
}

// withAdded, withRenamed and withRemoved build a new slice from r.entries.
// Callers must hold r.mu.
func (r *Registry) withAdded(name string) ([]model.Entry, model.Entry, error) {
	if err := model.CheckName(name); err != nil {
		return nil, model.Entry{}, err
	}

	entry := model.Entry{ID: r.newID(), Name: name}
	next := make([]model.Entry, 0, len(r.entries)+1)
	next = append(next, r.entries...)
	return append(next, entry), entry, nil
}

func (r *Registry) withRenamed(id, name string) ([]model.Entry, model.Entry, error) {
	if err := model.CheckName(name); err != nil {
		return nil, model.Entry{}, err
	}

	idx := indexOfEntry(r.entries, id)
	if idx < 0 {
		return nil, model.Entry{}, fmt.Errorf("rename %q: %w", id, ErrEntryNotFound)
	}

	next := cloneEntries(r.entries)
	next[idx].Name = name
	return next, next[idx], nil
}

func (r *Registry) withRemoved(id string) ([]model.Entry, error) {
	idx := indexOfEntry(r.entries, id)
	if idx < 0 {
		return nil, fmt.Errorf("remove %q: %w", id, ErrEntryNotFound)
	}

	next := make([]model.Entry, 0, len(r.entries)-1)
	next = append(next, r.entries[:idx]...)
	return append(next, r.entries[idx+1:]...), nil
}

// prepareLocked builds the next entry list. Callers must hold r.mu.
func (r *Registry) prepareLocked(candidates []model.EntryCandidate) []model.Entry {
	out := make([]model.Entry, len(candidates))

	if r.policy == RegenerateIDs {
		for i, c := range candidates {
			out[i] = model.Entry{ID: r.newID(), Name: c.Name}
		}
		return out
	}

	existing := make(map[string]bool, len(r.entries))
	for _, e := range r.entries {
		existing[e.ID] = true
	}
	claimed := make(map[string]bool, len(candidates))

	// Rows that still carry a known ID keep it, even when renamed.
	for i, c := range candidates {
		if c.ID != "" && existing[c.ID] && !claimed[c.ID] {
			out[i] = model.Entry{ID: c.ID, Name: c.Name}
			claimed[c.ID] = true
		}
	}

	// Rows without a usable ID take over the first unclaimed entry of the
	// same name, or get a new ID.
	for i, c := range candidates {
		if out[i].ID != "" {
			continue
		}
		for _, e := range r.entries {
			if !claimed[e.ID] && e.Name == c.Name {
				out[i] = model.Entry{ID: e.ID, Name: c.Name}
				claimed[e.ID] = true
				break
			}
		}
		if out[i].ID == "" {
			out[i] = model.Entry{ID: r.newID(), Name: c.Name}
		}
	}

	return out
}

func indexOfEntry(entries []model.Entry, id string) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func cloneEntries(entries []model.Entry) []model.Entry {
	if entries == nil {
		return nil
	}
	out := make([]model.Entry, len(entries))
	copy(out, entries)
	return out
}
