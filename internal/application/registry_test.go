package application_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/onboarding/internal/application"
	"github.com/ericfisherdev/onboarding/internal/domain/model"
)

func candidates(names ...string) []model.EntryCandidate {
	out := make([]model.EntryCandidate, 0, len(names))
	for _, n := range names {
		out = append(out, model.EntryCandidate{Name: n})
	}
	return out
}

func idsOf(entries []model.Entry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestRegistry_ReplaceAllPreservesOrderAndMintsDistinctIDs(t *testing.T) {
	reg := application.NewRegistry(application.PreserveIDs)

	entries := reg.ReplaceAll(candidates("A", "B"))

	require.Len(t, entries, 2)
	assert.Equal(t, "A", entries[0].Name)
	assert.Equal(t, "B", entries[1].Name)
	assert.NotEmpty(t, entries[0].ID)
	assert.NotEmpty(t, entries[1].ID)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
	assert.Equal(t, entries, reg.List())
}

func TestRegistry_ReplaceAllNilIsNoop(t *testing.T) {
	reg := application.NewRegistry(application.PreserveIDs)
	before := reg.ReplaceAll(candidates("A", "B"))

	after := reg.ReplaceAll(nil)

	assert.Equal(t, before, after)
	assert.Equal(t, before, reg.List())
}

func TestRegistry_ReplaceAllEmptyClears(t *testing.T) {
	reg := application.NewRegistry(application.PreserveIDs)
	reg.ReplaceAll(candidates("A"))

	entries := reg.ReplaceAll([]model.EntryCandidate{})

	assert.Empty(t, entries)
	assert.Empty(t, reg.List())
}

func TestRegistry_RegenerateIDsMintsNewIDsEverySubmission(t *testing.T) {
	reg := application.NewRegistry(application.RegenerateIDs)
	first := reg.ReplaceAll(candidates("A", "B"))

	second := reg.ReplaceAll(candidates("A"))

	require.Len(t, second, 1)
	assert.Equal(t, "A", second[0].Name)
	assert.NotContains(t, idsOf(first), second[0].ID)
}

func TestRegistry_PreserveIDsKeepsUnchangedNames(t *testing.T) {
	reg := application.NewRegistry(application.PreserveIDs)
	first := reg.ReplaceAll(candidates("A", "B"))

	second := reg.ReplaceAll(candidates("B", "C", "A"))

	require.Len(t, second, 3)
	assert.Equal(t, first[1].ID, second[0].ID, "B keeps its id")
	assert.NotContains(t, idsOf(first), second[1].ID, "C is new")
	assert.Equal(t, first[0].ID, second[2].ID, "A keeps its id")
}

func TestRegistry_PreserveIDsRenameByID(t *testing.T) {
	reg := application.NewRegistry(application.PreserveIDs)
	first := reg.ReplaceAll(candidates("A"))

	second := reg.ReplaceAll([]model.EntryCandidate{{ID: first[0].ID, Name: "Renamed"}})

	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, "Renamed", second[0].Name)
}

func TestRegistry_DuplicateNamesGetDistinctIDs(t *testing.T) {
	reg := application.NewRegistry(application.PreserveIDs)
	first := reg.ReplaceAll(candidates("A", "A"))
	require.NotEqual(t, first[0].ID, first[1].ID)

	second := reg.ReplaceAll(candidates("A", "A", "A"))

	require.Len(t, second, 3)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[1].ID, second[1].ID)
	assert.NotContains(t, idsOf(first), second[2].ID)
}

func TestRegistry_DuplicateIDClaimedOnce(t *testing.T) {
	reg := application.NewRegistry(application.PreserveIDs)
	first := reg.ReplaceAll(candidates("A"))
	id := first[0].ID

	second := reg.ReplaceAll([]model.EntryCandidate{{ID: id, Name: "X"}, {ID: id, Name: "Y"}})

	require.Len(t, second, 2)
	assert.Equal(t, id, second[0].ID)
	assert.NotEqual(t, id, second[1].ID)
}

func TestRegistry_PrepareDoesNotCommit(t *testing.T) {
	reg := application.NewRegistry(application.PreserveIDs)
	reg.ReplaceAll(candidates("A"))

	prepared := reg.Prepare(candidates("A", "B"))

	assert.Len(t, prepared, 2)
	assert.Len(t, reg.List(), 1)

	reg.Swap(prepared)
	assert.Equal(t, prepared, reg.List())
}

func TestRegistry_AddRenameRemove(t *testing.T) {
	reg := application.NewRegistry(application.PreserveIDs)

	a, err := reg.Add("Alpha")
	require.NoError(t, err)
	b, err := reg.Add("Beta")
	require.NoError(t, err)

	renamed, err := reg.Rename(a.ID, "Gamma")
	require.NoError(t, err)
	assert.Equal(t, a.ID, renamed.ID)

	assert.Equal(t, []string{"Gamma", "Beta"}, reg.Names())

	require.NoError(t, reg.Remove(a.ID))
	assert.Equal(t, []model.Entry{b}, reg.List())

	assert.ErrorIs(t, reg.Remove(a.ID), application.ErrEntryNotFound)
	_, err = reg.Rename("missing", "Name")
	assert.ErrorIs(t, err, application.ErrEntryNotFound)
}

func TestRegistry_SingleEntryChangesIgnoreIDPolicy(t *testing.T) {
	reg := application.NewRegistry(application.RegenerateIDs)
	a, err := reg.Add("Alpha")
	require.NoError(t, err)
	b, err := reg.Add("Beta")
	require.NoError(t, err)

	_, err = reg.Rename(a.ID, "Gamma")
	require.NoError(t, err)

	assert.Equal(t, []model.Entry{{ID: a.ID, Name: "Gamma"}, b}, reg.List())
	require.NoError(t, reg.Remove(b.ID))
	assert.Equal(t, []string{a.ID}, idsOf(reg.List()))
}

func TestRegistry_PrepareSingleEntryChangesDoNotCommit(t *testing.T) {
	reg := application.NewRegistry(application.PreserveIDs)
	before := reg.ReplaceAll(candidates("A", "B"))

	added, entry, err := reg.PrepareAdd("C")
	require.NoError(t, err)
	assert.Equal(t, append(append([]model.Entry{}, before...), entry), added)

	renamed, entry, err := reg.PrepareRename(before[0].ID, "Z")
	require.NoError(t, err)
	assert.Equal(t, model.Entry{ID: before[0].ID, Name: "Z"}, entry)
	assert.Equal(t, []model.Entry{entry, before[1]}, renamed)

	removed, err := reg.PrepareRemove(before[1].ID)
	require.NoError(t, err)
	assert.Equal(t, before[:1], removed)

	_, err = reg.PrepareRemove("missing")
	assert.ErrorIs(t, err, application.ErrEntryNotFound)
	_, _, err = reg.PrepareRename(before[0].ID, "Team 9")
	assert.ErrorIs(t, err, model.ErrInvalidFormat)

	assert.Equal(t, before, reg.List())
}

func TestRegistry_AddRejectsInvalidNames(t *testing.T) {
	reg := application.NewRegistry(application.PreserveIDs)

	_, err := reg.Add("")
	assert.ErrorIs(t, err, model.ErrEmpty)

	_, err = reg.Add("Team 7")
	assert.ErrorIs(t, err, model.ErrInvalidFormat)

	assert.Empty(t, reg.List())
}

func TestRegistry_ListReturnsCopy(t *testing.T) {
	reg := application.NewRegistry(application.PreserveIDs)
	reg.ReplaceAll(candidates("A"))

	list := reg.List()
	list[0].Name = "mutated"

	assert.Equal(t, "A", reg.List()[0].Name)
}

func TestRegistry_ConcurrentReadsSeeWholeSnapshots(t *testing.T) {
	reg := application.NewRegistry(application.PreserveIDs)
	small := candidates("A")
	large := candidates("B", "B", "B", "B")
	reg.ReplaceAll(small)

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines * 2)

	for i := range goroutines {
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				reg.ReplaceAll(large)
			} else {
				reg.ReplaceAll(small)
			}
		}()
		go func() {
			defer wg.Done()
			list := reg.List()
			// A snapshot is all "A" (len 1) or all "B" (len 4), never mixed.
			switch len(list) {
			case 1:
				assert.Equal(t, "A", list[0].Name)
			case 4:
				for _, e := range list {
					assert.Equal(t, "B", e.Name)
				}
			default:
				t.Errorf("unexpected snapshot length %d", len(list))
			}
		}()
	}

	wg.Wait()
}

func TestParseIDPolicy(t *testing.T) {
	p, err := application.ParseIDPolicy("")
	require.NoError(t, err)
	assert.Equal(t, application.PreserveIDs, p)

	p, err = application.ParseIDPolicy("Regenerate")
	require.NoError(t, err)
	assert.Equal(t, application.RegenerateIDs, p)
	assert.Equal(t, "regenerate", p.String())

	_, err = application.ParseIDPolicy("sometimes")
	assert.Error(t, err)
}
