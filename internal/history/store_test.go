package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyfacet/internal/filter"
	"github.com/rebeliceyang/lazyfacet/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	s.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	return s
}

func TestStore_AddAndRecent(t *testing.T) {
	s := newTestStore(t)

	spec := Spec{
		Filters: filter.NewBuilder().Where("status", models.OpEquals, "active").Build(),
		Sort:    &models.SortConfig{Options: []models.SortOption{{Field: "score", Direction: models.SortDesc}}},
	}
	first, err := s.Add(Entry{Source: "data/*.json", Spec: spec, Total: 10, Matched: 4, Duration: 1500 * time.Microsecond})
	require.NoError(t, err)
	second, err := s.Add(Entry{Source: "tasks.csv", Spec: Spec{}})
	require.NoError(t, err)

	entries, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second, entries[0].ID, "newest first")
	assert.Equal(t, first, entries[1].ID)

	got := entries[1]
	assert.Equal(t, "status == active | sort score desc", got.Summary)
	assert.Equal(t, 4, got.Matched)
	assert.Equal(t, 1500*time.Microsecond, got.Duration)
	assert.Equal(t, spec.Filters.Conditions[0].Field, got.Spec.Filters.Conditions[0].Field)
	require.NotNil(t, got.Spec.Sort)
	assert.Equal(t, models.SortDesc, got.Spec.Sort.Options[0].Direction)
	assert.Equal(t, "all records", entries[0].Summary)

	entries, err = s.Recent(1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_SearchGetClear(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Add(Entry{Source: "tasks.csv", Spec: Spec{Search: &models.SearchConfig{Query: "logo", Fields: []string{"name"}}}})
	require.NoError(t, err)
	_, err = s.Add(Entry{Source: "people.yaml", Spec: Spec{Group: &models.GroupConfig{Field: "team"}}})
	require.NoError(t, err)

	found, err := s.Search("logo", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, id, found[0].ID)

	found, err = s.Search("people", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "group team", found[0].Summary)

	e, ok, err := s.Get(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, e.Spec.Search)
	assert.Equal(t, "logo", e.Spec.Search.Query)

	_, ok, err = s.Get(999)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Clear())
	entries, err := s.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDescribe(t *testing.T) {
	spec := Spec{
		Filters: models.FilterGroup{Logic: models.LogicOr, Conditions: []models.FilterCondition{
			{Field: "score", Operator: models.OpGreaterThan, Value: 5.0},
			{Field: "name", Operator: models.OpIsEmpty},
		}},
		Search: &models.SearchConfig{Query: "gu"},
		Group:  &models.GroupConfig{Field: "status"},
	}
	got := Describe(spec)
	assert.Contains(t, got, "score > 5 OR ")
	assert.Contains(t, got, `| search "gu" | group status`)
}
