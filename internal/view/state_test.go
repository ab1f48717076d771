package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyfacet/internal/models"
	"github.com/rebeliceyang/lazyfacet/internal/presets"
	"github.com/rebeliceyang/lazyfacet/internal/storage"
)

type asset struct {
	Name   string  `json:"name"`
	Status string  `json:"status"`
	Score  float64 `json:"score"`
}

func assets() []asset {
	return []asset{
		{Name: "Logo", Status: "active", Score: 3},
		{Name: "Guide", Status: "draft", Score: 8},
		{Name: "Palette", Status: "active", Score: 5},
	}
}

func names(items []asset) []string {
	out := make([]string, len(items))
	for i, a := range items {
		out[i] = a.Name
	}
	return out
}

func TestState_RunsOnEveryChange(t *testing.T) {
	s := New(assets(), WithSearchFields[asset]("name"))
	require.Equal(t, 3, s.Result().FilteredCount)

	calls := 0
	s.OnChange(func(models.FilterResult[asset]) { calls++ })

	s.ClearFilters()
	s.SetLogic(models.LogicAnd)
	s.SetFilters(s.Filters())
	s.SetSort(nil)
	s.SetGroup(nil)
	s.SetSearchConfig(s.Search())
	s.Reset()
	assert.Zero(t, calls, "mutators that change nothing do not rerun")

	id := s.AddCondition("status", models.OpEquals, "active", models.FieldSelect)
	assert.Equal(t, []string{"Logo", "Palette"}, names(s.Result().Items))

	s.ToggleSort("score")
	assert.Equal(t, []string{"Logo", "Palette"}, names(s.Result().Items))
	s.ToggleSort("score")
	assert.Equal(t, []string{"Palette", "Logo"}, names(s.Result().Items))
	s.ToggleSort("score")
	assert.Nil(t, s.Sort())

	s.SetSearch("pal")
	assert.Equal(t, []string{"Palette"}, names(s.Result().Items))
	s.SetSearch("pal")

	s.RemoveCondition(id)
	s.RemoveCondition(id)
	s.SetSearch("")
	assert.Equal(t, 3, s.Result().FilteredCount)
	assert.Equal(t, 3, s.Result().TotalCount)

	assert.Equal(t, 7, calls, "duplicate searches and removals do not rerun")

	s.SetSort(&models.SortConfig{Options: []models.SortOption{{Field: "score", Direction: models.SortAsc}}})
	s.SetSort(&models.SortConfig{Options: []models.SortOption{{Field: "score", Direction: models.SortAsc}}})
	s.SetGroup(&models.GroupConfig{Field: "status"})
	s.SetGroup(&models.GroupConfig{Field: "status", CollapsedGroups: []string{}})
	s.SetLogic(models.LogicOr)
	s.SetLogic(models.LogicOr)
	assert.Equal(t, 10, calls, "equal configurations do not rerun")
}

func TestState_LogicAndUpdate(t *testing.T) {
	s := New(assets())
	s.AddCondition("name", models.OpEquals, "Logo", models.FieldText)
	id := s.AddCondition("name", models.OpEquals, "Guide", models.FieldText)
	assert.Equal(t, 0, s.Result().FilteredCount)

	s.SetLogic(models.LogicOr)
	assert.Equal(t, []string{"Logo", "Guide"}, names(s.Result().Items))

	require.NoError(t, s.UpdateCondition(models.FilterCondition{
		ID: id, Field: "score", Operator: models.OpGreaterThan, Value: 4,
	}))
	assert.Equal(t, []string{"Logo", "Guide", "Palette"}, names(s.Result().Items))

	assert.Error(t, s.UpdateCondition(models.FilterCondition{ID: "missing"}))

	s.ClearFilters()
	assert.True(t, s.Filters().IsEmpty())
}

func TestState_GroupCollapse(t *testing.T) {
	s := New(assets())
	s.SetGroup(&models.GroupConfig{Field: "status"})
	require.Len(t, s.Result().Groups, 2)

	s.ToggleGroup("active")
	groups := s.Result().Groups
	assert.True(t, groups[0].IsCollapsed)
	assert.Equal(t, 2, groups[0].Count, "collapsed groups keep their members")
	assert.False(t, groups[1].IsCollapsed)

	s.ToggleGroup("active")
	assert.False(t, s.Result().Groups[0].IsCollapsed)

	s.SetGroup(nil)
	assert.False(t, s.Result().IsGrouped())
	s.ToggleGroup("active")
	assert.Nil(t, s.Group())
}

func TestState_ViewMode(t *testing.T) {
	s := New(assets(), WithViewMode[asset](models.ViewTable))
	assert.Equal(t, models.ViewTable, s.ViewMode())
	assert.Equal(t, models.ViewKanban, s.CycleViewMode())
	assert.Equal(t, models.ViewGrid, s.CycleViewMode())

	s.SetViewMode(models.ViewList)
	assert.Equal(t, models.ViewList, s.ViewMode())
}

func TestState_Presets(t *testing.T) {
	store := presets.NewStore(storage.NewMemoryBackend(), presets.WithSystemPresets(presets.DefaultSystemPresets()...))
	s := New(assets(), WithPresets[asset](store))
	defer s.Close()

	require.Len(t, s.Presets(), len(presets.DefaultSystemPresets()))

	var refreshed []models.FilterPreset
	s.OnPresetsChange(func(list []models.FilterPreset) { refreshed = list })

	s.AddCondition("status", models.OpEquals, "draft", models.FieldSelect)
	s.SetSort(&models.SortConfig{Options: []models.SortOption{{Field: "name", Direction: models.SortAsc}}})
	saved, err := s.SaveAsPreset("Drafts", "draft assets")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, s.ActivePreset())
	assert.Len(t, refreshed, len(presets.DefaultSystemPresets())+1)

	s.Reset()
	assert.Equal(t, 3, s.Result().FilteredCount)
	assert.Empty(t, s.ActivePreset())

	require.NoError(t, s.ApplyPreset(saved.ID))
	assert.Equal(t, []string{"Guide"}, names(s.Result().Items))
	require.NotNil(t, s.Sort())

	require.NoError(t, s.ApplyPreset("system-by-status"))
	assert.True(t, s.Result().IsGrouped())
	assert.Equal(t, "active", s.Result().Groups[0].GroupKey)

	assert.Error(t, s.ApplyPreset("missing"))

	deleted, err := s.DeletePreset("system-all")
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = s.DeletePreset(saved.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Len(t, s.Presets(), len(presets.DefaultSystemPresets()))

	s.Close()
	_, err = store.Save(models.FilterPreset{Name: "after close"})
	require.NoError(t, err)
	assert.Len(t, s.Presets(), len(presets.DefaultSystemPresets()), "closed views stop listening")
}

func TestState_WithoutStore(t *testing.T) {
	s := New(assets())
	_, err := s.SaveAsPreset("x", "")
	assert.Error(t, err)
	assert.Error(t, s.ApplyPreset("x"))
	_, err = s.DeletePreset("x")
	assert.Error(t, err)
}
