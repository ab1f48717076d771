package presets

import (
	"time"

	"github.com/rebeliceyang/lazyfacet/internal/models"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultSystemPresets are seeded when storage.seed_system is set
func DefaultSystemPresets() []models.FilterPreset {
	asc := models.SortAsc
	return []models.FilterPreset{
		{
			ID:          "system-all",
			Name:        "All items",
			Description: "No filters, original order",
			Filters:     models.FilterGroup{ID: "system-all", Logic: models.LogicAnd},
			IsSystem:    true,
			CreatedAt:   epoch,
			UpdatedAt:   epoch,
		},
		{
			ID:          "system-recent",
			Name:        "Recently updated",
			Description: "Newest first",
			Filters:     models.FilterGroup{ID: "system-recent", Logic: models.LogicAnd},
			Sort: &models.SortConfig{Options: []models.SortOption{
				{Field: "updatedAt", Direction: models.SortDesc},
			}},
			IsSystem:  true,
			CreatedAt: epoch,
			UpdatedAt: epoch,
		},
		{
			ID:          "system-by-status",
			Name:        "By status",
			Description: "Grouped by status",
			Filters:     models.FilterGroup{ID: "system-by-status", Logic: models.LogicAnd},
			Group:       &models.GroupConfig{Field: "status", Direction: &asc},
			IsSystem:    true,
			CreatedAt:   epoch,
			UpdatedAt:   epoch,
		},
	}
}
