package server

import (
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rebeliceyang/lazyfacet/internal/filter"
	"github.com/rebeliceyang/lazyfacet/internal/models"
	"github.com/rebeliceyang/lazyfacet/internal/presets"
	"github.com/rebeliceyang/lazyfacet/internal/query"
	"github.com/rebeliceyang/lazyfacet/internal/source"
)

// QueryRequest is the body of POST /api/query. A preset, when named,
// supplies filters, sort and group; search is always taken from the request.
type QueryRequest struct {
	Records  []source.Record      `json:"records"`
	PresetID string               `json:"presetId,omitempty"`
	Filters  models.FilterGroup   `json:"filters"`
	Sort     *models.SortConfig   `json:"sort,omitempty"`
	Group    *models.GroupConfig  `json:"group,omitempty"`
	Search   *models.SearchConfig `json:"search,omitempty"`
}

// runQuery godoc
// @Summary Run the filter, search, sort and group pipeline
// @Tags query
// @Accept json
// @Produce json
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 413 {object} APIResponse
// @Router /api/query [post]
func (s *Server) runQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "query", err)
		return
	}

	if req.PresetID != "" {
		if s.store == nil {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse(c, "Preset storage is not configured"))
			return
		}
		preset, ok := s.store.Get(req.PresetID)
		if !ok {
			c.JSON(http.StatusNotFound, ErrorResponse(c, "Preset not found"))
			return
		}
		req.Filters = preset.Filters
		req.Sort = preset.Sort
		req.Group = preset.Group
	}

	records := req.Records
	if records == nil {
		records = s.records
	}

	if req.Search != nil && len(req.Search.Fields) == 0 {
		search := *req.Search
		search.Fields = slices.Clone(s.searchFields)
		req.Search = &search
	}

	result := query.Run(s.engine, records, req.Filters, req.Sort, req.Group, req.Search)
	c.JSON(http.StatusOK, SuccessResponse(c, "Query executed", result))
}

func (s *Server) listFields(c *gin.Context) {
	fields := s.fields
	if fields == nil {
		fields = []models.FieldDescriptor{}
	}
	c.JSON(http.StatusOK, SuccessResponse(c, "Fields fetched", fields))
}

var fieldTypes = []models.FieldType{
	models.FieldText, models.FieldNumber, models.FieldDate,
	models.FieldSelect, models.FieldMultiSelect, models.FieldBoolean,
}

func (s *Server) listOperators(c *gin.Context) {
	ft := models.FieldType(c.Query("type"))
	if ft != "" && !slices.Contains(fieldTypes, ft) {
		c.JSON(http.StatusBadRequest, ErrorResponse(c, "Unknown field type "+string(ft)))
		return
	}
	c.JSON(http.StatusOK, SuccessResponse(c, "Operators fetched", filter.OperatorsForType(ft)))
}

func (s *Server) listPresets(c *gin.Context) {
	list := s.store.Search(c.Query("q"))
	if list == nil {
		list = []models.FilterPreset{}
	}
	c.JSON(http.StatusOK, SuccessResponse(c, "Presets fetched", list))
}

func (s *Server) getPreset(c *gin.Context) {
	preset, ok := s.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse(c, "Preset not found"))
		return
	}
	c.JSON(http.StatusOK, SuccessResponse(c, "Preset fetched", preset))
}

func (s *Server) savePreset(c *gin.Context) {
	var preset models.FilterPreset
	if err := c.ShouldBindJSON(&preset); err != nil {
		bindError(c, "preset", err)
		return
	}
	preset.IsSystem = false

	saved, err := s.store.Save(preset)
	if errors.Is(err, presets.ErrEmptyName) {
		c.JSON(http.StatusBadRequest, ErrorResponse(c, err.Error()))
		return
	}
	if errors.Is(err, presets.ErrSystemPreset) {
		c.JSON(http.StatusForbidden, ErrorResponse(c, "System presets cannot be modified"))
		return
	}
	if err != nil {
		s.logger.Error("failed to save preset", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse(c, "Failed to save preset"))
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse(c, "Preset saved", saved))
}

func (s *Server) deletePreset(c *gin.Context) {
	id := c.Param("id")
	existing, ok := s.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse(c, "Preset not found"))
		return
	}

	deleted, err := s.store.Delete(id)
	if err != nil {
		s.logger.Error("failed to delete preset", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse(c, "Failed to delete preset"))
		return
	}

	message := "Preset deleted"
	if !deleted && existing.IsSystem {
		message = "System presets cannot be deleted"
	}
	c.JSON(http.StatusOK, SuccessResponse(c, message, gin.H{"id": id, "deleted": deleted}))
}
