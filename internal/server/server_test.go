package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyfacet/internal/config"
	"github.com/rebeliceyang/lazyfacet/internal/obs"
	"github.com/rebeliceyang/lazyfacet/internal/presets"
	"github.com/rebeliceyang/lazyfacet/internal/query"
	"github.com/rebeliceyang/lazyfacet/internal/source"
	"github.com/rebeliceyang/lazyfacet/internal/storage"
)

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   bool            `json:"error"`
}

func testServer(t *testing.T) (*gin.Engine, *presets.Store) {
	t.Helper()

	cfg := config.GetDefaults()
	cfg.Server.Mode = gin.TestMode
	cfg.Server.MaxBody = 1 << 10
	cfg.General.SearchFields = []string{"name"}

	store := presets.NewStore(storage.NewMemoryBackend(), presets.WithSystemPresets(presets.DefaultSystemPresets()...))
	engine := query.NewEngine(query.WithMetrics(obs.NewMetrics()))
	records := []source.Record{
		{"name": "Logo", "status": "active", "score": 3.0},
		{"name": "Guide", "status": "draft", "score": 8.0},
		{"name": "Palette", "status": "active", "score": 5.0},
	}

	s := New(cfg, engine, WithRecords(records), WithPresets(store))
	return s.Router(), store
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

type queryResult struct {
	Items         []map[string]any `json:"items"`
	TotalCount    int              `json:"totalCount"`
	FilteredCount int              `json:"filteredCount"`
	Groups        []struct {
		GroupKey string `json:"groupKey"`
		Count    int    `json:"count"`
	} `json:"groups"`
}

func TestQuery_ServerRecords(t *testing.T) {
	r, _ := testServer(t)

	body := `{
		"filters": {"logic": "AND", "conditions": [{"id": "c1", "field": "score", "operator": "greaterThan", "value": 4}]},
		"sort": {"options": [{"field": "score", "direction": "desc"}]},
		"group": {"field": "status"}
	}`
	w, env := do(t, r, http.MethodPost, "/api/query", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.Error)

	var res queryResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, 2, res.FilteredCount)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Guide", res.Items[0]["name"])
	require.Len(t, res.Groups, 2)
	assert.Equal(t, "draft", res.Groups[0].GroupKey)
}

func TestQuery_InlineRecordsAndSearch(t *testing.T) {
	r, _ := testServer(t)

	body := `{"records": [{"name": "alpha"}, {"name": "beta"}], "search": {"query": "ALP"}}`
	w, env := do(t, r, http.MethodPost, "/api/query", body)
	require.Equal(t, http.StatusOK, w.Code)

	var res queryResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 2, res.TotalCount)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "alpha", res.Items[0]["name"])
}

func TestQuery_Preset(t *testing.T) {
	r, _ := testServer(t)

	w, env := do(t, r, http.MethodPost, "/api/query", `{"presetId": "system-by-status"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var res queryResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.NotEmpty(t, res.Groups)

	w, env = do(t, r, http.MethodPost, "/api/query", `{"presetId": "missing"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, env.Error)
}

func TestQuery_BadBody(t *testing.T) {
	r, _ := testServer(t)

	w, env := do(t, r, http.MethodPost, "/api/query", `{"filters": 12}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, env.Error)
}

func TestQuery_BodyTooLarge(t *testing.T) {
	r, _ := testServer(t)

	var buf bytes.Buffer
	buf.WriteString(`{"records": [`)
	for i := 0; i < 200; i++ {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString(`{"name": "record"}`)
	}
	buf.WriteString(`]}`)

	w, _ := do(t, r, http.MethodPost, "/api/query", buf.String())
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestQuery_ChunkedBodyTooLarge(t *testing.T) {
	r, _ := testServer(t)

	body := `{"search": {"query": "` + strings.Repeat("a", 4096) + `"}}`
	// a plain io.Reader leaves ContentLength unknown, as with chunked uploads
	req := httptest.NewRequest(http.MethodPost, "/api/query", io.MultiReader(strings.NewReader(body)))
	req.Header.Set("Content-Type", "application/json")
	require.EqualValues(t, -1, req.ContentLength)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Error)
}

func TestFieldsAndOperators(t *testing.T) {
	r, _ := testServer(t)

	w, env := do(t, r, http.MethodGet, "/api/fields", "")
	require.Equal(t, http.StatusOK, w.Code)
	var fields []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &fields))
	require.Len(t, fields, 3)
	assert.Equal(t, "score", fields[1].ID)
	assert.Equal(t, "number", fields[1].Type)

	w, env = do(t, r, http.MethodGet, "/api/fields/operators?type=boolean", "")
	require.Equal(t, http.StatusOK, w.Code)
	var ops []string
	require.NoError(t, json.Unmarshal(env.Data, &ops))
	assert.Equal(t, []string{"equals", "notEquals"}, ops)

	w, _ = do(t, r, http.MethodGet, "/api/fields/operators?type=blob", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPresets_CRUD(t *testing.T) {
	r, store := testServer(t)

	w, env := do(t, r, http.MethodPost, "/api/presets", `{"name": "Drafts", "isSystem": true,
		"filters": {"logic": "AND", "conditions": [{"id": "c1", "field": "status", "operator": "equals", "value": "draft"}]}}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var saved struct {
		ID       string `json:"id"`
		IsSystem bool   `json:"isSystem"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &saved))
	require.NotEmpty(t, saved.ID)
	assert.False(t, saved.IsSystem, "clients cannot create system presets")

	w, _ = do(t, r, http.MethodGet, "/api/presets/"+saved.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, r, http.MethodGet, "/api/presets?q=draft", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)

	w, env = do(t, r, http.MethodDelete, "/api/presets/"+saved.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id": "`+saved.ID+`", "deleted": true}`, string(env.Data))

	_, ok := store.Get(saved.ID)
	assert.False(t, ok)

	w, _ = do(t, r, http.MethodGet, "/api/presets/"+saved.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPresets_SystemDeleteRefused(t *testing.T) {
	r, store := testServer(t)

	w, env := do(t, r, http.MethodDelete, "/api/presets/system-all", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "System presets cannot be deleted", env.Message)
	assert.JSONEq(t, `{"id": "system-all", "deleted": false}`, string(env.Data))

	_, ok := store.Get("system-all")
	assert.True(t, ok)
}

func TestPresets_SystemSaveRefused(t *testing.T) {
	r, store := testServer(t)
	original, ok := store.Get("system-all")
	require.True(t, ok)

	body := `{
		"id": "system-all",
		"name": "Hijacked",
		"filters": {"logic": "AND", "conditions": [{"id": "c1", "field": "status", "operator": "equals", "value": "draft"}]}
	}`
	w, env := do(t, r, http.MethodPost, "/api/presets", body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.True(t, env.Error)

	got, ok := store.Get("system-all")
	require.True(t, ok)
	assert.Equal(t, original.Name, got.Name)
	assert.Empty(t, got.Filters.Conditions)
}

func TestPresets_EmptyName(t *testing.T) {
	r, _ := testServer(t)

	w, env := do(t, r, http.MethodPost, "/api/presets", `{"name": "   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, env.Error)
}

func TestPresets_NoStore(t *testing.T) {
	cfg := config.GetDefaults()
	cfg.Server.Mode = gin.TestMode
	r := New(cfg, nil).Router()

	w, _ := do(t, r, http.MethodGet, "/api/presets", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := testServer(t)

	do(t, r, http.MethodPost, "/api/query", `{}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lazyfacet_queries_total 1")
}
