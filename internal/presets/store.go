// Package presets stores named filter, sort and group configurations.
package presets

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rebeliceyang/lazyfacet/internal/models"
	"github.com/rebeliceyang/lazyfacet/internal/obs"
	"github.com/rebeliceyang/lazyfacet/internal/storage"
)

// ErrEmptyName is returned when saving a preset without a name
var ErrEmptyName = errors.New("preset name cannot be empty")

// ErrSystemPreset is returned when saving over a system preset
var ErrSystemPreset = errors.New("system presets cannot be modified")

// ChangeKind says what happened to a preset
type ChangeKind string

const (
	ChangeSaved   ChangeKind = "saved"
	ChangeDeleted ChangeKind = "deleted"
)

// ChangeEvent is delivered to listeners after the change is persisted
type ChangeEvent struct {
	Kind   ChangeKind
	Preset models.FilterPreset
}

// Listener receives change events. Listeners may read the store but must not
// call Save or Delete.
type Listener func(ChangeEvent)

// Store owns the in-memory presets and their durable copy. It is the only
// writer of the persisted blob.
type Store struct {
	mu        sync.Mutex
	notifyMu  sync.Mutex
	backend   storage.Backend
	presets   []models.FilterPreset
	listeners map[uint64]Listener
	nextToken uint64

	logger  *zap.Logger
	metrics *obs.Metrics
	now     func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the store logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records store metrics into m
func WithMetrics(m *obs.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithSystemPresets seeds presets that cannot be deleted. A persisted preset
// with the same ID takes precedence but stays flagged as system.
func WithSystemPresets(system ...models.FilterPreset) Option {
	return func(s *Store) {
		for _, p := range system {
			p.IsSystem = true
			s.presets = append(s.presets, p)
		}
	}
}

// NewStore creates a store and loads the persisted presets. An unreadable or
// corrupt blob is logged and the store starts with no persisted presets.
func NewStore(backend storage.Backend, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		listeners: make(map[uint64]Listener),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := s.load()
	if err != nil {
		s.logger.Error("failed to load presets, starting empty", zap.Error(err))
		if s.metrics != nil {
			s.metrics.LoadFailures.Inc()
		}
		return s
	}

	for _, p := range loaded {
		if i := s.indexOf(p.ID); i >= 0 {
			p.IsSystem = s.presets[i].IsSystem || p.IsSystem
			s.presets[i] = p
			continue
		}
		s.presets = append(s.presets, p)
	}
	s.logger.Debug("presets loaded", zap.Int("count", len(s.presets)))
	return s
}

func (s *Store) load() ([]models.FilterPreset, error) {
	data, err := s.backend.Read()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var loaded []models.FilterPreset
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}
	return loaded, nil
}

// persist writes the full list. Callers hold s.mu.
func (s *Store) persist() error {
	data, err := json.Marshal(s.presets)
	if err != nil {
		return fmt.Errorf("failed to marshal presets: %w", err)
	}
	if err := s.backend.Write(data); err != nil {
		if s.metrics != nil {
			s.metrics.PersistErrors.Inc()
		}
		return fmt.Errorf("failed to persist presets: %w", err)
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.presets, func(p models.FilterPreset) bool {
		return p.ID == id
	})
}

// Save inserts or replaces the preset with the same ID, persists, then
// notifies listeners. On a failed write the store is left unchanged. System
// presets are never replaced: the call logs a warning and returns
// ErrSystemPreset.
func (s *Store) Save(preset models.FilterPreset) (models.FilterPreset, error) {
	preset.Name = strings.TrimSpace(preset.Name)
	if preset.Name == "" {
		return models.FilterPreset{}, ErrEmptyName
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if i := s.indexOf(preset.ID); i >= 0 && s.presets[i].IsSystem {
		s.mu.Unlock()
		s.logger.Warn("refusing to modify system preset", zap.String("id", preset.ID))
		return models.FilterPreset{}, ErrSystemPreset
	}

	now := s.now()
	if preset.ID == "" {
		preset.ID = s.uniqueID(now)
	}
	if preset.CreatedAt.IsZero() {
		preset.CreatedAt = now
	}
	preset.UpdatedAt = now

	previous := slices.Clone(s.presets)
	if i := s.indexOf(preset.ID); i >= 0 {
		s.presets[i] = preset
	} else {
		s.presets = append(s.presets, preset)
	}

	if err := s.persist(); err != nil {
		s.presets = previous
		s.mu.Unlock()
		return models.FilterPreset{}, err
	}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.PresetSaves.Inc()
	}
	s.logger.Debug("preset saved", zap.String("id", preset.ID), zap.String("name", preset.Name))
	notify(listeners, ChangeEvent{Kind: ChangeSaved, Preset: preset})
	return preset, nil
}

// Delete removes a preset, persists, then notifies listeners. System presets
// are never removed: the call logs a warning and returns nil. Unknown IDs are
// a no-op.
func (s *Store) Delete(id string) (bool, error) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}

	preset := s.presets[i]
	if preset.IsSystem {
		s.mu.Unlock()
		s.logger.Warn("refusing to delete system preset",
			zap.String("id", preset.ID), zap.String("name", preset.Name))
		if s.metrics != nil {
			s.metrics.RefusedDelete.Inc()
		}
		return false, nil
	}

	previous := slices.Clone(s.presets)
	s.presets = slices.Delete(s.presets, i, i+1)
	if err := s.persist(); err != nil {
		s.presets = previous
		s.mu.Unlock()
		return false, err
	}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.PresetDeletes.Inc()
	}
	s.logger.Debug("preset deleted", zap.String("id", id))
	notify(listeners, ChangeEvent{Kind: ChangeDeleted, Preset: preset})
	return true, nil
}

// Get returns the preset with id
func (s *Store) Get(id string) (models.FilterPreset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		return s.presets[i], true
	}
	return models.FilterPreset{}, false
}

// List returns every preset in insertion order
func (s *Store) List() []models.FilterPreset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.presets)
}

// Search returns presets whose name or description contains query,
// ignoring case
func (s *Store) Search(query string) []models.FilterPreset {
	all := s.List()
	if query == "" {
		return all
	}

	query = strings.ToLower(query)
	var results []models.FilterPreset
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Description), query) {
			results = append(results, p)
		}
	}
	return results
}

// Subscribe registers l and returns a function removing it. Calling the
// returned function more than once is safe.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	token := s.nextToken
	s.nextToken++
	s.listeners[token] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, token)
			s.mu.Unlock()
		})
	}
}

// snapshotListeners copies the listeners in subscription order. Callers hold s.mu.
func (s *Store) snapshotListeners() []Listener {
	tokens := make([]uint64, 0, len(s.listeners))
	for token := range s.listeners {
		tokens = append(tokens, token)
	}
	slices.Sort(tokens)

	out := make([]Listener, len(tokens))
	for i, token := range tokens {
		out[i] = s.listeners[token]
	}
	return out
}

func notify(listeners []Listener, ev ChangeEvent) {
	for _, l := range listeners {
		l(ev)
	}
}

// uniqueID suffixes the timestamp ID when several presets share a millisecond.
// Callers hold s.mu.
func (s *Store) uniqueID(t time.Time) string {
	id := presetID(t)
	for n := 2; s.indexOf(id) >= 0; n++ {
		id = fmt.Sprintf("%s-%d", presetID(t), n)
	}
	return id
}

func presetID(t time.Time) string {
	return fmt.Sprintf("preset-%d", t.UnixMilli())
}

// NewPreset builds an unsaved preset. Its ID is left empty so that Save
// assigns a unique one.
func NewPreset(name string, filters models.FilterGroup, sort *models.SortConfig, group *models.GroupConfig) models.FilterPreset {
	now := time.Now()
	return models.FilterPreset{
		Name:      name,
		Filters:   filters,
		Sort:      sort,
		Group:     group,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
