// Package query runs the filter, search, sort and group stages over a
// record collection and returns a FilterResult.
package query

import (
	"time"

	"go.uber.org/zap"

	"github.com/rebeliceyang/lazyfacet/internal/filter"
	"github.com/rebeliceyang/lazyfacet/internal/models"
	"github.com/rebeliceyang/lazyfacet/internal/obs"
)

// Stage is a single step of the pipeline
type Stage[T any] interface {
	// Name returns the stage name for logging and metrics
	Name() string

	// Execute returns the stage output for items. Items must not be mutated.
	Execute(items []T) []T
}

// StageFunc adapts a function to the Stage interface
type StageFunc[T any] struct {
	name string
	fn   func([]T) []T
}

// NewStage creates a named stage
func NewStage[T any](name string, fn func([]T) []T) StageFunc[T] {
	return StageFunc[T]{name: name, fn: fn}
}

func (s StageFunc[T]) Name() string { return s.name }

func (s StageFunc[T]) Execute(items []T) []T { return s.fn(items) }

// Pipeline runs stages in the order they were added
type Pipeline[T any] struct {
	stages  []Stage[T]
	logger  *zap.Logger
	metrics *obs.Metrics
}

// NewPipeline creates an empty pipeline. logger and metrics may be nil.
func NewPipeline[T any](logger *zap.Logger, metrics *obs.Metrics) *Pipeline[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline[T]{logger: logger, metrics: metrics}
}

// AddStage appends a stage
func (p *Pipeline[T]) AddStage(stage Stage[T]) *Pipeline[T] {
	p.stages = append(p.stages, stage)
	return p
}

// Stages returns the stages in execution order
func (p *Pipeline[T]) Stages() []Stage[T] {
	return p.stages
}

// Execute feeds items through every stage
func (p *Pipeline[T]) Execute(items []T) []T {
	current := items
	for _, stage := range p.stages {
		start := time.Now()
		in := len(current)
		current = stage.Execute(current)

		elapsed := time.Since(start)
		if p.metrics != nil {
			p.metrics.StageLatency.WithLabelValues(stage.Name()).Observe(elapsed.Seconds())
		}
		p.logger.Debug("stage complete",
			zap.String("stage", stage.Name()),
			zap.Int("in", in),
			zap.Int("out", len(current)),
			zap.Duration("elapsed", elapsed))
	}
	return current
}

// Engine runs queries with shared logging and metrics
type Engine struct {
	logger  *zap.Logger
	metrics *obs.Metrics
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records query metrics into m
func WithMetrics(m *obs.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates an engine. Without options it logs nothing and records
// no metrics.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Logger returns the engine logger
func (e *Engine) Logger() *zap.Logger {
	return e.logger
}

// Metrics returns the engine metrics, or nil
func (e *Engine) Metrics() *obs.Metrics {
	return e.metrics
}

var defaultEngine = NewEngine()

// ApplyAll runs Filter, Search, Sort and Group (only when group is non-nil)
// with the default engine.
func ApplyAll[T any](items []T, filters models.FilterGroup, sort *models.SortConfig, group *models.GroupConfig, search *models.SearchConfig) models.FilterResult[T] {
	return Run(defaultEngine, items, filters, sort, group, search)
}

// Run is ApplyAll on engine e. Methods cannot have type parameters, so the
// engine is passed in.
func Run[T any](e *Engine, items []T, filters models.FilterGroup, sort *models.SortConfig, group *models.GroupConfig, search *models.SearchConfig) models.FilterResult[T] {
	start := time.Now()

	matcher := filter.NewMatcher(filters, e.logger)
	p := NewPipeline[T](e.logger, e.metrics).
		AddStage(NewStage("filter", func(in []T) []T { return filter.ApplyMatcher(in, matcher) }))
	if search != nil {
		cfg := *search
		p.AddStage(NewStage("search", func(in []T) []T { return Search(in, cfg) }))
	}
	if sort != nil {
		cfg := *sort
		p.AddStage(NewStage("sort", func(in []T) []T { return Sort(in, cfg) }))
	}

	filtered := p.Execute(items)

	result := models.FilterResult[T]{
		Items:          filtered,
		TotalCount:     len(items),
		FilteredCount:  len(filtered),
		AppliedFilters: filters,
		AppliedSort:    sort,
		AppliedGroup:   group,
		AppliedSearch:  search,
	}
	if group != nil {
		groupStart := time.Now()
		result.Groups = Group(filtered, *group)
		if e.metrics != nil {
			e.metrics.StageLatency.WithLabelValues("group").Observe(time.Since(groupStart).Seconds())
		}
	}

	elapsed := time.Since(start)
	if e.metrics != nil {
		e.metrics.Queries.Inc()
		e.metrics.QueryLatency.Observe(elapsed.Seconds())
		e.metrics.ItemsIn.Add(float64(len(items)))
		e.metrics.ItemsOut.Add(float64(len(filtered)))
	}
	e.logger.Debug("query complete",
		zap.Int("total", result.TotalCount),
		zap.Int("filtered", result.FilteredCount),
		zap.Int("groups", len(result.Groups)),
		zap.Duration("elapsed", elapsed))

	return result
}
