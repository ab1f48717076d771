// Package history records the queries run from the command line in sqlite
// so they can be listed and replayed.
package history

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rebeliceyang/lazyfacet/internal/filter"
	"github.com/rebeliceyang/lazyfacet/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Spec is everything needed to run a query again
type Spec struct {
	Filters models.FilterGroup   `json:"filters"`
	Sort    *models.SortConfig   `json:"sort,omitempty"`
	Group   *models.GroupConfig  `json:"group,omitempty"`
	Search  *models.SearchConfig `json:"search,omitempty"`
}

// Entry is one recorded query run
type Entry struct {
	ID         int64
	Source     string
	Summary    string
	Spec       Spec
	ExecutedAt time.Time
	Duration   time.Duration
	Total      int
	Matched    int
}

// Store manages query history persistence
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (creating if needed) the history database at path
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Create schema
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Add records a query run and returns its ID. A zero ExecutedAt is set to now.
func (s *Store) Add(entry Entry) (int64, error) {
	spec, err := json.Marshal(entry.Spec)
	if err != nil {
		return 0, fmt.Errorf("failed to encode query: %w", err)
	}
	if entry.Summary == "" {
		entry.Summary = Describe(entry.Spec)
	}
	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = s.now()
	}

	res, err := s.db.Exec(`
		INSERT INTO query_history
		(source, summary, spec, executed_at, duration_us, total, matched)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Source,
		entry.Summary,
		string(spec),
		entry.ExecutedAt.UTC().Format(time.RFC3339Nano),
		entry.Duration.Microseconds(),
		entry.Total,
		entry.Matched,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const selectColumns = `SELECT id, source, summary, spec, executed_at, duration_us, total, matched FROM query_history`

// Recent returns the latest limit entries, newest first
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(selectColumns+`
		ORDER BY executed_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// Search returns entries whose summary or source contains term
func (s *Store) Search(term string, limit int) ([]Entry, error) {
	like := "%" + term + "%"
	rows, err := s.db.Query(selectColumns+`
		WHERE summary LIKE ? OR source LIKE ?
		ORDER BY executed_at DESC, id DESC
		LIMIT ?`, like, like, limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// Get returns the entry with id
func (s *Store) Get(id int64) (Entry, bool, error) {
	rows, err := s.db.Query(selectColumns+` WHERE id = ?`, id)
	if err != nil {
		return Entry{}, false, err
	}
	entries, err := scanEntries(rows)
	if err != nil || len(entries) == 0 {
		return Entry{}, false, err
	}
	return entries[0], true, nil
}

// Clear removes every entry
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM query_history`)
	return err
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var spec, executedAt string
		var durationUs int64

		err := rows.Scan(
			&e.ID,
			&e.Source,
			&e.Summary,
			&spec,
			&executedAt,
			&durationUs,
			&e.Total,
			&e.Matched,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(spec), &e.Spec); err != nil {
			return nil, fmt.Errorf("corrupt history entry %d: %w", e.ID, err)
		}

		e.Duration = time.Duration(durationUs) * time.Microsecond
		e.ExecutedAt, _ = time.Parse(time.RFC3339Nano, executedAt)

		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Describe renders a query as one readable line, e.g.
// status == active AND score > 5 | search "gu" | sort score desc | group status
func Describe(spec Spec) string {
	var parts []string

	if !spec.Filters.IsEmpty() {
		logic := spec.Filters.Logic
		if logic != models.LogicOr {
			logic = models.LogicAnd
		}
		conds := make([]string, len(spec.Filters.Conditions))
		for i, c := range spec.Filters.Conditions {
			conds[i] = filter.Compile(c).String()
		}
		parts = append(parts, strings.Join(conds, " "+string(logic)+" "))
	}
	if spec.Search != nil && spec.Search.Query != "" {
		parts = append(parts, fmt.Sprintf("search %q", spec.Search.Query))
	}
	if spec.Sort != nil && len(spec.Sort.Options) > 0 {
		keys := make([]string, len(spec.Sort.Options))
		for i, o := range spec.Sort.Options {
			keys[i] = o.Field + " " + string(o.Direction)
		}
		parts = append(parts, "sort "+strings.Join(keys, ", "))
	}
	if spec.Group != nil && spec.Group.Field != "" {
		parts = append(parts, "group "+spec.Group.Field)
	}

	if len(parts) == 0 {
		return "all records"
	}
	return strings.Join(parts, " | ")
}
