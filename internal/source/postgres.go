package source

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres loads records from a SELECT
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a small connection pool for dsn and pings it
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	// Configure pool settings
	poolConfig.MaxConns = 2
	poolConfig.MinConns = 0
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// Load runs query and returns one record per row keyed by column name
func (p *Postgres) Load(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	fieldDescriptions := rows.FieldDescriptions()

	var records []Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		rec := make(Record, len(fieldDescriptions))
		for i, fd := range fieldDescriptions {
			rec[fd.Name] = normalizeValue(values[i])
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// normalizeValue turns driver types the query stages cannot read into plain
// Go values
func normalizeValue(v any) any {
	switch val := v.(type) {
	case pgtype.Numeric:
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(val).String()
	case []byte:
		return string(val)
	case map[string]any:
		for k, inner := range val {
			val[k] = normalizeValue(inner)
		}
		return val
	case []any:
		for i, inner := range val {
			val[i] = normalizeValue(inner)
		}
		return val
	}
	return v
}
