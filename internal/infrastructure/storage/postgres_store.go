package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"historycal/internal/ports"
)

// PostgresStore keeps delivered event IDs in a single table:
//
//	CREATE TABLE delivered_events (
//	    source   TEXT NOT NULL,
//	    event_id TEXT NOT NULL,
//	    PRIMARY KEY (source, event_id)
//	);
type PostgresStore struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.StateStore = (*PostgresStore)(nil)

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Open connects to Postgres using the lib/pq driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// Load reads the delivered-ID set for a source.
func (s *PostgresStore) Load(ctx context.Context, source string) (map[string]struct{}, error) {
	if s.db == nil {
		return map[string]struct{}{}, nil
	}

	query, args, err := s.sb.
		Select("event_id").
		From("delivered_events").
		Where(sq.Eq{"source": source}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query delivered ids: %w", err)
	}
	defer rows.Close()

	ids := map[string]struct{}{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return ids, nil
}

// Save inserts any IDs not yet recorded for the source. Existing rows
// are left untouched, so the table grows monotonically like the file
// variant.
func (s *PostgresStore) Save(ctx context.Context, source string, ids map[string]struct{}) error {
	if s.db == nil || len(ids) == 0 {
		return nil
	}

	builder := s.sb.
		Insert("delivered_events").
		Columns("source", "event_id").
		Suffix("ON CONFLICT (source, event_id) DO NOTHING")
	for id := range ids {
		builder = builder.Values(source, id)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert delivered ids: %w", err)
	}
	return nil
}
