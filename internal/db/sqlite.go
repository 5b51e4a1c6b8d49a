package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tordrt/schemawatch/internal/snapshot"
)

// SQLiteSnapshotter captures schema snapshots from a SQLite database file.
type SQLiteSnapshotter struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database file and returns a snapshotter for it.
func NewSQLite(ctx context.Context, path string) (*SQLiteSnapshotter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, connectivity(fmt.Errorf("failed to open SQLite database: %w", err))
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, connectivity(fmt.Errorf("failed to ping SQLite database: %w", err))
	}

	return &SQLiteSnapshotter{db: db}, nil
}

// Snapshot captures the current tables and columns of the database.
// SQLite's internal sqlite_* tables are excluded.
func (q *SQLiteSnapshotter) Snapshot(ctx context.Context) (snapshot.Snapshot, error) {
	tableQuery := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := q.db.QueryContext(ctx, tableQuery)
	if err != nil {
		return nil, connectivity(fmt.Errorf("failed to list tables: %w", err))
	}

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			rows.Close()
			return nil, connectivity(fmt.Errorf("failed to scan table name: %w", err))
		}
		tables = append(tables, tableName)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, connectivity(fmt.Errorf("failed to list tables: %w", err))
	}

	s := snapshot.Snapshot{}
	for _, tableName := range tables {
		cols, err := q.tableColumns(ctx, tableName)
		if err != nil {
			return nil, err
		}
		s[tableName] = cols
	}

	return s, nil
}

// tableColumns reads one table's columns via PRAGMA table_info. There is no
// bulk column view in SQLite, so this runs once per table.
func (q *SQLiteSnapshotter) tableColumns(ctx context.Context, tableName string) (snapshot.Columns, error) {
	// PRAGMA takes no bind parameters; the name comes from sqlite_master and
	// may itself contain quotes, so escape it as a SQL identifier.
	query := fmt.Sprintf(`PRAGMA table_info("%s")`, strings.ReplaceAll(tableName, `"`, `""`))

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, connectivity(fmt.Errorf("failed to read columns of %s: %w", tableName, err))
	}
	defer rows.Close()

	cols := snapshot.Columns{}
	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, connectivity(fmt.Errorf("failed to scan column of %s: %w", tableName, err))
		}
		cols[name] = colType
	}
	if err := rows.Err(); err != nil {
		return nil, connectivity(fmt.Errorf("failed to read columns of %s: %w", tableName, err))
	}

	return cols, nil
}

// Close closes the database connection.
func (q *SQLiteSnapshotter) Close(_ context.Context) error {
	return q.db.Close()
}
