package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/tordrt/schemawatch/internal/snapshot"
)

// MySQLSnapshotter captures schema snapshots from a MySQL database.
type MySQLSnapshotter struct {
	db         *sql.DB
	schemaName string
}

// NewMySQL connects to MySQL and returns a snapshotter scoped to the given
// schema. An empty schemaName is resolved from the database name in the DSN.
func NewMySQL(ctx context.Context, connString, schemaName string) (*MySQLSnapshotter, error) {
	if schemaName == "" {
		cfg, err := mysql.ParseDSN(connString)
		if err != nil {
			return nil, fmt.Errorf("failed to parse MySQL DSN: %w", err)
		}
		if cfg.DBName == "" {
			return nil, fmt.Errorf("MySQL DSN has no database name; specify a schema name explicitly")
		}
		schemaName = cfg.DBName
	}

	db, err := sql.Open("mysql", connString)
	if err != nil {
		return nil, connectivity(fmt.Errorf("failed to open MySQL connection: %w", err))
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, connectivity(fmt.Errorf("failed to ping MySQL: %w", err))
	}

	return &MySQLSnapshotter{db: db, schemaName: schemaName}, nil
}

// Snapshot captures the current tables and columns of the schema. Column
// types are reported as MySQL's full column_type (e.g. "varchar(255)").
func (m *MySQLSnapshotter) Snapshot(ctx context.Context) (snapshot.Snapshot, error) {
	s := snapshot.Snapshot{}

	tableQuery := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := m.db.QueryContext(ctx, tableQuery, m.schemaName)
	if err != nil {
		return nil, connectivity(fmt.Errorf("failed to list tables: %w", err))
	}
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			rows.Close()
			return nil, connectivity(fmt.Errorf("failed to scan table name: %w", err))
		}
		s[tableName] = snapshot.Columns{}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, connectivity(fmt.Errorf("failed to list tables: %w", err))
	}

	columnQuery := `
		SELECT c.table_name, c.column_name, c.column_type
		FROM information_schema.columns c
		JOIN information_schema.tables t
			ON t.table_schema = c.table_schema
			AND t.table_name = c.table_name
		WHERE c.table_schema = ? AND t.table_type = 'BASE TABLE'
		ORDER BY c.table_name, c.ordinal_position
	`

	rows, err = m.db.QueryContext(ctx, columnQuery, m.schemaName)
	if err != nil {
		return nil, connectivity(fmt.Errorf("failed to list columns: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, columnName, columnType string
		if err := rows.Scan(&tableName, &columnName, &columnType); err != nil {
			return nil, connectivity(fmt.Errorf("failed to scan column: %w", err))
		}
		cols, ok := s[tableName]
		if !ok {
			cols = snapshot.Columns{}
			s[tableName] = cols
		}
		cols[columnName] = columnType
	}
	if err := rows.Err(); err != nil {
		return nil, connectivity(fmt.Errorf("failed to list columns: %w", err))
	}

	return s, nil
}

// Close closes the database connection.
func (m *MySQLSnapshotter) Close(_ context.Context) error {
	return m.db.Close()
}
