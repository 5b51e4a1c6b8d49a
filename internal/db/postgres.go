package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/schemawatch/internal/snapshot"
)

// PostgresSnapshotter captures schema snapshots from a PostgreSQL database.
type PostgresSnapshotter struct {
	conn       *pgx.Conn
	schemaName string
}

// NewPostgres connects to PostgreSQL and returns a snapshotter scoped to the
// given schema. An empty schemaName defaults to "public".
func NewPostgres(ctx context.Context, connString, schemaName string) (*PostgresSnapshotter, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, connectivity(fmt.Errorf("failed to connect to PostgreSQL: %w", err))
	}

	// Test the connection
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, connectivity(fmt.Errorf("failed to ping PostgreSQL: %w", err))
	}

	if schemaName == "" {
		schemaName = "public"
	}

	return &PostgresSnapshotter{conn: conn, schemaName: schemaName}, nil
}

// Snapshot captures the current tables and columns of the schema.
func (p *PostgresSnapshotter) Snapshot(ctx context.Context) (snapshot.Snapshot, error) {
	s := snapshot.Snapshot{}

	// Tables first: a table with no columns (legal in PostgreSQL) must still
	// appear in the snapshot.
	tableQuery := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := p.conn.Query(ctx, tableQuery, p.schemaName)
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
		SELECT c.table_name, c.column_name, c.data_type
		FROM information_schema.columns c
		JOIN information_schema.tables t
			ON t.table_schema = c.table_schema
			AND t.table_name = c.table_name
		WHERE c.table_schema = $1 AND t.table_type = 'BASE TABLE'
		ORDER BY c.table_name, c.ordinal_position
	`

	rows, err = p.conn.Query(ctx, columnQuery, p.schemaName)
	if err != nil {
		return nil, connectivity(fmt.Errorf("failed to list columns: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, columnName, dataType string
		if err := rows.Scan(&tableName, &columnName, &dataType); err != nil {
			return nil, connectivity(fmt.Errorf("failed to scan column: %w", err))
		}
		cols, ok := s[tableName]
		if !ok {
			cols = snapshot.Columns{}
			s[tableName] = cols
		}
		cols[columnName] = dataType
	}
	if err := rows.Err(); err != nil {
		return nil, connectivity(fmt.Errorf("failed to list columns: %w", err))
	}

	return s, nil
}

// Close closes the database connection.
func (p *PostgresSnapshotter) Close(ctx context.Context) error {
	return p.conn.Close(ctx)
}
