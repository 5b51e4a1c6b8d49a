//go:build integration
// +build integration

package integration

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemawatch"
	"github.com/tordrt/schemawatch/internal/diff"
)

func TestMySQLCaptureAndDiff(t *testing.T) {
	ctx := context.Background()

	// Use environment variable if set, otherwise use default test connection string
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		dsn = "testuser:testpassword@tcp(localhost:3306)/testdb"
	}

	conn, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.PingContext(ctx), "Failed to connect to MySQL")

	_, err = conn.ExecContext(ctx, `DROP TABLE IF EXISTS schemawatch_it`)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, `CREATE TABLE schemawatch_it (id int, note varchar(64))`)
	require.NoError(t, err)
	defer func() { _, _ = conn.ExecContext(ctx, `DROP TABLE IF EXISTS schemawatch_it`) }()

	url := "mysql://" + dsn

	before, err := schemawatch.Capture(ctx, url, nil)
	require.NoError(t, err)
	require.Contains(t, before, "schemawatch_it")
	assert.Equal(t, "int", before["schemawatch_it"]["id"])
	assert.Equal(t, "varchar(64)", before["schemawatch_it"]["note"])

	_, err = conn.ExecContext(ctx, `ALTER TABLE schemawatch_it ADD COLUMN created_at datetime`)
	require.NoError(t, err)

	after, err := schemawatch.Capture(ctx, url, nil)
	require.NoError(t, err)

	records := schemawatch.Diff(before, after, true)
	require.Len(t, records, 1)
	assert.Equal(t, diff.ColumnAdded, records[0].Kind)
	assert.Equal(t, "created_at", records[0].Column)
	assert.Equal(t, "datetime", records[0].NewValue)
}
