// Package db provides schema snapshotters for PostgreSQL, MySQL, and SQLite.
//
// Each snapshotter owns one database connection and reduces the engine's
// introspection surface (information_schema, sqlite_master) to the common
// table → column → type-string form. Type strings are reported as the engine
// spells them and are never parsed.
package db

import (
	"context"
	"errors"

	"github.com/tordrt/schemawatch/internal/snapshot"
)

// Snapshotter captures the current structure of a database. Implementations
// re-query the source on every call; nothing is cached between snapshots.
type Snapshotter interface {
	Snapshot(ctx context.Context) (snapshot.Snapshot, error)
	Close(ctx context.Context) error
}

// ConnectivityError wraps any failure to reach or query the data source:
// network errors, authentication failures, the database being unavailable.
// Callers treat it as transient and retry on their own schedule.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return "data source unreachable: " + e.Err.Error()
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// IsConnectivity reports whether err is (or wraps) a ConnectivityError.
func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}

func connectivity(err error) error {
	if err == nil {
		return nil
	}
	return &ConnectivityError{Err: err}
}
