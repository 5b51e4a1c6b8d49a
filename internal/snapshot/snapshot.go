package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Columns maps column name to its type string.
// Type strings are opaque: they are compared for equality, never parsed.
type Columns map[string]string

// Snapshot is a point-in-time capture of a database's structure,
// mapping table name to its columns. A Snapshot is never mutated after
// capture; callers that need to hold one across captures should Clone it.
type Snapshot map[string]Columns

// Hash returns the SHA-256 hex digest of the snapshot's canonical JSON
// serialization. encoding/json writes map keys in sorted order, so two
// snapshots with equal content always hash identically regardless of how
// they were built.
func (s Snapshot) Hash() string {
	data, err := json.Marshal(s)
	if err != nil {
		// A map of strings always serializes; reaching this means the
		// snapshot contract was violated upstream.
		panic(fmt.Sprintf("snapshot: cannot serialize snapshot: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for table, cols := range s {
		c := make(Columns, len(cols))
		for name, typ := range cols {
			c[name] = typ
		}
		out[table] = c
	}
	return out
}

// Tables returns the snapshot's table names in lexicographic order.
func (s Snapshot) Tables() []string {
	names := make([]string, 0, len(s))
	for table := range s {
		names = append(names, table)
	}
	sort.Strings(names)
	return names
}

// ColumnNames returns the column names of a table in lexicographic order.
func (s Snapshot) ColumnNames(table string) []string {
	cols := s[table]
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
