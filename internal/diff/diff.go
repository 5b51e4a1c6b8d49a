// Package diff computes typed change records between two schema snapshots,
// including best-effort detection of renamed tables and columns.
package diff

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tordrt/schemawatch/internal/snapshot"
)

// Kind identifies the type of a schema change.
type Kind string

const (
	TableAdded        Kind = "table_added"
	TableRemoved      Kind = "table_removed"
	TableRenamed      Kind = "table_renamed"
	ColumnAdded       Kind = "column_added"
	ColumnRemoved     Kind = "column_removed"
	ColumnRenamed     Kind = "column_renamed"
	ColumnTypeChanged Kind = "column_type_changed"

	// Reserved for deeper introspection; the current engine never emits these.
	IndexAdded   Kind = "index_added"
	IndexRemoved Kind = "index_removed"
)

// Record is a single schema change between two snapshots. Records are
// immutable values created only by Compute.
type Record struct {
	Kind       Kind      `json:"kind"`
	Table      string    `json:"table"`
	Column     string    `json:"column,omitempty"`
	OldValue   string    `json:"old_value,omitempty"`
	NewValue   string    `json:"new_value,omitempty"`
	DetectedAt time.Time `json:"detected_at"`
}

// renameThreshold is the similarity score a removed/added name pair must
// strictly exceed to be reported as a rename.
const renameThreshold = 0.5

// Compute returns the changes that turn oldSnap into newSnap.
//
// Tables and columns are visited in lexicographic order, so the result is
// deterministic: the same pair of snapshots always yields the same slice.
// When detectRenames is set, a removed name and an added name that score
// above the rename threshold are reported as a single rename record instead
// of an add/remove pair. Compute(s, s, *) is always empty.
func Compute(oldSnap, newSnap snapshot.Snapshot, detectRenames bool) []Record {
	now := time.Now().UTC()
	var records []Record

	added := missingFrom(newSnap.Tables(), oldSnap)
	removed := missingFrom(oldSnap.Tables(), newSnap)

	var renames []renamePair
	if detectRenames {
		renames = matchRenames(removed, added)
	}

	for _, table := range added {
		if consumedNew(renames, table) {
			continue
		}
		records = append(records, Record{Kind: TableAdded, Table: table, DetectedAt: now})
	}
	for _, table := range removed {
		if consumedOld(renames, table) {
			continue
		}
		records = append(records, Record{Kind: TableRemoved, Table: table, DetectedAt: now})
	}
	for _, p := range renames {
		records = append(records, Record{
			Kind:       TableRenamed,
			Table:      p.oldName,
			OldValue:   p.oldName,
			NewValue:   p.newName,
			DetectedAt: now,
		})
	}

	for _, table := range oldSnap.Tables() {
		if _, ok := newSnap[table]; !ok {
			continue
		}
		records = append(records, compareColumns(table, oldSnap[table], newSnap[table], detectRenames, now)...)
	}

	return records
}

// compareColumns diffs a single table's column mapping using the same
// add/remove, rename, type-change steps applied to tables.
func compareColumns(table string, oldCols, newCols snapshot.Columns, detectRenames bool, now time.Time) []Record {
	var records []Record

	added := missingColumns(newCols, oldCols)
	removed := missingColumns(oldCols, newCols)

	var renames []renamePair
	if detectRenames {
		renames = matchRenames(removed, added)
	}

	for _, col := range added {
		if consumedNew(renames, col) {
			continue
		}
		records = append(records, Record{
			Kind:       ColumnAdded,
			Table:      table,
			Column:     col,
			NewValue:   newCols[col],
			DetectedAt: now,
		})
	}
	for _, col := range removed {
		if consumedOld(renames, col) {
			continue
		}
		records = append(records, Record{
			Kind:       ColumnRemoved,
			Table:      table,
			Column:     col,
			OldValue:   oldCols[col],
			DetectedAt: now,
		})
	}
	for _, p := range renames {
		records = append(records, Record{
			Kind:       ColumnRenamed,
			Table:      table,
			Column:     p.oldName,
			OldValue:   p.oldName,
			NewValue:   p.newName,
			DetectedAt: now,
		})
	}

	common := make([]string, 0, len(oldCols))
	for col := range oldCols {
		if _, ok := newCols[col]; ok {
			common = append(common, col)
		}
	}
	sort.Strings(common)
	for _, col := range common {
		if oldCols[col] != newCols[col] {
			records = append(records, Record{
				Kind:       ColumnTypeChanged,
				Table:      table,
				Column:     col,
				OldValue:   oldCols[col],
				NewValue:   newCols[col],
				DetectedAt: now,
			})
		}
	}

	return records
}

type renamePair struct {
	oldName string
	newName string
}

// matchRenames pairs removed names with added names whose similarity score
// strictly exceeds the rename threshold. Matching is greedy: removed names
// are scanned in lexicographic order and each added name can be consumed by
// at most one match, so the outcome never depends on map iteration order.
func matchRenames(removed, added []string) []renamePair {
	var pairs []renamePair
	consumed := make(map[string]bool, len(added))

	for _, oldName := range removed {
		best := ""
		bestScore := renameThreshold
		for _, candidate := range added {
			if consumed[candidate] {
				continue
			}
			if score := Similarity(oldName, candidate); score > bestScore {
				bestScore = score
				best = candidate
			}
		}
		if best != "" {
			pairs = append(pairs, renamePair{oldName: oldName, newName: best})
			consumed[best] = true
		}
	}

	return pairs
}

// Similarity scores how alike two names are, in [0, 1]. Comparison is
// case-insensitive: equal names score 1.0, a substring relation scores 0.7,
// and anything else scores by shared unique characters over the longer
// name's length. This is deliberately crude — character-set overlap, not
// edit distance — which is enough to pair names like "customer_id" and
// "customerId" without pulling in a string-metric dependency.
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	if a == b {
		return 1.0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.7
	}

	shared := 0
	seen := make(map[rune]bool)
	for _, r := range a {
		seen[r] = true
	}
	counted := make(map[rune]bool)
	for _, r := range b {
		if seen[r] && !counted[r] {
			shared++
			counted[r] = true
		}
	}
	if shared == 0 {
		return 0.0
	}

	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	return float64(shared) / float64(longest)
}

// missingFrom returns the names (already sorted) that have no entry in s.
func missingFrom(names []string, s snapshot.Snapshot) []string {
	var out []string
	for _, name := range names {
		if _, ok := s[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// missingColumns returns the sorted column names of a that are absent from b.
func missingColumns(a, b snapshot.Columns) []string {
	var out []string
	for col := range a {
		if _, ok := b[col]; !ok {
			out = append(out, col)
		}
	}
	sort.Strings(out)
	return out
}

func consumedOld(pairs []renamePair, name string) bool {
	for _, p := range pairs {
		if p.oldName == name {
			return true
		}
	}
	return false
}

func consumedNew(pairs []renamePair, name string) bool {
	for _, p := range pairs {
		if p.newName == name {
			return true
		}
	}
	return false
}
