package domain

import "sort"

// NodeIDField is the field carrying the node identifier in every MO table.
const NodeIDField = "NodeId"

// Table is a named, homogeneous set of records. It is immutable once handed
// to the engines; mutating helpers return copies.
type Table struct {
	Name string
	Rows []Record
}

// NewTable creates a table over the given rows.
func NewTable(name string, rows []Record) Table {
	return Table{Name: name, Rows: rows}
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// HasField reports whether any row carries the field. Schemas may be
// ragged, so field presence is a property of the table, not of each row.
func (t Table) HasField(name string) bool {
	for _, row := range t.Rows {
		if row.Has(name) {
			return true
		}
	}
	return false
}

// HasFields reports whether every named field is present on the table.
func (t Table) HasFields(names ...string) bool {
	for _, name := range names {
		if !t.HasField(name) {
			return false
		}
	}
	return true
}

// Nodes returns the sorted distinct values of the NodeId field.
func (t Table) Nodes() []string {
	return t.DistinctValues(NodeIDField)
}

// DistinctValues returns the sorted distinct non-empty values of a field.
func (t Table) DistinctValues(field string) []string {
	seen := map[string]struct{}{}
	for _, row := range t.Rows {
		if v, ok := row.GetString(field); ok && v != "" {
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// GroupByNode maps each node to its rows, preserving row order per node.
func (t Table) GroupByNode() map[string][]Record {
	return t.GroupBy(NodeIDField)
}

// GroupBy maps each distinct value of the field to its rows. Rows missing
// the field are grouped under the empty string.
func (t Table) GroupBy(field string) map[string][]Record {
	groups := map[string][]Record{}
	for _, row := range t.Rows {
		v, _ := row.GetString(field)
		groups[v] = append(groups[v], row)
	}
	return groups
}

// WithoutNodes returns a copy of the table dropping rows whose NodeId is in
// the excluded set. Used to subtract unsynchronized nodes before checks run.
func (t Table) WithoutNodes(excluded map[string]struct{}) Table {
	if len(excluded) == 0 {
		return t
	}
	kept := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		node, _ := row.GetString(NodeIDField)
		if _, drop := excluded[node]; drop {
			continue
		}
		kept = append(kept, row)
	}
	return Table{Name: t.Name, Rows: kept}
}

// TableStore is the in-memory collection of named tables for one snapshot.
// It is supplied by the ingestion layer and read-only to the engines.
type TableStore struct {
	tables map[string]Table
}

// NewTableStore creates an empty store.
func NewTableStore() *TableStore {
	return &TableStore{tables: map[string]Table{}}
}

// Put registers a table under its name, appending rows when the name is
// already present (one MO type can span multiple log files).
func (s *TableStore) Put(t Table) {
	existing, ok := s.tables[t.Name]
	if !ok {
		s.tables[t.Name] = t
		return
	}
	existing.Rows = append(existing.Rows, t.Rows...)
	s.tables[t.Name] = existing
}

// Lookup returns the named table. The boolean is false when the table is
// absent; callers treat absent and empty identically per the resilience
// policy.
func (s *TableStore) Lookup(name string) (Table, bool) {
	if s == nil {
		return Table{}, false
	}
	t, ok := s.tables[name]
	return t, ok
}

// Names returns the sorted table names present in the store.
func (s *TableStore) Names() []string {
	out := make([]string, 0, len(s.tables))
	for name := range s.tables {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// WithoutNodes returns a derived store where every table has the excluded
// nodes subtracted. The receiver is left untouched.
func (s *TableStore) WithoutNodes(excluded map[string]struct{}) *TableStore {
	out := NewTableStore()
	for name, t := range s.tables {
		out.tables[name] = t.WithoutNodes(excluded)
	}
	return out
}
