package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Record is one Managed Object row: a mapping from field name to a scalar
// value (string, number or boolean). Field sets may vary between rows of the
// same table, so access is always explicit via Get/GetString.
type Record struct {
	Fields map[string]any
}

// NewRecord creates a record with its own copy of the field map.
func NewRecord(fields map[string]any) Record {
	return Record{Fields: copyFields(fields)}
}

// Get returns the raw value of a field and whether the field exists.
func (r Record) Get(name string) (any, bool) {
	if r.Fields == nil {
		return nil, false
	}
	v, ok := r.Fields[name]
	return v, ok
}

// GetString returns the field value normalized to a trimmed string. Numeric
// and boolean values are rendered the way the log parser would have read
// them. The second result is false when the field is absent.
func (r Record) GetString(name string) (string, bool) {
	v, ok := r.Get(name)
	if !ok {
		return "", false
	}
	return Stringify(v), true
}

// Has reports whether the field exists on this record.
func (r Record) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// WithField returns a new record with an added/updated field.
func (r Record) WithField(name string, value any) Record {
	fields := copyFields(r.Fields)
	fields[name] = value
	return Record{Fields: fields}
}

// Stringify renders a scalar value as the canonical string used for
// comparisons. Floats that carry an integer value render without a decimal
// part so "647328" and 647328.0 compare equal.
func Stringify(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case bool:
		if typed {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		if typed == float64(int64(typed)) {
			return strconv.FormatInt(int64(typed), 10)
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", typed))
	}
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// Key identifies a record within one table snapshot: the values of an
// ordered tuple of key fields joined with a non-printable separator.
type Key string

const keySeparator = "\x1f"

// MakeKey projects a record onto the ordered key fields. Fields absent from
// the record contribute an empty component, mirroring how partially filled
// rows are keyed in the source logs.
func MakeKey(r Record, keyFields []string) Key {
	parts := make([]string, len(keyFields))
	for i, f := range keyFields {
		parts[i], _ = r.GetString(f)
	}
	return Key(strings.Join(parts, keySeparator))
}

// Parts splits the key back into its field values, in key-field order.
func (k Key) Parts() []string {
	return strings.Split(string(k), keySeparator)
}

// Display renders the key for reports, joining components with "/".
func (k Key) Display() string {
	return strings.Join(k.Parts(), "/")
}

// SortKeys returns the keys in deterministic order.
func SortKeys(keys []Key) []Key {
	out := make([]Key, len(keys))
	copy(out, keys)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
