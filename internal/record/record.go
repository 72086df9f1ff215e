package record

import (
	"fmt"
	"strings"
)

// Delimiter is the Initializer stop character used to join multi-valued
// fields such as Members and Answers. It must never appear inside a data
// value; the preflight scan checks the database for violations before an
// export runs.
const Delimiter = ";"

// Referent field names for the concepts domain. A concept refers to other
// concepts either as set members or as answer options.
const (
	FieldMembers = "Members"
	FieldAnswers = "Answers"
)

// Well-known key columns.
const (
	KeyFullySpecifiedNameEN = "Fully specified name:en"
	KeyUUID                 = "uuid"
)

// Record is one exportable row: a mapping from column name to value. All
// fields are opaque payload except the designated key column and the two
// referent columns.
type Record map[string]string

// MissingKeyError reports a record without a value in its designated key
// column. This is malformed input and aborts the export.
type MissingKeyError struct {
	// Key is the designated key column name.
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("record has no value in key column %q", e.Key)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *MissingKeyError) Is(target error) bool {
	_, ok := target.(*MissingKeyError)
	return ok
}

// DuplicateKeyError reports two records sharing the same key value.
type DuplicateKeyError struct {
	Key   string
	Value string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate value %q in key column %q", e.Value, e.Key)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *DuplicateKeyError) Is(target error) bool {
	_, ok := target.(*DuplicateKeyError)
	return ok
}

// Key returns the record's value in the designated key column.
func (r Record) Key(key string) string {
	return r[key]
}

// Referents returns the union of the record's Members and Answers lists,
// split on Delimiter with empty entries dropped. A record with empty
// referent columns returns nil.
func (r Record) Referents() []string {
	var refs []string
	for _, field := range []string{FieldMembers, FieldAnswers} {
		for _, ref := range strings.Split(r[field], Delimiter) {
			if ref != "" {
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

// Index builds a lookup from key value to record. It fails on a record with
// no key value or on two records sharing one, since downstream reference
// resolution depends on keys being unique and always resolvable.
func Index(records []Record, key string) (map[string]Record, error) {
	byKey := make(map[string]Record, len(records))
	for _, r := range records {
		k := r.Key(key)
		if k == "" {
			return nil, &MissingKeyError{Key: key}
		}
		if _, exists := byKey[k]; exists {
			return nil, &DuplicateKeyError{Key: key, Value: k}
		}
		byKey[k] = r
	}
	return byKey, nil
}

// Keys returns the key values of records in collection order.
func Keys(records []Record, key string) []string {
	keys := make([]string, 0, len(records))
	for _, r := range records {
		keys = append(keys, r.Key(key))
	}
	return keys
}
