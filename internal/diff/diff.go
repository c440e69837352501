// Package diff computes the change set between two snapshots of the
// same resource. It is pure: inputs are never mutated and the result
// depends only on the two record sets.
package diff

import "github.com/mberthou/satchel/internal/domain"

// Field describes one compared field of a record: a display name and
// an extractor producing a comparable string value.
type Field[R any] struct {
	Name  string
	Value func(R) string
}

// Diff compares two record sets keyed by identity and returns the
// additions, removals and field-level modifications between them.
//
// Duplicate identities within one input are collapsed last-wins. The
// ordering of the returned changes is not part of the contract. Empty
// inputs yield an empty change set.
func Diff[R any](oldRecords, newRecords []R, identity func(R) string, fields []Field[R]) []domain.Change {
	oldByKey, oldKeys := index(oldRecords, identity)
	newByKey, newKeys := index(newRecords, identity)

	var changes []domain.Change

	for _, key := range newKeys {
		next := newByKey[key]
		prev, existed := oldByKey[key]
		if !existed {
			changes = append(changes, domain.Change{Kind: domain.ChangeAdded, Key: key})
			continue
		}
		if modified := compare(prev, next, fields); len(modified) > 0 {
			changes = append(changes, domain.Change{
				Kind:   domain.ChangeModified,
				Key:    key,
				Fields: modified,
			})
		}
	}

	for _, key := range oldKeys {
		if _, kept := newByKey[key]; !kept {
			changes = append(changes, domain.Change{Kind: domain.ChangeRemoved, Key: key})
		}
	}

	return changes
}

// index collapses records into an identity-keyed map, last record wins.
// Key order follows first appearance so output stays stable.
func index[R any](records []R, identity func(R) string) (map[string]R, []string) {
	byKey := make(map[string]R, len(records))
	keys := make([]string, 0, len(records))
	for _, r := range records {
		key := identity(r)
		if _, seen := byKey[key]; !seen {
			keys = append(keys, key)
		}
		byKey[key] = r
	}
	return byKey, keys
}

func compare[R any](prev, next R, fields []Field[R]) []domain.FieldChange {
	var modified []domain.FieldChange
	for _, f := range fields {
		before, after := f.Value(prev), f.Value(next)
		if before != after {
			modified = append(modified, domain.FieldChange{
				Name:   f.Name,
				Before: before,
				After:  after,
			})
		}
	}
	return modified
}
