package engine

import (
	"sync"

	"github.com/goliatone/go-formcheck/pkg/layout"
	"github.com/goliatone/go-formcheck/pkg/reindex"
	"github.com/goliatone/go-formcheck/pkg/validation"
)

// Store holds the current validation result of one form. Transformations
// are applied one at a time, in call order, and never mutate a tree handed
// out by Result.
type Store struct {
	mu     sync.Mutex
	result validation.Result
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{result: validation.Result{Validations: validation.Validations{}}}
}

// Result returns a copy of the current result.
func (s *Store) Result() validation.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return validation.Result{
		Validations:      s.result.Validations.Clone(),
		InvalidDataTypes: s.result.InvalidDataTypes,
	}
}

// Replace stores the outcome of a full pass: every page it lists is
// replaced wholesale and its type-level flag becomes authoritative.
func (s *Store) Replace(fresh validation.Result) validation.Result {
	return s.apply(func(current validation.Result) validation.Result {
		return validation.Result{
			Validations:      validation.ReplaceLayouts(current.Validations, fresh.Validations),
			InvalidDataTypes: fresh.InvalidDataTypes,
		}
	})
}

// Merge folds the outcome of a partial pass into the stored tree. A partial
// pass can raise the type-level flag but only a full pass clears it.
func (s *Store) Merge(partial validation.Result) validation.Result {
	return s.apply(func(current validation.Result) validation.Result {
		return validation.Result{
			Validations:      validation.Merge(current.Validations, partial.Validations),
			InvalidDataTypes: current.InvalidDataTypes || partial.InvalidDataTypes,
		}
	})
}

// MergeValidations folds a validations tree (server issues) into the store.
func (s *Store) MergeValidations(v validation.Validations) validation.Result {
	return s.Merge(validation.Result{Validations: v})
}

// RemoveRow reindexes the stored tree after row rowIndex of groupID was
// deleted on page l and returns the shifted repeating-group state.
func (s *Store) RemoveRow(groupID string, rowIndex int, l *layout.Layout, groups layout.RepeatingGroups) layout.RepeatingGroups {
	layoutID := ""
	if l != nil {
		layoutID = l.ID
	}
	s.apply(func(current validation.Result) validation.Result {
		return validation.Result{
			Validations:      reindex.RemoveRow(groupID, rowIndex, layoutID, l, groups, current.Validations),
			InvalidDataTypes: current.InvalidDataTypes,
		}
	})
	return reindex.RemoveGroupRow(l, groups, groupID, rowIndex)
}

func (s *Store) apply(fn func(validation.Result) validation.Result) validation.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = fn(s.result)
	return validation.Result{
		Validations:      s.result.Validations.Clone(),
		InvalidDataTypes: s.result.InvalidDataTypes,
	}
}
