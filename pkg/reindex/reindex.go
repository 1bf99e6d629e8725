package reindex

import (
	"sort"
	"strings"

	"github.com/goliatone/go-formcheck/pkg/datapath"
	"github.com/goliatone/go-formcheck/pkg/layout"
	"github.com/goliatone/go-formcheck/pkg/validation"
)

// RemoveRow returns validations after row rowIndex of group instance
// groupID was deleted on page layoutID. Entries of every component rendered
// inside that row (nested groups included) are dropped and entries of later
// rows move down one index, content unchanged. Other pages and components
// outside the group are carried over as is. An unknown group or row leaves
// the tree unchanged.
func RemoveRow(groupID string, rowIndex int, layoutID string, l *layout.Layout, groups layout.RepeatingGroups, v validation.Validations) validation.Validations {
	out := v.Clone()
	target, ok := resolveTarget(groupID, rowIndex, l, groups)
	if !ok {
		return out
	}
	page, ok := out[layoutID]
	if !ok {
		return out
	}

	shifted := make(validation.LayoutValidations, len(page))
	for _, key := range page.SortedKeys() {
		next, keep := target.rename(key)
		if !keep {
			continue
		}
		shifted[next] = page[key]
	}
	out[layoutID] = shifted
	return out
}

// RemoveGroupRow returns the repeating-group state after row rowIndex of
// groupID was deleted: the group loses one row and the entries of nested
// group instances anchored at later rows are renamed down one index. An
// unknown group or row leaves the state unchanged.
func RemoveGroupRow(l *layout.Layout, groups layout.RepeatingGroups, groupID string, rowIndex int) layout.RepeatingGroups {
	out := groups.Clone()
	target, ok := resolveTarget(groupID, rowIndex, l, groups)
	if !ok {
		return out
	}

	ids := make([]string, 0, len(out))
	for id := range out {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	next := make(layout.RepeatingGroups, len(out))
	for _, id := range ids {
		state := out[id]
		if id == groupID {
			state.Index--
			next[id] = state
			continue
		}
		renamed, keep := target.rename(id)
		if !keep {
			continue
		}
		next[renamed] = state
	}
	return next
}

// target describes the deleted row: the rows of its enclosing groups, and
// the definitions keyed per row (the group itself and everything rendered
// inside it) mapped to the number of row indices their instance ids carry.
type target struct {
	row         int
	parentRows  []int
	descendants map[string]int
}

func resolveTarget(groupID string, rowIndex int, l *layout.Layout, groups layout.RepeatingGroups) (target, bool) {
	state, ok := groups[groupID]
	if !ok || rowIndex < 0 || rowIndex > state.Index || l == nil {
		return target{}, false
	}
	baseID := groups.Base(groupID)
	group, ok := l.Find(baseID)
	if !ok || !group.IsRepeating() {
		return target{}, false
	}
	parentRows, ok := datapath.ParseRowSuffix(strings.TrimPrefix(groupID, baseID))
	if !ok || len(parentRows) != len(l.RepeatingAncestors(baseID)) {
		return target{}, false
	}

	t := target{row: rowIndex, parentRows: parentRows, descendants: make(map[string]int)}
	// Row-keyed entries of the group itself (`G-1`) move with their row.
	t.descendants[group.ID] = len(parentRows) + 1
	var collect func(comp *layout.Component)
	collect = func(comp *layout.Component) {
		for _, childID := range comp.ChildIDs() {
			child, ok := l.Find(childID)
			if !ok {
				continue
			}
			if _, seen := t.descendants[child.ID]; seen {
				continue
			}
			t.descendants[child.ID] = len(l.RepeatingAncestors(child.ID))
			if child.Kind == layout.KindGroup {
				collect(child)
			}
		}
	}
	collect(group)
	return t, true
}

// rename maps an instance id to its id after the deletion. keep is false
// for instances inside the deleted row.
func (t target) rename(instanceID string) (string, bool) {
	baseID, rows, ok := t.match(instanceID)
	if !ok {
		return instanceID, true
	}
	depth := len(t.parentRows)
	switch {
	case rows[depth] == t.row:
		return "", false
	case rows[depth] > t.row:
		moved := append([]int(nil), rows...)
		moved[depth]--
		return baseID + datapath.RowSuffix(moved), true
	default:
		return instanceID, true
	}
}

// match splits instanceID into a row-keyed definition id and row indices
// anchored under the deleted group instance. The longest matching
// definition id wins.
func (t target) match(instanceID string) (string, []int, bool) {
	bestID := ""
	var bestRows []int
	for id, depth := range t.descendants {
		if len(id) <= len(bestID) || !strings.HasPrefix(instanceID, id+"-") {
			continue
		}
		rows, ok := datapath.ParseRowSuffix(instanceID[len(id):])
		if !ok || len(rows) != depth || !t.anchored(rows) {
			continue
		}
		bestID, bestRows = id, rows
	}
	return bestID, bestRows, bestID != ""
}

func (t target) anchored(rows []int) bool {
	if len(rows) <= len(t.parentRows) {
		return false
	}
	for i, row := range t.parentRows {
		if rows[i] != row {
			return false
		}
	}
	return true
}
