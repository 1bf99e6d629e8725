package layout

import (
	"sort"

	"github.com/goliatone/go-formcheck/pkg/datapath"
)

// RepeatingGroup is the row metadata of one repeating-group instance. Index is
// the highest existing row index (-1 for a group without rows). Nested group
// instances are keyed `<childGroupID>-<parentRow...>` and point back to the
// definition through BaseGroupID.
type RepeatingGroup struct {
	Index            int    `json:"index" yaml:"index"`
	BaseGroupID      string `json:"baseGroupId,omitempty" yaml:"baseGroupId,omitempty"`
	DataModelBinding string `json:"dataModelBinding,omitempty" yaml:"dataModelBinding,omitempty"`
}

// RepeatingGroups maps group instance id to its row metadata.
type RepeatingGroups map[string]RepeatingGroup

// Rows returns the number of rows of a group instance.
func (g RepeatingGroups) Rows(instanceID string) int {
	state, ok := g[instanceID]
	if !ok || state.Index < 0 {
		return 0
	}
	return state.Index + 1
}

// rowLimit caps a row count at the definition's maxCount.
func rowLimit(comp *Component, rows int) int {
	if comp.MaxCount > 0 && rows > comp.MaxCount {
		return comp.MaxCount
	}
	return rows
}

// Base returns the definition id of a group instance.
func (g RepeatingGroups) Base(instanceID string) string {
	if state, ok := g[instanceID]; ok && state.BaseGroupID != "" {
		return state.BaseGroupID
	}
	return instanceID
}

// Clone returns a copy.
func (g RepeatingGroups) Clone() RepeatingGroups {
	if g == nil {
		return nil
	}
	out := make(RepeatingGroups, len(g))
	for id, state := range g {
		out[id] = state
	}
	return out
}

// RepeatingGroupsFromData derives row metadata for every repeating group in
// the layout by scanning the highest index present in the form data under
// each group's binding. Indices at or beyond the group's maxCount are
// ignored. Nested groups get one entry per parent row.
func RepeatingGroupsFromData(l *Layout, data map[string]any) RepeatingGroups {
	out := make(RepeatingGroups)
	if l == nil {
		return out
	}

	keys := make([]datapath.Path, 0, len(data))
	for key := range data {
		keys = append(keys, datapath.Parse(key))
	}

	var walk func(comp *Component, indices []int, groupBindings []string)
	walk = func(comp *Component, indices []int, groupBindings []string) {
		if comp.Kind != KindGroup {
			return
		}
		if !comp.IsRepeating() {
			for _, childID := range comp.ChildIDs() {
				if child, ok := l.Find(childID); ok {
					walk(child, indices, groupBindings)
				}
			}
			return
		}

		binding := comp.GroupBinding()
		instanceID := comp.ID + datapath.RowSuffix(indices)
		indexed := datapath.Parse(datapath.IndexBinding(binding, groupBindings, indices))
		highest := highestIndex(keys, indexed, comp.MaxCount)

		state := RepeatingGroup{Index: highest, DataModelBinding: binding}
		if len(indices) > 0 {
			state.BaseGroupID = comp.ID
		}
		out[instanceID] = state

		nextBindings := append(append([]string(nil), groupBindings...), binding)
		for row := 0; row <= highest; row++ {
			nextIndices := append(append([]int(nil), indices...), row)
			for _, childID := range comp.ChildIDs() {
				if child, ok := l.Find(childID); ok {
					walk(child, nextIndices, nextBindings)
				}
			}
		}
	}

	for _, comp := range l.TopLevel() {
		walk(comp, nil, nil)
	}
	return out
}

// highestIndex returns the highest row index below limit found directly
// under prefix, or -1.
func highestIndex(keys []datapath.Path, prefix datapath.Path, limit int) int {
	highest := -1
	if len(prefix) == 0 {
		return highest
	}
	for _, key := range keys {
		if len(key) <= len(prefix) || !samePrefix(key, prefix) {
			continue
		}
		next := key[len(prefix)]
		if next.IsIndex && next.Index < limit && next.Index > highest {
			highest = next.Index
		}
	}
	return highest
}

func samePrefix(path, prefix datapath.Path) bool {
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}

func sortedPageIDs(pages map[string]*Layout) []string {
	ids := make([]string, 0, len(pages))
	for id := range pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
