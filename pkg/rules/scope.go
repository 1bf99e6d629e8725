package rules

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-formcheck/pkg/datapath"
	"github.com/goliatone/go-formcheck/pkg/layout"
)

// Scope restricts a pass to a set of rendered instances. A nil Scope covers
// the whole page. Paths lists the data subtrees the schema pass evaluates
// instead of the full model.
type Scope struct {
	instances map[string]struct{}
	Paths     []datapath.Path
}

// Contains reports whether instanceID is inside the scope.
func (s *Scope) Contains(instanceID string) bool {
	if s == nil {
		return true
	}
	_, ok := s.instances[instanceID]
	return ok
}

// InstanceIDs returns the covered instance ids in sorted order.
func (s *Scope) InstanceIDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.instances))
	for id := range s.instances {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// GroupScope covers the subtree rendered from group instance groupID. With
// onlyRow set on a repeating group only that row's descendants are covered
// and the group instance itself is left out.
func GroupScope(forest layout.Forest, groupID string, onlyRow *int) (*Scope, error) {
	group := forest.Find(groupID)
	if group == nil || group.Kind() != layout.KindGroup {
		return nil, fmt.Errorf("rules: group %q: %w", groupID, layout.ErrUnknownComponent)
	}

	scope := &Scope{instances: make(map[string]struct{})}
	repeating := group.Component.IsRepeating()
	depth := len(group.RowIndices)
	if onlyRow == nil || !repeating {
		scope.instances[group.ID] = struct{}{}
	}
	for _, child := range group.Children {
		if onlyRow != nil && repeating && (len(child.RowIndices) <= depth || child.RowIndices[depth] != *onlyRow) {
			continue
		}
		for _, node := range child.Flatten() {
			scope.instances[node.ID] = struct{}{}
		}
	}

	binding := group.Bindings[layout.BindingGroup]
	switch {
	case binding == "":
		scope.Paths = bindingPaths(forest, scope)
	case onlyRow != nil && repeating:
		path := datapath.Parse(binding)
		scope.Paths = []datapath.Path{append(path, datapath.Token{Index: *onlyRow, IsIndex: true})}
	default:
		scope.Paths = []datapath.Path{datapath.Parse(binding)}
	}
	return scope, nil
}

// NodeScope covers a single rendered instance and the data its bindings
// point at.
func NodeScope(forest layout.Forest, instanceID string) (*Scope, error) {
	node := forest.Find(instanceID)
	if node == nil {
		return nil, fmt.Errorf("rules: instance %q: %w", instanceID, layout.ErrUnknownComponent)
	}
	scope := &Scope{instances: map[string]struct{}{node.ID: {}}}
	scope.Paths = bindingPaths(forest, scope)
	return scope, nil
}

func bindingPaths(forest layout.Forest, scope *Scope) []datapath.Path {
	seen := make(map[string]struct{})
	var out []datapath.Path
	for _, node := range forest.Flatten() {
		if !scope.Contains(node.ID) {
			continue
		}
		for _, key := range sortedKeys(node.Bindings) {
			binding := datapath.Normalize(node.Bindings[key])
			if _, dup := seen[binding]; dup || binding == "" {
				continue
			}
			seen[binding] = struct{}{}
			out = append(out, datapath.Parse(binding))
		}
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
