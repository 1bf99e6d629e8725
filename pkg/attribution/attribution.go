package attribution

import (
	"sort"

	"github.com/goliatone/go-formcheck/pkg/datapath"
	"github.com/goliatone/go-formcheck/pkg/layout"
	"github.com/goliatone/go-formcheck/pkg/validation"
)

// Target is the rendered element an issue belongs to.
type Target struct {
	// InstanceID is the qualified component-instance id (`field-1-0`).
	InstanceID string
	// BindingKey is the binding the issue's path is attached through.
	BindingKey string
	// Node is the matched node. For row suffixes that do not exist in the
	// forest it is the first node rendered from the same definition.
	Node *layout.Node
}

// AttributeSchemaIssue resolves a schema validator issue to a component
// instance in forest. The issue path is normalised, its row indices become
// the instance suffix, and the index-free path is matched against each
// node's index-free bindings. Indices beyond the node's row depth (items of
// a list binding, `Tags[2]`) do not contribute to the suffix.
func AttributeSchemaIssue(issue validation.RawIssue, forest layout.Forest) (Target, bool) {
	return attributePath(datapath.Parse(issue.Path), forest)
}

// AttributeExternalIssue resolves an externally supplied issue addressed by
// a flat field string. An exact match against a rendered instance id wins
// (attachment components are addressed that way), then a component id that
// is rendered exactly once; otherwise the field is treated as a data path.
func AttributeExternalIssue(issue validation.RawIssue, forest layout.Forest) (Target, bool) {
	field := issue.Field
	if field == "" {
		field = issue.Path
	}
	if field == "" {
		return Target{}, false
	}
	node := forest.Find(field)
	if node == nil {
		node = soleInstance(forest, field)
	}
	if node != nil {
		return Target{InstanceID: node.ID, BindingKey: defaultBindingKey(node), Node: node}, true
	}
	return attributePath(datapath.Parse(field), forest)
}

// soleInstance returns the only node rendered from definition baseID, or nil
// when there is none or more than one.
func soleInstance(forest layout.Forest, baseID string) *layout.Node {
	var found *layout.Node
	for _, node := range forest.Flatten() {
		if node.BaseID != baseID {
			continue
		}
		if found != nil {
			return nil
		}
		found = node
	}
	return found
}

func attributePath(path datapath.Path, forest layout.Forest) (Target, bool) {
	if len(path) == 0 {
		return Target{}, false
	}
	return matchBinding(path, forest)
}

func matchBinding(path datapath.Path, forest layout.Forest) (Target, bool) {
	stripped := path.WithoutIndices().String()
	indices := path.Indices()

	for _, node := range forest.Flatten() {
		key, ok := bindingFor(node, stripped)
		if !ok {
			continue
		}
		depth := len(node.RowIndices)
		if depth > len(indices) {
			depth = len(indices)
		}
		rows := indices[:depth]
		instanceID := node.BaseID + datapath.RowSuffix(rows)
		target := Target{InstanceID: instanceID, BindingKey: key, Node: node}
		if exact := forest.Find(instanceID); exact != nil {
			target.Node = exact
		}
		return target, true
	}
	return Target{}, false
}

// bindingFor returns the binding key of node whose index-free path equals
// stripped. Keys are tried in sorted order so the choice is stable.
func bindingFor(node *layout.Node, stripped string) (string, bool) {
	if node.Component == nil {
		return "", false
	}
	for _, key := range sortedKeys(node.Component.DataModelBindings) {
		if datapath.StripIndices(node.Component.DataModelBindings[key]) == stripped {
			return key, true
		}
	}
	return "", false
}

func defaultBindingKey(node *layout.Node) string {
	if node.Component != nil {
		if _, ok := node.Component.DataModelBindings[layout.BindingSimple]; ok {
			return layout.BindingSimple
		}
		if keys := sortedKeys(node.Component.DataModelBindings); len(keys) == 1 {
			return keys[0]
		}
	}
	return validation.SimpleBinding
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
