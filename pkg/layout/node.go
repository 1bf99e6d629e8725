package layout

import (
	"github.com/goliatone/go-formcheck/pkg/datapath"
	"github.com/goliatone/go-formcheck/pkg/layout/expr"
)

// Node is one rendered component instance. ID is the qualified instance id
// (`field`, `field-2`, `field-1-0`); BaseID is the definition id. Bindings
// carry the row-indexed data paths of this instance. RowIndices lists the
// rows of every enclosing repeating group, outermost first.
type Node struct {
	ID         string
	BaseID     string
	Component  *Component
	Bindings   map[string]string
	RowIndices []int
	Hidden     bool
	Children   []*Node
}

// Kind returns the component kind.
func (n *Node) Kind() Kind {
	if n == nil || n.Component == nil {
		return KindUnknown
	}
	return n.Component.Kind
}

// Row returns the innermost row index, or -1 outside repeating groups.
func (n *Node) Row() int {
	if n == nil || len(n.RowIndices) == 0 {
		return -1
	}
	return n.RowIndices[len(n.RowIndices)-1]
}

// Walk visits n and every descendant depth-first, stopping a branch when fn
// returns false.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Flatten returns n and its descendants in depth-first order.
func (n *Node) Flatten() []*Node {
	var out []*Node
	n.Walk(func(node *Node) bool {
		out = append(out, node)
		return true
	})
	return out
}

// Find returns the node with the given qualified instance id.
func (n *Node) Find(instanceID string) *Node {
	var found *Node
	n.Walk(func(node *Node) bool {
		if found != nil {
			return false
		}
		if node.ID == instanceID {
			found = node
			return false
		}
		return true
	})
	return found
}

// Forest is the rendered node tree of one page.
type Forest []*Node

// Flatten returns every node of the forest depth-first.
func (f Forest) Flatten() []*Node {
	var out []*Node
	for _, root := range f {
		out = append(out, root.Flatten()...)
	}
	return out
}

// Find returns the node with the given qualified instance id.
func (f Forest) Find(instanceID string) *Node {
	for _, root := range f {
		if found := root.Find(instanceID); found != nil {
			return found
		}
	}
	return nil
}

// ResolveOptions carries the collaborator state Resolve expands a layout with.
type ResolveOptions struct {
	// Groups holds row metadata; when nil it is derived from Data.
	Groups RepeatingGroups
	// Data is the flat form data used for hidden rules and row derivation.
	Data map[string]any
	// Hidden lists component or instance ids the host has hidden.
	Hidden map[string]bool
	// Evaluator evaluates `hidden` rules; defaults to expr.New().
	Evaluator *expr.Evaluator
}

// Resolve expands the component definitions of a page into its rendered
// node forest: repeating groups get one child set per existing row, bindings
// receive row indices, and hidden state is inherited from enclosing groups.
// Rules that fail to evaluate leave the component visible.
func Resolve(l *Layout, opts ResolveOptions) Forest {
	if l == nil {
		return nil
	}
	groups := opts.Groups
	if groups == nil {
		groups = RepeatingGroupsFromData(l, opts.Data)
	}
	evaluator := opts.Evaluator
	if evaluator == nil {
		evaluator = expr.New()
	}

	r := resolver{layout: l, groups: groups, data: opts.Data, hidden: opts.Hidden, eval: evaluator}
	var forest Forest
	for _, comp := range l.TopLevel() {
		forest = append(forest, r.build(comp, nil, nil, false, map[string]struct{}{}))
	}
	return forest
}

type resolver struct {
	layout *Layout
	groups RepeatingGroups
	data   map[string]any
	hidden map[string]bool
	eval   *expr.Evaluator
}

func (r resolver) build(comp *Component, indices []int, groupBindings []string, parentHidden bool, path map[string]struct{}) *Node {
	node := &Node{
		ID:         comp.ID + datapath.RowSuffix(indices),
		BaseID:     comp.ID,
		Component:  comp,
		RowIndices: append([]int(nil), indices...),
	}
	if len(comp.DataModelBindings) > 0 {
		node.Bindings = make(map[string]string, len(comp.DataModelBindings))
		for key, binding := range comp.DataModelBindings {
			node.Bindings[key] = datapath.IndexBinding(binding, groupBindings, indices)
		}
	}
	node.Hidden = parentHidden || r.hidden[comp.ID] || r.hidden[node.ID] || r.evalHidden(comp, indices, groupBindings)

	if comp.Kind != KindGroup {
		return node
	}
	if _, cycle := path[comp.ID]; cycle {
		return node
	}
	path[comp.ID] = struct{}{}
	defer delete(path, comp.ID)

	if !comp.IsRepeating() {
		for _, childID := range comp.ChildIDs() {
			if child, ok := r.layout.Find(childID); ok {
				node.Children = append(node.Children, r.build(child, indices, groupBindings, node.Hidden, path))
			}
		}
		return node
	}

	nextBindings := append(append([]string(nil), groupBindings...), comp.GroupBinding())
	rows := rowLimit(comp, r.groups.Rows(node.ID))
	for row := 0; row < rows; row++ {
		rowIndices := append(append([]int(nil), indices...), row)
		for _, childID := range comp.ChildIDs() {
			if child, ok := r.layout.Find(childID); ok {
				node.Children = append(node.Children, r.build(child, rowIndices, nextBindings, node.Hidden, path))
			}
		}
	}
	return node
}

func (r resolver) evalHidden(comp *Component, indices []int, groupBindings []string) bool {
	if comp.Hidden == "" {
		return false
	}
	hidden, err := r.eval.Eval(comp.Hidden, expr.Context{
		Values: r.data,
		Resolve: func(identifier string) string {
			if len(indices) == 0 || len(datapath.Parse(identifier).Indices()) > 0 {
				return identifier
			}
			return datapath.IndexBinding(identifier, groupBindings, indices)
		},
	})
	if err != nil {
		return false
	}
	return hidden
}
