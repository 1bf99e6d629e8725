package layout

import (
	"errors"
	"strings"
)

// ErrUnknownComponent is returned when a lookup names a component the layout
// does not define.
var ErrUnknownComponent = errors.New("layout: unknown component")

// Binding keys with special meaning.
const (
	BindingSimple = "simpleBinding"
	BindingGroup  = "group"
	BindingList   = "list"
)

// Component is one component definition in a page layout document. Repeating
// groups list their children by id; rows are expanded at Resolve time.
type Component struct {
	ID                   string            `json:"id" yaml:"id" validate:"required"`
	Kind                 Kind              `json:"type" yaml:"type"`
	DataModelBindings    map[string]string `json:"dataModelBindings,omitempty" yaml:"dataModelBindings,omitempty" validate:"omitempty,dive,keys,required,endkeys,required"`
	TextResourceBindings map[string]string `json:"textResourceBindings,omitempty" yaml:"textResourceBindings,omitempty"`
	Required             bool              `json:"required,omitempty" yaml:"required,omitempty"`
	ReadOnly             bool              `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	Hidden               string            `json:"hidden,omitempty" yaml:"hidden,omitempty"`

	Children []string  `json:"children,omitempty" yaml:"children,omitempty" validate:"omitempty,dive,required"`
	MaxCount int       `json:"maxCount,omitempty" yaml:"maxCount,omitempty" validate:"gte=0"`
	Edit     *EditMode `json:"edit,omitempty" yaml:"edit,omitempty"`

	MinNumberOfAttachments int `json:"minNumberOfAttachments,omitempty" yaml:"minNumberOfAttachments,omitempty" validate:"gte=0"`
	MaxNumberOfAttachments int `json:"maxNumberOfAttachments,omitempty" yaml:"maxNumberOfAttachments,omitempty" validate:"omitempty,gtefield=MinNumberOfAttachments"`

	MinDate string `json:"minDate,omitempty" yaml:"minDate,omitempty"`
	MaxDate string `json:"maxDate,omitempty" yaml:"maxDate,omitempty"`
	Format  string `json:"format,omitempty" yaml:"format,omitempty"`
}

// EditMode carries repeating-group editing options.
type EditMode struct {
	MultiPage bool `json:"multiPage,omitempty" yaml:"multiPage,omitempty"`
}

// IsRepeating reports whether the component is a group whose children are
// replicated per row.
func (c Component) IsRepeating() bool {
	return c.Kind == KindGroup && c.MaxCount > 1
}

// GroupBinding returns the data path the group's rows live under.
func (c Component) GroupBinding() string {
	return c.DataModelBindings[BindingGroup]
}

// ChildIDs returns the children ids with multi-page prefixes (`"1:child"`)
// removed.
func (c Component) ChildIDs() []string {
	if len(c.Children) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.Children))
	for _, raw := range c.Children {
		if id := StripPagePrefix(raw); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// Title returns the text resource key used to name the field in messages.
func (c Component) Title() string {
	if c.TextResourceBindings == nil {
		return ""
	}
	if title := strings.TrimSpace(c.TextResourceBindings["shortName"]); title != "" {
		return title
	}
	return strings.TrimSpace(c.TextResourceBindings["title"])
}

// StripPagePrefix removes the multi-page index from a group child reference.
func StripPagePrefix(raw string) string {
	trimmed := strings.TrimSpace(raw)
	idx := strings.Index(trimmed, ":")
	if idx < 0 {
		return trimmed
	}
	for _, r := range trimmed[:idx] {
		if r < '0' || r > '9' {
			return trimmed
		}
	}
	return strings.TrimSpace(trimmed[idx+1:])
}

// Layout is one page: an id plus its component definitions in document order.
type Layout struct {
	ID         string      `json:"id" yaml:"id"`
	Components []Component `json:"layout" yaml:"layout" validate:"dive"`
}

// Find returns the component definition with the given id.
func (l *Layout) Find(id string) (*Component, bool) {
	if l == nil {
		return nil, false
	}
	for i := range l.Components {
		if l.Components[i].ID == id {
			return &l.Components[i], true
		}
	}
	return nil, false
}

// Parent returns the group that lists id as a child.
func (l *Layout) Parent(id string) (*Component, bool) {
	if l == nil {
		return nil, false
	}
	for i := range l.Components {
		comp := &l.Components[i]
		if comp.Kind != KindGroup {
			continue
		}
		for _, child := range comp.ChildIDs() {
			if child == id {
				return comp, true
			}
		}
	}
	return nil, false
}

// TopLevel returns the components no group claims as a child.
func (l *Layout) TopLevel() []*Component {
	if l == nil {
		return nil
	}
	claimed := make(map[string]struct{})
	for _, comp := range l.Components {
		for _, child := range comp.ChildIDs() {
			claimed[child] = struct{}{}
		}
	}
	var out []*Component
	for i := range l.Components {
		if _, ok := claimed[l.Components[i].ID]; ok {
			continue
		}
		out = append(out, &l.Components[i])
	}
	return out
}

// RepeatingAncestors returns the repeating groups enclosing id, outermost
// first.
func (l *Layout) RepeatingAncestors(id string) []*Component {
	var chain []*Component
	seen := map[string]struct{}{id: {}}
	current := id
	for {
		parent, ok := l.Parent(current)
		if !ok {
			break
		}
		if _, loop := seen[parent.ID]; loop {
			break
		}
		seen[parent.ID] = struct{}{}
		if parent.IsRepeating() {
			chain = append([]*Component{parent}, chain...)
		}
		current = parent.ID
	}
	return chain
}

// Set holds every page of a form.
type Set struct {
	Order []string           `json:"order" yaml:"order"`
	Pages map[string]*Layout `json:"pages" yaml:"pages"`
}

// Page returns the layout for a page id.
func (s *Set) Page(id string) (*Layout, bool) {
	if s == nil || s.Pages == nil {
		return nil, false
	}
	page, ok := s.Pages[id]
	return page, ok
}

// OrderedPages returns pages in Order, followed by any page Order omits.
func (s *Set) OrderedPages() []*Layout {
	if s == nil {
		return nil
	}
	out := make([]*Layout, 0, len(s.Pages))
	seen := make(map[string]struct{}, len(s.Pages))
	for _, id := range s.Order {
		if page, ok := s.Pages[id]; ok {
			out = append(out, page)
			seen[id] = struct{}{}
		}
	}
	for _, id := range sortedPageIDs(s.Pages) {
		if _, ok := seen[id]; ok {
			continue
		}
		out = append(out, s.Pages[id])
	}
	return out
}

// FindComponent searches every page for a component id.
func (s *Set) FindComponent(id string) (*Layout, *Component, bool) {
	for _, page := range s.OrderedPages() {
		if comp, ok := page.Find(id); ok {
			return page, comp, true
		}
	}
	return nil, nil, false
}
