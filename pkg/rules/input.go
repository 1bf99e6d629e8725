package rules

import (
	"time"

	"github.com/goliatone/go-formcheck/pkg/layout"
	"github.com/goliatone/go-formcheck/pkg/messages"
)

// Attachment is one uploaded file of an attachment component.
type Attachment struct {
	ID   string   `json:"id" yaml:"id"`
	Name string   `json:"name,omitempty" yaml:"name,omitempty"`
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Texts resolves message keys and text resource references.
type Texts interface {
	Has(key string) bool
	Text(key string, params map[string]any) string
	Resolve(keyOrText string, params map[string]any) string
}

// Input is the state every pass reads: one page's rendered forest plus the
// form data and attachments, and an optional Scope restricting which
// instances the pass reports on.
type Input struct {
	LayoutID    string
	Forest      layout.Forest
	Data        map[string]any
	Attachments map[string][]Attachment
	Texts       Texts
	Now         func() time.Time
	Scope       *Scope
}

func (in Input) texts() Texts {
	if in.Texts == nil {
		return messages.New()
	}
	return in.Texts
}

func (in Input) now() time.Time {
	if in.Now == nil {
		return time.Now()
	}
	return in.Now()
}

// attachments returns the uploads of an instance. Attachment components
// outside repeating groups may also be keyed by their base id.
func (in Input) attachments(node *layout.Node) []Attachment {
	if list, ok := in.Attachments[node.ID]; ok {
		return list
	}
	return in.Attachments[node.BaseID]
}

// visit calls fn for every visible node in scope.
func (in Input) visit(fn func(*layout.Node)) {
	for _, node := range in.Forest.Flatten() {
		if node.Hidden || node.Component == nil || !in.Scope.Contains(node.ID) {
			continue
		}
		fn(node)
	}
}
