package engine

import (
	"github.com/goliatone/go-formcheck/pkg/layout"
	"github.com/goliatone/go-formcheck/pkg/rules"
	"github.com/goliatone/go-formcheck/pkg/validation"
)

// State is the form snapshot a run validates.
type State struct {
	// TypeID names the data model in the validator cache. Empty skips the
	// schema pass.
	TypeID string
	// Layouts holds every page of the form.
	Layouts *layout.Set
	// Data is the flat form data keyed by binding path.
	Data map[string]any
	// Groups is the repeating-group state. When nil it is derived from Data
	// per page.
	Groups layout.RepeatingGroups
	// Hidden lists component or instance ids hidden by the host.
	Hidden map[string]bool
	// Attachments lists uploads per attachment component instance.
	Attachments map[string][]rules.Attachment
	// CurrentPage is the page partial runs report under.
	CurrentPage string
	// CurrentPageOnly limits ValidateForm to CurrentPage.
	CurrentPageOnly bool
	// Previous is the stored validation tree. Partial runs mark its messages
	// for the re-validated instances as fixed when they no longer apply.
	Previous validation.Validations
}

func (s State) groupsFor(page *layout.Layout) layout.RepeatingGroups {
	if s.Groups != nil {
		return s.Groups
	}
	return layout.RepeatingGroupsFromData(page, s.Data)
}
