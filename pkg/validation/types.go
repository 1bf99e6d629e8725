package validation

import (
	"sort"
	"strings"
)

// Unmapped is the reserved instance id for issues no rendered component owns.
const Unmapped = "unmapped"

// SimpleBinding is the binding key single-value components validate under.
const SimpleBinding = "simpleBinding"

// Severity classifies a validation message.
type Severity int

const (
	SeverityUnspecified Severity = iota
	SeverityError
	SeverityWarning
	SeverityInfo
	SeverityFixed
	SeveritySuccess
)

// String returns the lower-case severity label.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityFixed:
		return "fixed"
	case SeveritySuccess:
		return "success"
	default:
		return "unspecified"
	}
}

// ParseSeverity accepts the labels and numeric codes used by server
// validation payloads (1 error, 2 warning, 3 informational, 4 fixed,
// 5 success). Unknown values map to SeverityError so messages are not lost.
func ParseSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "error", "errors":
		return SeverityError
	case "2", "warning", "warnings":
		return SeverityWarning
	case "3", "info", "informational":
		return SeverityInfo
	case "4", "fixed":
		return SeverityFixed
	case "5", "success":
		return SeveritySuccess
	default:
		return SeverityError
	}
}

// BindingValidation is the per-binding message set of one component instance.
type BindingValidation struct {
	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Info     []string `json:"info,omitempty" yaml:"info,omitempty"`
	Success  []string `json:"success,omitempty" yaml:"success,omitempty"`
	Fixed    []string `json:"fixed,omitempty" yaml:"fixed,omitempty"`
}

// ComponentValidations maps binding key to messages for one instance.
type ComponentValidations map[string]BindingValidation

// LayoutValidations maps qualified instance id to its validations.
type LayoutValidations map[string]ComponentValidations

// Validations maps page id to the page's validations.
type Validations map[string]LayoutValidations

// Result is the outcome of a validation run. InvalidDataTypes records a
// type-level schema violation, which blocks saving even when no message is
// rendered for it.
type Result struct {
	Validations      Validations `json:"validations" yaml:"validations"`
	InvalidDataTypes bool        `json:"invalidDataTypes" yaml:"invalidDataTypes"`
}

// IsEmpty reports whether no list carries a message.
func (b BindingValidation) IsEmpty() bool {
	return len(b.Errors) == 0 && len(b.Warnings) == 0 && len(b.Info) == 0 &&
		len(b.Success) == 0 && len(b.Fixed) == 0
}

// List returns the messages stored for a severity.
func (b BindingValidation) List(sev Severity) []string {
	switch sev {
	case SeverityError:
		return b.Errors
	case SeverityWarning:
		return b.Warnings
	case SeverityInfo:
		return b.Info
	case SeveritySuccess:
		return b.Success
	case SeverityFixed:
		return b.Fixed
	default:
		return nil
	}
}

// With returns a copy of b with message appended to the severity list unless
// already present.
func (b BindingValidation) With(sev Severity, message string) BindingValidation {
	out := b.clone()
	add := func(list []string) []string {
		for _, existing := range list {
			if existing == message {
				return list
			}
		}
		return append(list, message)
	}
	switch sev {
	case SeverityError:
		out.Errors = add(out.Errors)
	case SeverityWarning:
		out.Warnings = add(out.Warnings)
	case SeverityInfo:
		out.Info = add(out.Info)
	case SeveritySuccess:
		out.Success = add(out.Success)
	case SeverityFixed:
		out.Fixed = add(out.Fixed)
	}
	return out
}

func (b BindingValidation) clone() BindingValidation {
	return BindingValidation{
		Errors:   cloneList(b.Errors),
		Warnings: cloneList(b.Warnings),
		Info:     cloneList(b.Info),
		Success:  cloneList(b.Success),
		Fixed:    cloneList(b.Fixed),
	}
}

func cloneList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return append([]string(nil), in...)
}

// Add records one message in place. It exists for passes assembling a fresh
// partial tree; stored trees are combined through Merge instead.
func (v Validations) Add(layoutID, componentID, binding string, sev Severity, message string) {
	message = strings.TrimSpace(message)
	if v == nil || message == "" || sev == SeverityUnspecified {
		return
	}
	if binding == "" {
		binding = SimpleBinding
	}
	page, ok := v[layoutID]
	if !ok {
		page = make(LayoutValidations)
		v[layoutID] = page
	}
	component, ok := page[componentID]
	if !ok {
		component = make(ComponentValidations)
		page[componentID] = component
	}
	component[binding] = component[binding].With(sev, message)
}

// EnsureLayout makes sure a page entry exists, marking it as validated even
// when no messages were produced.
func (v Validations) EnsureLayout(layoutID string) {
	if v == nil {
		return
	}
	if _, ok := v[layoutID]; !ok {
		v[layoutID] = make(LayoutValidations)
	}
}

// Clone returns a deep copy.
func (v Validations) Clone() Validations {
	if v == nil {
		return nil
	}
	out := make(Validations, len(v))
	for layoutID, page := range v {
		out[layoutID] = page.Clone()
	}
	return out
}

// Clone returns a deep copy.
func (l LayoutValidations) Clone() LayoutValidations {
	if l == nil {
		return nil
	}
	out := make(LayoutValidations, len(l))
	for id, component := range l {
		out[id] = component.Clone()
	}
	return out
}

// Clone returns a deep copy.
func (c ComponentValidations) Clone() ComponentValidations {
	if c == nil {
		return nil
	}
	out := make(ComponentValidations, len(c))
	for key, binding := range c {
		out[key] = binding.clone()
	}
	return out
}

// SortedKeys returns the page ids in lexical order.
func (v Validations) SortedKeys() []string {
	keys := make([]string, 0, len(v))
	for key := range v {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// SortedKeys returns the instance ids in lexical order.
func (l LayoutValidations) SortedKeys() []string {
	keys := make([]string, 0, len(l))
	for key := range l {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
