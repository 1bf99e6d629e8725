package validation

import "sort"

// SubmitMode states what the user is trying to do with the form.
type SubmitMode string

const (
	// SubmitModeSave is a plain save; only type-level problems block it.
	SubmitModeSave SubmitMode = ""
	// SubmitModeComplete is a submit attempt; any error message blocks it.
	SubmitModeComplete SubmitMode = "Complete"
)

// CanFormBeSaved reports whether the data may be persisted. A type-level
// violation always blocks; in SubmitModeComplete any non-empty error list
// anywhere in the tree (including the unmapped bucket) blocks as well.
func CanFormBeSaved(result *Result, mode SubmitMode) bool {
	if result == nil {
		return true
	}
	if result.InvalidDataTypes {
		return false
	}
	if mode != SubmitModeComplete {
		return true
	}
	return !result.Validations.HasErrors()
}

// HasErrors reports whether any binding carries an error message.
func (v Validations) HasErrors() bool {
	for _, page := range v {
		for _, component := range page {
			for _, binding := range component {
				if len(binding.Errors) > 0 {
					return true
				}
			}
		}
	}
	return false
}

// Count returns the number of messages stored for sev.
func (v Validations) Count(sev Severity) int {
	total := 0
	for _, page := range v {
		for _, component := range page {
			for _, binding := range component {
				total += len(binding.List(sev))
			}
		}
	}
	return total
}

// SummaryEntry is one message in the flattened, form-level error summary.
type SummaryEntry struct {
	Layout    string   `json:"layout"`
	Component string   `json:"component"`
	Binding   string   `json:"binding"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	Unmapped  bool     `json:"unmapped,omitempty"`
}

// Summary flattens every message of the requested severities, ordered by
// page, instance id, and binding key. Passing no severities selects errors.
func Summary(v Validations, severities ...Severity) []SummaryEntry {
	if len(severities) == 0 {
		severities = []Severity{SeverityError}
	}

	var out []SummaryEntry
	for _, layoutID := range v.SortedKeys() {
		page := v[layoutID]
		for _, componentID := range page.SortedKeys() {
			component := page[componentID]
			bindings := make([]string, 0, len(component))
			for key := range component {
				bindings = append(bindings, key)
			}
			sort.Strings(bindings)
			for _, key := range bindings {
				for _, sev := range severities {
					for _, message := range component[key].List(sev) {
						out = append(out, SummaryEntry{
							Layout:    layoutID,
							Component: componentID,
							Binding:   key,
							Severity:  sev,
							Message:   message,
							Unmapped:  componentID == Unmapped,
						})
					}
				}
			}
		}
	}
	return out
}
