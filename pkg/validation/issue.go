package validation

// RawIssue is one finding reported either by the schema validator or by an
// external (server-side) validation source.
//
// Schema issues carry Path (canonical binding form, `Group[0].Field`),
// Keyword, Params, and SchemaPath. External issues carry Field, Severity,
// Description, and optionally Code; they never include schema locations.
type RawIssue struct {
	Path       string         `json:"path,omitempty"`
	Keyword    string         `json:"keyword,omitempty"`
	Params     map[string]any `json:"params,omitempty"`
	SchemaPath string         `json:"schemaPath,omitempty"`
	Message    string         `json:"message,omitempty"`

	Field       string   `json:"field,omitempty"`
	Severity    Severity `json:"severity,omitempty"`
	Description string   `json:"description,omitempty"`
	Code        string   `json:"code,omitempty"`
}

// TypeLevelKeywords lists schema keywords whose violation means the value
// cannot round-trip through the data model's type system.
var TypeLevelKeywords = map[string]struct{}{
	"type":    {},
	"format":  {},
	"maximum": {},
}

// IsTypeLevel reports whether the issue is a type-level violation.
func (i RawIssue) IsTypeLevel() bool {
	_, ok := TypeLevelKeywords[i.Keyword]
	return ok
}
