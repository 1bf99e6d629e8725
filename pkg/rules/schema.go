package rules

import (
	"github.com/goliatone/go-formcheck/pkg/attribution"
	"github.com/goliatone/go-formcheck/pkg/datapath"
	"github.com/goliatone/go-formcheck/pkg/validation"
)

const (
	keywordRequired   = "required"
	keyErrorsPrefix   = "validation_errors."
	keyDefaultError   = "validation_errors.default"
	errorMessageField = "errorMessage"
)

// SchemaValidator is the compiled data model the schema pass evaluates
// against. *schemavalidator.Validator satisfies it.
type SchemaValidator interface {
	Model(flat map[string]any) map[string]any
	Validate(rootPath string, data any) []validation.RawIssue
	ValidateAt(path datapath.Path, model map[string]any) []validation.RawIssue
	SchemaPart(pointer string) (map[string]any, bool)
}

// SchemaOptions tunes the schema pass.
type SchemaOptions struct {
	// KeepRequired reports schema `required` violations too. By default they
	// are dropped and the component `required` flag is authoritative.
	KeepRequired bool
}

// SchemaIssues builds the nested model from flat form data and evaluates
// it, either whole or, when scope lists paths, one subtree per path.
func SchemaIssues(v SchemaValidator, data map[string]any, scope *Scope, opts SchemaOptions) []validation.RawIssue {
	if v == nil {
		return nil
	}
	model := v.Model(data)

	var raw []validation.RawIssue
	if scope == nil {
		raw = v.Validate("", model)
	} else {
		seen := make(map[string]struct{})
		for _, path := range scope.Paths {
			for _, issue := range v.ValidateAt(path, model) {
				id := issue.Path + "\x00" + issue.SchemaPath
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				raw = append(raw, issue)
			}
		}
	}

	out := raw[:0]
	for _, issue := range raw {
		if issue.Keyword == keywordRequired && !opts.KeepRequired {
			continue
		}
		out = append(out, issue)
	}
	return out
}

// Schema runs the schema pass once over the form data and attributes the
// issues to every page in pages. Issues on hidden instances, or outside a
// page's scope, are not reported. In a full pass (no page scoped) issues no
// page can attribute are kept under the unmapped instance of every page.
// The data and scope paths of the first page drive the evaluation.
func Schema(v SchemaValidator, opts SchemaOptions, pages ...Input) validation.Result {
	result := validation.Result{Validations: validation.Validations{}}
	if len(pages) == 0 {
		return result
	}
	full := true
	for _, page := range pages {
		result.Validations.EnsureLayout(page.LayoutID)
		if page.Scope != nil {
			full = false
		}
	}

	first := pages[0]
	texts := first.texts()
	issues := SchemaIssues(v, first.Data, first.Scope, opts)

	for _, issue := range issues {
		if issue.IsTypeLevel() {
			result.InvalidDataTypes = true
		}
		message := schemaMessage(texts, v, issue)

		attributed := false
		for _, page := range pages {
			target, ok := attribution.AttributeSchemaIssue(issue, page.Forest)
			if !ok {
				continue
			}
			attributed = true
			if (target.Node != nil && target.Node.Hidden) || !page.Scope.Contains(target.InstanceID) {
				continue
			}
			result.Validations.Add(page.LayoutID, target.InstanceID, target.BindingKey, validation.SeverityError, message)
		}
		if attributed || !full {
			continue
		}
		for _, page := range pages {
			result.Validations.Add(page.LayoutID, validation.Unmapped, issue.Path, validation.SeverityError, message)
		}
	}
	return result
}

// schemaMessage prefers an `errorMessage` declared on the violated schema
// node, either a single text or one per keyword. Otherwise the keyword
// template from the language bundle is used, then the validator's own
// description of the violation, then the bundle's default text.
func schemaMessage(texts Texts, v SchemaValidator, issue validation.RawIssue) string {
	if part, ok := v.SchemaPart(issue.SchemaPath); ok {
		switch override := part[errorMessageField].(type) {
		case string:
			if override != "" {
				return texts.Resolve(override, issue.Params)
			}
		case map[string]any:
			if text, ok := override[issue.Keyword].(string); ok && text != "" {
				return texts.Resolve(text, issue.Params)
			}
		}
	}
	if key := keyErrorsPrefix + issue.Keyword; texts.Has(key) {
		return texts.Text(key, issue.Params)
	}
	if issue.Message != "" {
		return issue.Message
	}
	return texts.Text(keyDefaultError, issue.Params)
}
