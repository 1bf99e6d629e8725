package schemavalidator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-formcheck/pkg/datapath"
	"github.com/goliatone/go-formcheck/pkg/schema"
	"github.com/goliatone/go-formcheck/pkg/validation"
)

const resourceBase = "https://formcheck.invalid/types/"

var printer = message.NewPrinter(language.English)

type compileOptions struct {
	assertFormat    bool
	validateOpenAPI bool
}

// Validator evaluates form data against one compiled data model. Evaluation
// is safe for concurrent use.
type Validator struct {
	typeID   string
	doc      schema.Document
	resource string
	rootPath string

	mu       sync.Mutex
	compiler *jsonschema.Compiler
	compiled map[string]*jsonschema.Schema
}

func compile(ctx context.Context, typeID string, doc schema.Document, opts compileOptions) (*Validator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body := doc.Body()
	if doc.IsOpenAPI() {
		lifted, err := liftOpenAPI(ctx, doc, opts.validateOpenAPI)
		if err != nil {
			return nil, &CompileError{TypeID: typeID, Location: doc.Location(), Err: err}
		}
		body = lifted
	}

	compiler := jsonschema.NewCompiler()
	switch doc.Dialect() {
	case schema.DialectDraft2020:
		compiler.DefaultDraft(jsonschema.Draft2020)
	case schema.DialectDraft4:
		compiler.DefaultDraft(jsonschema.Draft4)
	default:
		compiler.DefaultDraft(jsonschema.Draft7)
	}
	if opts.assertFormat {
		compiler.AssertFormat()
	}

	resource := resourceBase + url.PathEscape(typeID) + ".json"
	if err := compiler.AddResource(resource, body); err != nil {
		return nil, &CompileError{TypeID: typeID, Location: doc.Location(), Err: err}
	}

	v := &Validator{
		typeID:   typeID,
		doc:      doc,
		resource: resource,
		rootPath: doc.RootElementPath(),
		compiler: compiler,
		compiled: make(map[string]*jsonschema.Schema),
	}
	if _, err := v.schemaFor(v.rootPath); err != nil {
		return nil, &CompileError{TypeID: typeID, Location: doc.Location(), Err: err}
	}
	return v, nil
}

// TypeID returns the data type id the validator was compiled for.
func (v *Validator) TypeID() string { return v.typeID }

// Document returns the source document.
func (v *Validator) Document() schema.Document { return v.doc }

// Dialect returns the draft the data model compiled under.
func (v *Validator) Dialect() schema.Dialect { return v.doc.Dialect() }

// RootElementPath returns the pointer fragment of the form data root schema.
func (v *Validator) RootElementPath() string { return v.rootPath }

// SchemaPart returns the schema node at a pointer fragment. Keyword schema
// paths reported on issues (`#/.../minimum`) resolve to the schema owning
// the keyword.
func (v *Validator) SchemaPart(pointer string) (map[string]any, bool) {
	if node, ok := v.doc.Part(pointer); ok {
		return node, true
	}
	trimmed := strings.TrimSuffix(pointer, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return v.doc.Part(trimmed[:idx])
	}
	return nil, false
}

// SchemaAt returns the sub-schema describing a data path below the root
// element.
func (v *Validator) SchemaAt(path datapath.Path) (map[string]any, bool) {
	return v.doc.SchemaAt(v.rootPath, path)
}

func (v *Validator) schemaFor(rootPath string) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if sch, ok := v.compiled[rootPath]; ok {
		return sch, nil
	}
	loc := v.resource
	if fragment := strings.TrimPrefix(rootPath, "#"); fragment != "" {
		loc += "#" + fragment
	}
	sch, err := v.compiler.Compile(loc)
	if err != nil {
		return nil, err
	}
	v.compiled[rootPath] = sch
	return sch, nil
}

// Validate evaluates data (the nested form model) against the schema at
// rootPath, or the root element when rootPath is empty, and returns one
// RawIssue per leaf violation, sorted by path. It never fails: a root that
// does not compile or data that cannot be encoded yields no issues.
func (v *Validator) Validate(rootPath string, data any) []validation.RawIssue {
	if rootPath == "" {
		rootPath = v.rootPath
	}
	sch, err := v.schemaFor(rootPath)
	if err != nil {
		return nil
	}
	instance, err := normalizeInstance(data)
	if err != nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if err := sch.Validate(instance); !errors.As(err, &verr) {
		return nil
	}

	var issues []validation.RawIssue
	collectLeaves(verr, func(leaf *jsonschema.ValidationError) {
		issues = append(issues, toIssues(leaf)...)
	})
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Path != issues[j].Path {
			return issues[i].Path < issues[j].Path
		}
		return issues[i].Keyword < issues[j].Keyword
	})
	return issues
}

func normalizeInstance(data any) (any, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
}

func collectLeaves(verr *jsonschema.ValidationError, fn func(*jsonschema.ValidationError)) {
	if verr == nil {
		return
	}
	if len(verr.Causes) == 0 {
		fn(verr)
		return
	}
	for _, cause := range verr.Causes {
		collectLeaves(cause, fn)
	}
}

func toIssues(leaf *jsonschema.ValidationError) []validation.RawIssue {
	path := datapath.FromSegments(leaf.InstanceLocation)
	keyword := ""
	if kp := leaf.ErrorKind.KeywordPath(); len(kp) > 0 {
		keyword = kp[len(kp)-1]
	}
	schemaPath := leaf.SchemaURL
	if idx := strings.Index(schemaPath, "#"); idx >= 0 {
		schemaPath = schemaPath[idx:]
	} else {
		schemaPath = "#"
	}
	if keyword != "" && !strings.HasSuffix(schemaPath, "/"+keyword) {
		schemaPath = strings.TrimSuffix(schemaPath, "/") + "/" + keyword
	}

	base := validation.RawIssue{
		Path:       path.String(),
		Keyword:    keyword,
		Params:     params(leaf.ErrorKind),
		SchemaPath: schemaPath,
		Message:    leaf.ErrorKind.LocalizedString(printer),
	}

	// One issue per missing property, addressed at the property itself.
	if missing, ok := base.Params["missingProperties"].([]string); ok && keyword == "required" {
		out := make([]validation.RawIssue, 0, len(missing))
		for _, name := range missing {
			issue := base
			issue.Path = datapath.Join(base.Path, name)
			issue.Params = map[string]any{"missingProperty": name}
			out = append(out, issue)
		}
		return out
	}
	return []validation.RawIssue{base}
}

// ValidateAt evaluates only the part of model at path against the
// sub-schema describing it, and reports issues with full data paths. When
// the sub-schema cannot be located the whole model is evaluated and issues
// outside path are discarded. A path absent from model yields no issues.
func (v *Validator) ValidateAt(path datapath.Path, model map[string]any) []validation.RawIssue {
	if len(path) == 0 {
		return v.Validate("", model)
	}
	pointer, ok := v.doc.PointerAt(v.rootPath, path)
	if !ok {
		return withinPath(v.Validate("", model), path)
	}
	value, present := lookupModel(model, path)
	if !present {
		return nil
	}
	issues := v.Validate(pointer, value)
	for i := range issues {
		full := append(append(datapath.Path(nil), path...), datapath.Parse(issues[i].Path)...)
		issues[i].Path = full.String()
	}
	return issues
}

func withinPath(issues []validation.RawIssue, path datapath.Path) []validation.RawIssue {
	prefix := path.String()
	out := issues[:0]
	for _, issue := range issues {
		if issue.Path == prefix || strings.HasPrefix(issue.Path, prefix+".") || strings.HasPrefix(issue.Path, prefix+"[") {
			out = append(out, issue)
		}
	}
	return out
}

func lookupModel(model map[string]any, path datapath.Path) (any, bool) {
	var current any = model
	for _, token := range path {
		if token.IsIndex {
			list, ok := current.([]any)
			if !ok || token.Index < 0 || token.Index >= len(list) {
				return nil, false
			}
			current = list[token.Index]
			continue
		}
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := obj[token.Name]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}
