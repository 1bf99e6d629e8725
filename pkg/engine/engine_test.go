package engine

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-formcheck/pkg/layout"
	"github.com/goliatone/go-formcheck/pkg/metrics"
	"github.com/goliatone/go-formcheck/pkg/schema"
	"github.com/goliatone/go-formcheck/pkg/schemavalidator"
	"github.com/goliatone/go-formcheck/pkg/validation"
)

const formSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "Form": {
      "type": "object",
      "properties": {
        "Name": {"type": "string"},
        "Age": {"type": "integer", "minimum": 0},
        "G": {"type": "array", "items": {"type": "object", "properties": {"Name": {"type": "string", "minLength": 2}}}}
      }
    }
  }
}`

func fixtureLayouts(t *testing.T) *layout.Set {
	t.Helper()
	set, err := layout.LoadFS(fstest.MapFS{
		"Settings.json": {Data: []byte(`{"pages": {"order": ["page1", "page2"]}}`)},
		"page1.json": {Data: []byte(`{"layout": [
			{"id": "ageField", "type": "Input", "required": true, "textResourceBindings": {"title": "Age"}, "dataModelBindings": {"simpleBinding": "Form.Age"}},
			{"id": "G", "type": "Group", "maxCount": 5, "dataModelBindings": {"group": "Form.G"}, "children": ["rowName"]},
			{"id": "rowName", "type": "Input", "required": true, "textResourceBindings": {"title": "Row name"}, "dataModelBindings": {"simpleBinding": "Form.G.Name"}}
		]}`)},
		"page2.json": {Data: []byte(`{"layout": [
			{"id": "nameField", "type": "Input", "required": true, "textResourceBindings": {"title": "Name"}, "dataModelBindings": {"simpleBinding": "Form.Name"}}
		]}`)},
	})
	if err != nil {
		t.Fatalf("LoadFS returned error: %v", err)
	}
	return set
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	cache := schemavalidator.NewCache()
	cache.Register("form", schema.MustNewDocument(schema.SourceInline("form"), []byte(formSchema)))
	return New(append([]Option{WithCache(cache)}, opts...)...)
}

func TestValidateFormEndToEnd(t *testing.T) {
	t.Parallel()

	collector := metrics.NewCollector(prometheus.NewRegistry())
	e := newEngine(t, WithMetrics(collector))
	state := State{
		TypeID:  "form",
		Layouts: fixtureLayouts(t),
		Data:    map[string]any{"Form.Age": "-3", "Form.Name": "Kari"},
	}

	got, err := e.ValidateForm(context.Background(), state)
	if err != nil {
		t.Fatalf("ValidateForm returned error: %v", err)
	}
	want := validation.Validations{
		"page1": {"ageField": {"simpleBinding": {Errors: []string{"Value must be at least 0"}}}},
		"page2": {},
	}
	if diff := cmp.Diff(want, got.Validations); diff != "" {
		t.Fatalf("unexpected validations (-want +got):\n%s", diff)
	}
	if got.InvalidDataTypes {
		t.Fatalf("out-of-range value must not be a type-level violation")
	}
	if validation.CanFormBeSaved(&got, validation.SubmitModeComplete) {
		t.Fatalf("errors must block completion")
	}
}

func TestValidateFormCurrentPageOnly(t *testing.T) {
	t.Parallel()

	got, err := newEngine(t).ValidateForm(context.Background(), State{
		TypeID:          "form",
		Layouts:         fixtureLayouts(t),
		Data:            map[string]any{"Form.Age": "4"},
		CurrentPage:     "page2",
		CurrentPageOnly: true,
	})
	if err != nil {
		t.Fatalf("ValidateForm returned error: %v", err)
	}
	want := validation.Validations{
		"page2": {"nameField": {"simpleBinding": {Errors: []string{"You have to fill out name."}}}},
	}
	if diff := cmp.Diff(want, got.Validations); diff != "" {
		t.Fatalf("unexpected validations (-want +got):\n%s", diff)
	}
}

func TestValidateGroupRestrictsToSubtree(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	state := State{
		TypeID:      "form",
		Layouts:     fixtureLayouts(t),
		CurrentPage: "page1",
		Data:        map[string]any{"Form.Age": "-3", "Form.G[0].Name": "x", "Form.G[1].Name": ""},
	}

	row := 1
	got, err := e.ValidateGroup(context.Background(), state, "G", &row)
	if err != nil {
		t.Fatalf("ValidateGroup returned error: %v", err)
	}
	want := validation.Validations{"page1": {
		"rowName-1": {"simpleBinding": {Errors: []string{"You have to fill out row name."}}},
	}}
	if diff := cmp.Diff(want, got.Validations); diff != "" {
		t.Fatalf("unexpected row validations (-want +got):\n%s", diff)
	}

	got, err = e.ValidateGroup(context.Background(), state, "G", nil)
	if err != nil {
		t.Fatalf("ValidateGroup returned error: %v", err)
	}
	want = validation.Validations{"page1": {
		"rowName-0": {"simpleBinding": {Errors: []string{"Use at least 2 characters"}}},
		"rowName-1": {"simpleBinding": {Errors: []string{"You have to fill out row name."}}},
	}}
	if diff := cmp.Diff(want, got.Validations); diff != "" {
		t.Fatalf("unexpected group validations (-want +got):\n%s", diff)
	}

	if _, err := e.ValidateGroup(context.Background(), state, "nope", nil); !errors.Is(err, layout.ErrUnknownComponent) {
		t.Fatalf("expected ErrUnknownComponent, got %v", err)
	}
}

func TestValidateComponentClearsFixedMessages(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	store := NewStore()
	state := State{
		TypeID:      "form",
		Layouts:     fixtureLayouts(t),
		CurrentPage: "page1",
		Data:        map[string]any{"Form.Age": "-3", "Form.Name": "Kari"},
	}
	full, err := e.ValidateForm(context.Background(), state)
	if err != nil {
		t.Fatalf("ValidateForm returned error: %v", err)
	}
	store.Replace(full)

	state.Data = map[string]any{"Form.Age": "7", "Form.Name": "Kari"}
	state.Previous = store.Result().Validations
	partial, err := e.ValidateComponent(context.Background(), state, "ageField")
	if err != nil {
		t.Fatalf("ValidateComponent returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"Value must be at least 0"}, partial.Validations["page1"]["ageField"]["simpleBinding"].Fixed); diff != "" {
		t.Fatalf("unexpected fixed list (-want +got):\n%s", diff)
	}

	merged := store.Merge(partial)
	if diff := cmp.Diff(validation.Validations{"page1": {}, "page2": {}}, merged.Validations); diff != "" {
		t.Fatalf("unexpected stored validations (-want +got):\n%s", diff)
	}
}

func TestMapServerIssuesIntoStore(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	store := NewStore()
	state := State{Layouts: fixtureLayouts(t)}

	mapped := e.MapServerIssues(state, []validation.RawIssue{
		{Field: "Form.Name", Severity: validation.SeverityError, Description: "Name is taken"},
		{Field: "Form.Other", Severity: validation.SeverityWarning, Description: "Check other"},
	})
	got := store.MergeValidations(mapped)

	want := validation.Validations{
		"page1": {validation.Unmapped: {"Form.Other": {Warnings: []string{"Check other"}}}},
		"page2": {
			"nameField":         {"simpleBinding": {Errors: []string{"Name is taken"}}},
			validation.Unmapped: {"Form.Other": {Warnings: []string{"Check other"}}},
		},
	}
	if diff := cmp.Diff(want, got.Validations); diff != "" {
		t.Fatalf("unexpected validations (-want +got):\n%s", diff)
	}
	if !validation.CanFormBeSaved(&got, validation.SubmitModeSave) {
		t.Fatalf("server errors must not block a plain save")
	}
}

func TestStoreRemoveRow(t *testing.T) {
	t.Parallel()

	layouts := fixtureLayouts(t)
	page, _ := layouts.Page("page1")
	store := NewStore()
	store.Replace(validation.Result{Validations: validation.Validations{"page1": {
		"rowName-0": {"simpleBinding": {Errors: []string{"err-0"}}},
		"rowName-1": {"simpleBinding": {Errors: []string{"err-1"}}},
	}}})

	groups := store.RemoveRow("G", 0, page, layout.RepeatingGroups{"G": {Index: 1, DataModelBinding: "Form.G"}})
	if groups["G"].Index != 0 {
		t.Fatalf("unexpected group state %#v", groups)
	}
	want := validation.Validations{"page1": {"rowName-0": {"simpleBinding": {Errors: []string{"err-1"}}}}}
	if diff := cmp.Diff(want, store.Result().Validations); diff != "" {
		t.Fatalf("unexpected validations (-want +got):\n%s", diff)
	}
}

func TestValidateFormErrors(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	state := State{TypeID: "missing", Layouts: fixtureLayouts(t)}
	if _, err := e.ValidateForm(context.Background(), state); !errors.Is(err, schemavalidator.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	state.TypeID = "form"
	if _, err := e.ValidateForm(ctx, state); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
