package formcheck

import (
	"context"
	"io/fs"
	"sort"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formcheck/pkg/engine"
	"github.com/goliatone/go-formcheck/pkg/validation"
)

func TestLocalesFSContainsBundles(t *testing.T) {
	t.Parallel()

	data, err := fs.ReadFile(LocalesFS(), "en.yaml")
	if err != nil {
		t.Fatalf("expected en bundle to be readable: %v", err)
	}
	if !strings.Contains(string(data), "error_required") {
		t.Fatalf("expected en bundle to define error_required")
	}
}

func TestValidateFormFromFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"layouts/page1.yaml": {Data: []byte(`
layout:
  - id: ageField
    type: Input
    dataModelBindings:
      simpleBinding: Form.Age
`)},
		"models/form.schema.json": {Data: []byte(`{"properties": {"Form": {"properties": {"Age": {"type": "integer"}}}}}`)},
	}

	layoutsFS, _ := fs.Sub(fsys, "layouts")
	layouts, err := LoadLayouts(layoutsFS)
	if err != nil {
		t.Fatalf("LoadLayouts returned error: %v", err)
	}
	cache := NewCache()
	ids, err := LoadDataModels(context.Background(), fsys, "models", cache)
	if err != nil {
		t.Fatalf("LoadDataModels returned error: %v", err)
	}
	sort.Strings(ids)
	if diff := cmp.Diff([]string{"form"}, ids); diff != "" {
		t.Fatalf("unexpected type ids (-want +got):\n%s", diff)
	}

	res, err := ValidateForm(context.Background(), State{
		TypeID:  "form",
		Layouts: layouts,
		Data:    map[string]any{"Form.Age": "old"},
	}, engine.WithCache(cache))
	if err != nil {
		t.Fatalf("ValidateForm returned error: %v", err)
	}
	if !res.InvalidDataTypes || CanFormBeSaved(res, validation.SubmitModeSave) {
		t.Fatalf("a type-level violation must block saving: %#v", res)
	}
	if got := res.Validations["page1"]["ageField"]["simpleBinding"].Errors; len(got) != 1 {
		t.Fatalf("expected one error on ageField, got %#v", res.Validations)
	}
}
