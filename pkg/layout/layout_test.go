package layout

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

const pageYAML = `
id: page1
layout:
  - id: ageField
    type: Input
    required: true
    dataModelBindings:
      simpleBinding: Form.Age
  - id: G
    type: Group
    maxCount: 10
    dataModelBindings:
      group: Form.G
    children: [name, "0:H"]
  - id: name
    type: input
    hidden: "Form.G.Skip == true"
    dataModelBindings:
      simpleBinding: Form.G.Name
  - id: H
    type: Group
    maxCount: 5
    dataModelBindings:
      group: Form.G.H
    children: [item]
  - id: item
    type: Input
    dataModelBindings:
      simpleBinding: Form.G.H.Item
`

func loadFixture(t *testing.T) *Layout {
	t.Helper()
	set, err := LoadFS(fstest.MapFS{
		"layouts/page1.yaml":    {Data: []byte(pageYAML)},
		"layouts/Settings.json": {Data: []byte(`{"pages": {"order": ["page1"]}}`)},
		"layouts/readme.txt":    {Data: []byte("ignored")},
	})
	if err != nil {
		t.Fatalf("LoadFS returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"page1"}, set.Order); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
	page, ok := set.Page("page1")
	if !ok {
		t.Fatalf("page1 not loaded")
	}
	return page
}

func TestLoadFSParsesKindsAndChildren(t *testing.T) {
	t.Parallel()

	page := loadFixture(t)
	name, ok := page.Find("name")
	if !ok || name.Kind != KindInput {
		t.Fatalf("expected lower-case kind to parse as Input, got %#v", name)
	}
	group, _ := page.Find("G")
	if diff := cmp.Diff([]string{"name", "H"}, group.ChildIDs()); diff != "" {
		t.Fatalf("unexpected child ids (-want +got):\n%s", diff)
	}
	var ids []string
	for _, comp := range page.TopLevel() {
		ids = append(ids, comp.ID)
	}
	if diff := cmp.Diff([]string{"ageField", "G"}, ids); diff != "" {
		t.Fatalf("unexpected top level (-want +got):\n%s", diff)
	}
	ancestors := page.RepeatingAncestors("item")
	if len(ancestors) != 2 || ancestors[0].ID != "G" || ancestors[1].ID != "H" {
		t.Fatalf("unexpected ancestors %#v", ancestors)
	}
}

func TestParseRejectsInvalidLayouts(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing id":        `{"layout": [{"type": "Input"}]}`,
		"unknown child":     `{"layout": [{"id": "g", "type": "Group", "children": ["nope"]}]}`,
		"duplicate id":      `{"layout": [{"id": "a", "type": "Input"}, {"id": "a", "type": "Input"}]}`,
		"repeating unbound": `{"layout": [{"id": "g", "type": "Group", "maxCount": 3}]}`,
		"attachment bounds": `{"layout": [{"id": "f", "type": "FileUpload", "minNumberOfAttachments": 3, "maxNumberOfAttachments": 1}]}`,
		"not a document":    `:::`,
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc), name); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	_, err := Parse([]byte(`{"layout": [{"id": "g", "type": "Group", "children": ["nope"]}]}`), "x")
	if !errors.Is(err, ErrUnknownComponent) {
		t.Fatalf("expected ErrUnknownComponent, got %v", err)
	}
}

func TestRepeatingGroupsFromData(t *testing.T) {
	t.Parallel()

	page := loadFixture(t)
	data := map[string]any{
		"Form.G[0].Name":         "a",
		"Form.G[1].Name":         "b",
		"Form.G[1].H[0].Item":    "x",
		"Form.G[1].H[2].Item":    "y",
		"Form.Unrelated[7].Name": "z",
	}

	want := RepeatingGroups{
		"G":   {Index: 1, DataModelBinding: "Form.G"},
		"H-0": {Index: -1, BaseGroupID: "H", DataModelBinding: "Form.G.H"},
		"H-1": {Index: 2, BaseGroupID: "H", DataModelBinding: "Form.G.H"},
	}
	if diff := cmp.Diff(want, RepeatingGroupsFromData(page, data)); diff != "" {
		t.Fatalf("unexpected repeating groups (-want +got):\n%s", diff)
	}
}

func TestRowsAreBoundedByMaxCount(t *testing.T) {
	t.Parallel()

	page := loadFixture(t)
	data := map[string]any{
		"Form.G[0].Name":       "a",
		"Form.G[3000000].Name": "far",
		"Form.G[0].H[4].Item":  "last",
		"Form.G[0].H[5].Item":  "over",
	}

	groups := RepeatingGroupsFromData(page, data)
	want := RepeatingGroups{
		"G":   {Index: 0, DataModelBinding: "Form.G"},
		"H-0": {Index: 4, BaseGroupID: "H", DataModelBinding: "Form.G.H"},
	}
	if diff := cmp.Diff(want, groups); diff != "" {
		t.Fatalf("unexpected repeating groups (-want +got):\n%s", diff)
	}

	forest := Resolve(page, ResolveOptions{
		Data:   data,
		Groups: RepeatingGroups{"G": {Index: 3000000, DataModelBinding: "Form.G"}},
	})
	var rows int
	for _, node := range forest.Flatten() {
		if node.BaseID == "name" {
			rows++
		}
	}
	if rows != 10 {
		t.Fatalf("expected rows capped at maxCount 10, got %d", rows)
	}
}

func TestResolveExpandsRowsAndHiddenRules(t *testing.T) {
	t.Parallel()

	page := loadFixture(t)
	data := map[string]any{
		"Form.G[0].Name":      "a",
		"Form.G[0].Skip":      true,
		"Form.G[1].Name":      "b",
		"Form.G[1].H[0].Item": "x",
	}
	forest := Resolve(page, ResolveOptions{Data: data, Hidden: map[string]bool{"ageField": true}})

	var ids []string
	for _, node := range forest.Flatten() {
		ids = append(ids, node.ID)
	}
	want := []string{"ageField", "G", "name-0", "H-0", "name-1", "H-1", "item-1-0"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("unexpected instance ids (-want +got):\n%s", diff)
	}

	item := forest.Find("item-1-0")
	if item == nil || item.Bindings[BindingSimple] != "Form.G[1].H[0].Item" {
		t.Fatalf("unexpected nested binding %#v", item)
	}
	if item.Row() != 0 {
		t.Fatalf("expected innermost row 0, got %d", item.Row())
	}
	if !forest.Find("ageField").Hidden {
		t.Fatalf("expected host-hidden component to be hidden")
	}
	if !forest.Find("name-0").Hidden || forest.Find("name-1").Hidden {
		t.Fatalf("expected row-scoped hidden rule to hide only row 0")
	}
}

func TestStripPagePrefix(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{"1:child": "child", "child": "child", "a:b": "a:b", " 12: x ": "x"} {
		if got := StripPagePrefix(in); got != want {
			t.Fatalf("StripPagePrefix(%q) = %q, want %q", in, got, want)
		}
	}
	if ParseKind("FILEUPLOADWITHTAG") != KindFileUploadWithTag || ParseKind("Widget") != KindUnknown {
		t.Fatalf("ParseKind mapping unexpected")
	}
}
