package reindex

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formcheck/pkg/layout"
	"github.com/goliatone/go-formcheck/pkg/validation"
)

const flatPage = `{
  "layout": [
    {"id": "ageField", "type": "Input", "dataModelBindings": {"simpleBinding": "Form.Age"}},
    {"id": "G", "type": "Group", "maxCount": 10, "dataModelBindings": {"group": "Form.G"}, "children": ["name"]},
    {"id": "name", "type": "Input", "dataModelBindings": {"simpleBinding": "Form.G.Name"}}
  ]
}`

const nestedPage = `{
  "layout": [
    {"id": "G", "type": "Group", "maxCount": 10, "dataModelBindings": {"group": "Form.G"}, "children": ["label", "0:H"]},
    {"id": "label", "type": "Input", "dataModelBindings": {"simpleBinding": "Form.G.Label"}},
    {"id": "H", "type": "Group", "maxCount": 10, "dataModelBindings": {"group": "Form.G.H"}, "children": ["item"]},
    {"id": "item", "type": "Input", "dataModelBindings": {"simpleBinding": "Form.G.H.Item"}}
  ]
}`

func parse(t *testing.T, doc string) *layout.Layout {
	t.Helper()
	page, err := layout.Parse([]byte(doc), "page")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return page
}

func errs(messages ...string) validation.ComponentValidations {
	return validation.ComponentValidations{"simpleBinding": {Errors: messages}}
}

func TestRemoveRowShiftsFlatGroup(t *testing.T) {
	t.Parallel()

	page := parse(t, flatPage)
	groups := layout.RepeatingGroups{"G": {Index: 3, DataModelBinding: "Form.G"}}
	in := validation.Validations{
		"page1": {
			"ageField": errs("age"),
			"name-0":   errs("err-0"),
			"name-1":   errs("err-1"),
			"name-2":   errs("err-2"),
			"name-3":   errs("err-3"),
			"G":        errs("group"),
			"G-0":      errs("row-0"),
			"G-1":      errs("row-1"),
			"G-2":      errs("row-2"),
		},
		"page2": {"name-1": errs("other page")},
	}

	got := RemoveRow("G", 1, "page1", page, groups, in)
	want := validation.Validations{
		"page1": {
			"ageField": errs("age"),
			"name-0":   errs("err-0"),
			"name-1":   errs("err-2"),
			"name-2":   errs("err-3"),
			"G":        errs("group"),
			"G-0":      errs("row-0"),
			"G-1":      errs("row-2"),
		},
		"page2": {"name-1": errs("other page")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected validations (-want +got):\n%s", diff)
	}
	if _, ok := in["page1"]["name-3"]; !ok {
		t.Fatalf("input tree must not be mutated")
	}

	state := RemoveGroupRow(page, groups, "G", 1)
	if state["G"].Index != 2 || groups["G"].Index != 3 {
		t.Fatalf("unexpected group state %#v (input %#v)", state, groups)
	}
}

func TestRemoveRowNestedGroup(t *testing.T) {
	t.Parallel()

	page := parse(t, nestedPage)
	groups := layout.RepeatingGroups{
		"G":   {Index: 1, DataModelBinding: "Form.G"},
		"H-0": {Index: 1, BaseGroupID: "H", DataModelBinding: "Form.G.H"},
		"H-1": {Index: 1, BaseGroupID: "H", DataModelBinding: "Form.G.H"},
	}
	in := validation.Validations{"page1": {
		"label-0":  errs("label-0"),
		"label-1":  errs("label-1"),
		"H-0":      errs("group-0"),
		"H-1":      errs("group-1"),
		"item-0-0": errs("err-0-0"),
		"item-0-1": errs("err-0-1"),
		"item-1-0": errs("err-1-0"),
		"item-1-1": errs("err-1-1"),
	}}

	got := RemoveRow("G", 0, "page1", page, groups, in)
	want := validation.Validations{"page1": {
		"label-0":  errs("label-1"),
		"H-0":      errs("group-1"),
		"item-0-0": errs("err-1-0"),
		"item-0-1": errs("err-1-1"),
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected validations (-want +got):\n%s", diff)
	}

	wantGroups := layout.RepeatingGroups{
		"G":   {Index: 0, DataModelBinding: "Form.G"},
		"H-0": {Index: 1, BaseGroupID: "H", DataModelBinding: "Form.G.H"},
	}
	if diff := cmp.Diff(wantGroups, RemoveGroupRow(page, groups, "G", 0)); diff != "" {
		t.Fatalf("unexpected group state (-want +got):\n%s", diff)
	}
}

func TestRemoveRowInsideNestedInstance(t *testing.T) {
	t.Parallel()

	page := parse(t, nestedPage)
	groups := layout.RepeatingGroups{
		"G":   {Index: 1},
		"H-0": {Index: 1, BaseGroupID: "H"},
		"H-1": {Index: 1, BaseGroupID: "H"},
	}
	in := validation.Validations{"page1": {
		"item-0-0": errs("err-0-0"),
		"item-0-1": errs("err-0-1"),
		"item-1-0": errs("err-1-0"),
		"item-1-1": errs("err-1-1"),
	}}

	got := RemoveRow("H-1", 0, "page1", page, groups, in)
	want := validation.Validations{"page1": {
		"item-0-0": errs("err-0-0"),
		"item-0-1": errs("err-0-1"),
		"item-1-0": errs("err-1-1"),
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected validations (-want +got):\n%s", diff)
	}
}

func TestRemoveRowUnknownIsNoop(t *testing.T) {
	t.Parallel()

	page := parse(t, flatPage)
	groups := layout.RepeatingGroups{"G": {Index: 1}}
	in := validation.Validations{"page1": {"name-0": errs("err-0")}}

	for _, tc := range []struct {
		group string
		row   int
	}{{"missing", 0}, {"G", 5}, {"G", -1}, {"ageField", 0}} {
		if diff := cmp.Diff(in, RemoveRow(tc.group, tc.row, "page1", page, groups, in)); diff != "" {
			t.Fatalf("%s/%d: expected no-op (-want +got):\n%s", tc.group, tc.row, diff)
		}
		if diff := cmp.Diff(groups, RemoveGroupRow(page, groups, tc.group, tc.row)); diff != "" {
			t.Fatalf("%s/%d: expected unchanged state (-want +got):\n%s", tc.group, tc.row, diff)
		}
	}
}
