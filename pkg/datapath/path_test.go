package datapath

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseCanonicalForms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		input  string
		want   string
		strip  string
		suffix string
	}{
		{name: "plain", input: "Form.Age", want: "Form.Age", strip: "Form.Age"},
		{name: "single index", input: "Group[2].Field", want: "Group[2].Field", strip: "Group.Field", suffix: "-2"},
		{name: "nested index", input: "Group[1].Sub[0].Field", want: "Group[1].Sub[0].Field", strip: "Group.Sub.Field", suffix: "-1-0"},
		{name: "quoted brackets", input: ".Group[3]['Field']", want: "Group[3].Field", strip: "Group.Field", suffix: "-3"},
		{name: "double quotes", input: `$["Form"]["Age"]`, want: "Form.Age", strip: "Form.Age"},
		{name: "empty", input: "  ", want: "", strip: ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := Parse(tc.input)
			if got := path.String(); got != tc.want {
				t.Fatalf("String() = %q, want %q", got, tc.want)
			}
			if got := path.WithoutIndices().String(); got != tc.strip {
				t.Fatalf("WithoutIndices() = %q, want %q", got, tc.strip)
			}
			if got := path.RowSuffix(); got != tc.suffix {
				t.Fatalf("RowSuffix() = %q, want %q", got, tc.suffix)
			}
		})
	}
}

func TestFromPointerTreatsNumericSegmentsAsIndices(t *testing.T) {
	t.Parallel()

	got := FromPointer("#/Group/1/Sub/0/Field")
	want := Path{
		{Name: "Group"},
		{Index: 1, IsIndex: true},
		{Name: "Sub"},
		{Index: 0, IsIndex: true},
		{Name: "Field"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("FromPointer mismatch (-want +got):\n%s", diff)
	}
	if s := FromSegments([]string{"a~1b", "c"}).String(); s != "a/b.c" {
		t.Fatalf("expected escaped segment to decode, got %q", s)
	}
}

func TestParseRowSuffix(t *testing.T) {
	t.Parallel()

	indices, ok := ParseRowSuffix("-3-10")
	if !ok {
		t.Fatalf("expected suffix to parse")
	}
	if diff := cmp.Diff([]int{3, 10}, indices); diff != "" {
		t.Fatalf("indices mismatch (-want +got):\n%s", diff)
	}
	if _, ok := ParseRowSuffix("-a"); ok {
		t.Fatalf("expected non-numeric suffix to be rejected")
	}
	if _, ok := ParseRowSuffix("3"); ok {
		t.Fatalf("expected suffix without separator to be rejected")
	}
}

func TestIndexBinding(t *testing.T) {
	t.Parallel()

	got := IndexBinding("Group.Sub.Field", []string{"Group", "Group.Sub"}, []int{1, 0})
	if got != "Group[1].Sub[0].Field" {
		t.Fatalf("unexpected nested binding %q", got)
	}
	got = IndexBinding("Other.Field", []string{"Group"}, []int{4})
	if got != "Other.Field" {
		t.Fatalf("expected unrelated binding to stay index-free, got %q", got)
	}
}
