package validation

import "testing"

func TestCanFormBeSaved(t *testing.T) {
	t.Parallel()

	withError := make(Validations)
	withError.Add("page1", "field", SimpleBinding, SeverityError, "bad")
	onlyWarnings := make(Validations)
	onlyWarnings.Add("page1", "field", SimpleBinding, SeverityWarning, "hmm")

	cases := []struct {
		name   string
		result *Result
		mode   SubmitMode
		want   bool
	}{
		{name: "nil result", result: nil, mode: SubmitModeComplete, want: true},
		{name: "type level blocks save", result: &Result{InvalidDataTypes: true}, mode: SubmitModeSave, want: false},
		{name: "errors allowed on save", result: &Result{Validations: withError}, mode: SubmitModeSave, want: true},
		{name: "errors block complete", result: &Result{Validations: withError}, mode: SubmitModeComplete, want: false},
		{name: "warnings do not block", result: &Result{Validations: onlyWarnings}, mode: SubmitModeComplete, want: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CanFormBeSaved(tc.result, tc.mode); got != tc.want {
				t.Fatalf("CanFormBeSaved() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSummaryOrdersEntriesAndFlagsUnmapped(t *testing.T) {
	t.Parallel()

	v := make(Validations)
	v.Add("b", "field", SimpleBinding, SeverityError, "second")
	v.Add("a", Unmapped, "Form.X", SeverityError, "first")
	v.Add("a", "other", SimpleBinding, SeverityWarning, "ignored")

	entries := Summary(v)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %#v", len(entries), entries)
	}
	if entries[0].Message != "first" || !entries[0].Unmapped {
		t.Fatalf("unexpected first entry %#v", entries[0])
	}
	if entries[1].Message != "second" {
		t.Fatalf("unexpected second entry %#v", entries[1])
	}
	if v.Count(SeverityWarning) != 1 {
		t.Fatalf("expected one warning")
	}
	if ParseSeverity("3") != SeverityInfo || ParseSeverity("bogus") != SeverityError {
		t.Fatalf("ParseSeverity mapping unexpected")
	}
}
