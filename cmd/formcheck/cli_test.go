package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formcheck/pkg/layout"
	"github.com/goliatone/go-formcheck/pkg/metrics"
	"github.com/goliatone/go-formcheck/pkg/validation"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"layouts/Settings.json": `{"pages": {"order": ["page1"]}}`,
		"layouts/page1.json": `{"layout": [
			{"id": "ageField", "type": "Input", "required": true, "textResourceBindings": {"title": "Age"}, "dataModelBindings": {"simpleBinding": "Form.Age"}}
		]}`,
		"models/form.schema.json": `{"$schema": "http://json-schema.org/draft-07/schema#", "type": "object",
			"properties": {"Form": {"type": "object", "properties": {"Age": {"type": "integer", "minimum": 0}}}}}`,
		"data.yaml": "Form:\n  Age: -2\n",
	})
	return dir
}

func TestValidateWorkspaceText(t *testing.T) {
	t.Parallel()

	dir := fixtureDir(t)
	cfg := Config{
		Layouts: filepath.Join(dir, "layouts"),
		Models:  filepath.Join(dir, "models"),
		Data:    filepath.Join(dir, "data.yaml"),
		Locale:  "en",
		Output:  "text",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ws, err := loadWorkspace(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("loadWorkspace returned error: %v", err)
	}
	if ws.state.TypeID != "form" {
		t.Fatalf("expected the only model to be selected, got %q", ws.state.TypeID)
	}
	if diff := cmp.Diff(map[string]any{"Form.Age": -2}, ws.state.Data); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}

	result, err := ws.engine.ValidateForm(context.Background(), ws.state)
	if err != nil {
		t.Fatalf("ValidateForm returned error: %v", err)
	}
	var buf bytes.Buffer
	if err := printResult(&buf, "text", result, false); err != nil {
		t.Fatalf("printResult returned error: %v", err)
	}
	want := "error\tpage1\tageField.simpleBinding\tValue must be at least 0\n1 error(s)\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestPrintResultJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := printResult(&buf, "json", resultFixture(), false); err != nil {
		t.Fatalf("printResult returned error: %v", err)
	}
	if !strings.Contains(buf.String(), `"invalidDataTypes": true`) {
		t.Fatalf("expected the type-level flag in JSON output, got %s", buf.String())
	}
}

func TestRelevantEvents(t *testing.T) {
	t.Parallel()

	targets := watchTargets(Config{Layouts: "forms/layouts", Models: "forms/models", Data: "forms/data.yaml"})
	cases := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "forms/layouts/page1.json", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "forms/layouts/page1.json", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "forms/layouts/notes.txt", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "forms/data.yaml", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "forms/other.yaml", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "elsewhere/page1.json", Op: fsnotify.Write}, false},
	}
	for _, tc := range cases {
		if got := relevant(tc.event, targets); got != tc.want {
			t.Fatalf("relevant(%s %s) = %v, want %v", tc.event.Op, tc.event.Name, got, tc.want)
		}
	}
}

type scriptedPrompt struct {
	selects []int
	ints    []int
}

func (s *scriptedPrompt) Select(_ context.Context, _ string, _ []string) (int, error) {
	next := s.selects[0]
	s.selects = s.selects[1:]
	return next, nil
}

func (s *scriptedPrompt) Int(_ context.Context, _ string, _ int) (int, error) {
	next := s.ints[0]
	s.ints = s.ints[1:]
	return next, nil
}

// Not parallel: swaps the package-level prompter.
func TestPickRowPromptsForMissingValues(t *testing.T) {
	original := prompter
	t.Cleanup(func() { prompter = original })
	prompter = &scriptedPrompt{selects: []int{1}, ints: []int{2}}

	groups := layout.RepeatingGroups{
		"A": {Index: 0},
		"B": {Index: 3},
		"C": {Index: -1},
	}
	group, row, err := pickRow(context.Background(), groups, "", -1)
	if err != nil {
		t.Fatalf("pickRow returned error: %v", err)
	}
	if group != "B" || row != 2 {
		t.Fatalf("expected B row 2, got %s row %d", group, row)
	}

	group, row, err = pickRow(context.Background(), groups, "A", 0)
	if err != nil || group != "A" || row != 0 {
		t.Fatalf("flags must skip prompting, got %s %d %v", group, row, err)
	}
}

func resultFixture() validation.Result {
	return validation.Result{
		Validations: validation.Validations{
			"page1": {"ageField": {"simpleBinding": {Errors: []string{"bad"}}}},
		},
		InvalidDataTypes: true,
	}
}

func TestWriteResultReportsFailures(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "result.json")
	if err := writeResult(path, resultFixture()); err != nil {
		t.Fatalf("writeResult returned error: %v", err)
	}
	var back validation.Result
	if err := readDocument(path, &back); err != nil {
		t.Fatalf("readDocument returned error: %v", err)
	}
	if diff := cmp.Diff(resultFixture(), back); diff != "" {
		t.Fatalf("unexpected round trip (-want +got):\n%s", diff)
	}

	if err := writeResult(filepath.Join(t.TempDir(), "missing", "result.json"), resultFixture()); err == nil {
		t.Fatalf("expected an error for an unwritable path")
	}
	if _, err := os.Stat("/dev/full"); err == nil {
		if err := writeResult("/dev/full", resultFixture()); err == nil {
			t.Fatalf("expected a failed write to be reported")
		}
	}
}

func TestMetricsOptions(t *testing.T) {
	t.Parallel()

	if registry, options := metricsOptions(false); registry != nil || options != nil {
		t.Fatalf("metrics must be off by default")
	}

	dir := fixtureDir(t)
	registry, options := metricsOptions(true)
	cfg := Config{Layouts: filepath.Join(dir, "layouts"), Models: filepath.Join(dir, "models"), Locale: "en"}
	ws, err := loadWorkspace(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), options...)
	if err != nil {
		t.Fatalf("loadWorkspace returned error: %v", err)
	}
	if _, err := ws.engine.ValidateForm(context.Background(), ws.state); err != nil {
		t.Fatalf("ValidateForm returned error: %v", err)
	}

	var buf bytes.Buffer
	if err := metrics.WriteText(&buf, registry); err != nil {
		t.Fatalf("WriteText returned error: %v", err)
	}
	if want := `formcheck_engine_runs_total{operation="form"} 1`; !strings.Contains(buf.String(), want) {
		t.Fatalf("expected %q in metrics output:\n%s", want, buf.String())
	}
}
