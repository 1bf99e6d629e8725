package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigFillsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "formcheck.yaml")
	body := "layouts: ./forms/layouts\ntype: skjema\nkeepRequired: true\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	want := Config{
		Layouts:      "./forms/layouts",
		Models:       "models",
		TypeID:       "skjema",
		Locale:       "en",
		Output:       "text",
		KeepRequired: true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestOverrideAppliesOnlySetFlags(t *testing.T) {
	t.Parallel()

	base := Config{Layouts: "a", Models: "b", Locale: "nb", Output: "text", KeepRequired: true}
	got, err := override(base, Config{Models: "c", Output: "json"})
	if err != nil {
		t.Fatalf("override returned error: %v", err)
	}
	want := Config{Layouts: "a", Models: "c", Locale: "nb", Output: "json", KeepRequired: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}
