package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	formcheck "github.com/goliatone/go-formcheck"
	"github.com/goliatone/go-formcheck/pkg/datapath"
	"github.com/goliatone/go-formcheck/pkg/engine"
	"github.com/goliatone/go-formcheck/pkg/messages"
	"github.com/goliatone/go-formcheck/pkg/rules"
)

// workspace is everything a validation run needs, loaded from disk.
type workspace struct {
	engine *engine.Engine
	state  engine.State
}

// loadWorkspace reads every input cfg names. extra options are applied to
// the engine after the ones derived from cfg.
func loadWorkspace(ctx context.Context, cfg Config, logger *slog.Logger, extra ...engine.Option) (*workspace, error) {
	layouts, err := formcheck.LoadLayouts(os.DirFS(cfg.Layouts))
	if err != nil {
		return nil, fmt.Errorf("load layouts %s: %w", cfg.Layouts, err)
	}

	cache := formcheck.NewCache()
	typeIDs, err := formcheck.LoadDataModels(ctx, os.DirFS(cfg.Models), ".", cache)
	if err != nil {
		return nil, err
	}
	typeID := cfg.TypeID
	if typeID == "" && len(typeIDs) == 1 {
		typeID = typeIDs[0]
	}
	logger.Debug("workspace loaded", "pages", len(layouts.Order), "models", typeIDs, "type", typeID)

	data := map[string]any{}
	if cfg.Data != "" {
		if data, err = readData(cfg.Data); err != nil {
			return nil, err
		}
	}

	var attachments map[string][]rules.Attachment
	if cfg.Attachments != "" {
		if err := readDocument(cfg.Attachments, &attachments); err != nil {
			return nil, err
		}
	}

	var resources messages.Resources
	if cfg.Resources != "" {
		if err := readDocument(cfg.Resources, &resources); err != nil {
			return nil, err
		}
	}

	texts := messages.New(messages.WithLocale(cfg.Locale), messages.WithResources(resources))
	options := []engine.Option{
		engine.WithCache(cache),
		engine.WithTexts(texts),
		engine.WithLogger(logger),
		engine.WithSchemaOptions(rules.SchemaOptions{KeepRequired: cfg.KeepRequired}),
	}
	e := formcheck.NewEngine(append(options, extra...)...)
	return &workspace{
		engine: e,
		state: engine.State{
			TypeID:          typeID,
			Layouts:         layouts,
			Data:            data,
			Attachments:     attachments,
			CurrentPage:     cfg.Page,
			CurrentPageOnly: cfg.Page != "",
		},
	}, nil
}

// readData loads form data. Nested documents are flattened to binding
// paths; documents already keyed by binding path are used as is.
func readData(path string) (map[string]any, error) {
	var raw map[string]any
	if err := readDocument(path, &raw); err != nil {
		return nil, err
	}
	for key := range raw {
		if strings.ContainsAny(key, ".[") {
			return raw, nil
		}
	}
	return datapath.Flatten(raw), nil
}

// readDocument decodes a YAML or JSON file into out.
func readDocument(path string, out any) error {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
