package formcheck

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-formcheck/pkg/layout"
	"github.com/goliatone/go-formcheck/pkg/messages"
	"github.com/goliatone/go-formcheck/pkg/schema"
	"github.com/goliatone/go-formcheck/pkg/schemavalidator"
)

// LoadLayouts reads every page layout document in fsys.
func LoadLayouts(fsys fs.FS) (*layout.Set, error) {
	return layout.LoadFS(fsys)
}

// LoadDataModels registers every schema document found in dir with cache,
// keyed by file name without extension, and returns the registered type ids.
// Documents compile lazily on first use.
func LoadDataModels(ctx context.Context, fsys fs.FS, dir string, cache *schemavalidator.Cache) ([]string, error) {
	if cache == nil {
		return nil, fmt.Errorf("formcheck: load data models: cache is required")
	}
	docs, err := schema.LoadDir(ctx, fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("formcheck: load data models: %w", err)
	}
	ids := make([]string, 0, len(docs))
	for typeID, doc := range docs {
		cache.Register(typeID, doc)
		ids = append(ids, typeID)
	}
	return ids, nil
}

// LocalesFS exposes the built-in language bundles so hosts can copy or
// extend them.
func LocalesFS() fs.FS {
	return messages.EmbeddedFS()
}
