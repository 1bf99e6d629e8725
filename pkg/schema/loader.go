package schema

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Load reads the document behind src. File sources read from disk, fs sources
// read from fsys. Inline sources carry no payload and are rejected.
func Load(ctx context.Context, fsys fs.FS, src Source) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = loadFile(src.Location())
	case SourceKindFS:
		data, err = loadFromFS(fsys, src.Location())
	default:
		err = fmt.Errorf("schema loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return Document{}, err
	}
	return NewDocument(src, data)
}

// LoadDir loads every `*.schema.json`, `*.json`, `*.yaml` and `*.yml` file
// at the top of dir inside fsys, keyed by file name without extension. The
// key is the data type id the validator cache uses.
func LoadDir(ctx context.Context, fsys fs.FS, dir string) (map[string]Document, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("schema loader: read dir %s: %w", dir, err)
	}
	out := make(map[string]Document)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		typeID, ok := typeIDFromFile(name)
		if !ok {
			continue
		}
		doc, err := Load(ctx, fsys, SourceFromFS(filepath.ToSlash(filepath.Join(dir, name))))
		if err != nil {
			return nil, err
		}
		out[typeID] = doc
	}
	return out, nil
}

func typeIDFromFile(name string) (string, bool) {
	for _, suffix := range []string{".schema.json", ".json", ".yaml", ".yml"} {
		if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
			return name[:len(name)-len(suffix)], true
		}
	}
	return "", false
}

func loadFile(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("schema loader: file path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}

func loadFromFS(files fs.FS, name string) ([]byte, error) {
	if name == "" {
		return nil, errors.New("schema loader: fs path is required")
	}
	if files == nil {
		return nil, errors.New("schema loader: fs is nil")
	}
	return fs.ReadFile(files, name)
}
