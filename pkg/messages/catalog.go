package messages

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embeddedLocales embed.FS

// DefaultLocale is used when a lookup misses the requested locale.
const DefaultLocale = "en"

// ErrMissingTranslation is returned when no bundle defines a key.
var ErrMissingTranslation = errors.New("messages: missing translation")

// Translator resolves a message key to its raw template for a locale.
type Translator interface {
	Translate(locale, key string) (string, error)
}

// Catalog holds language bundles keyed by locale, each a flat map of dotted
// keys (`validation_errors.minimum`) to message templates. The embedded
// English and Norwegian bundles are loaded by NewCatalog.
type Catalog struct {
	mu       sync.RWMutex
	bundles  map[string]map[string]string
	fallback string
}

// Ensure Catalog satisfies Translator.
var _ Translator = (*Catalog)(nil)

// NewCatalog returns a catalog seeded with the embedded bundles.
func NewCatalog() *Catalog {
	c := &Catalog{bundles: make(map[string]map[string]string), fallback: DefaultLocale}
	if err := c.LoadFS(embeddedLocales, "locales"); err != nil {
		// The embed directive guarantees the bundles exist and parse.
		panic(err)
	}
	return c
}

// EmbeddedFS returns the bundled language files.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedLocales, "locales")
	if err != nil {
		panic(err)
	}
	return sub
}

// LoadFS loads every `<locale>.yaml` / `<locale>.yml` file in dir, merging
// keys over bundles already present.
func (c *Catalog) LoadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("messages: read %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := path.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		name := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("messages: read %s: %w", name, err)
		}
		if err := c.LoadYAML(strings.TrimSuffix(entry.Name(), ext), data); err != nil {
			return fmt.Errorf("messages: %s: %w", name, err)
		}
	}
	return nil
}

// LoadYAML merges a nested YAML bundle into locale.
func (c *Catalog) LoadYAML(locale string, data []byte) error {
	var nested map[string]any
	if err := yaml.Unmarshal(data, &nested); err != nil {
		return fmt.Errorf("parse bundle: %w", err)
	}
	flat := make(map[string]string)
	flattenBundle(flat, "", nested)
	c.Add(locale, flat)
	return nil
}

// Add merges flat entries into locale.
func (c *Catalog) Add(locale string, entries map[string]string) {
	locale = normalizeLocale(locale)
	c.mu.Lock()
	defer c.mu.Unlock()
	bundle, ok := c.bundles[locale]
	if !ok {
		bundle = make(map[string]string, len(entries))
		c.bundles[locale] = bundle
	}
	for key, value := range entries {
		bundle[key] = value
	}
}

// Translate returns the raw template for key, trying the locale, its base
// language (`nb` for `nb-NO`), then the fallback locale.
func (c *Catalog) Translate(locale, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, candidate := range localeChain(normalizeLocale(locale), c.fallback) {
		if msg, ok := c.bundles[candidate][key]; ok {
			return msg, nil
		}
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrMissingTranslation, key, locale)
}

// Locales lists the loaded locales.
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.bundles))
	for locale := range c.bundles {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

func flattenBundle(out map[string]string, prefix string, node map[string]any) {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flattenBundle(out, full, v)
		case string:
			out[full] = v
		case nil:
		default:
			out[full] = fmt.Sprint(v)
		}
	}
}

func normalizeLocale(locale string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
}

func localeChain(locale, fallback string) []string {
	chain := make([]string, 0, 3)
	if locale != "" {
		chain = append(chain, locale)
		if idx := strings.Index(locale, "-"); idx > 0 {
			chain = append(chain, locale[:idx])
		}
	}
	return append(chain, fallback)
}
