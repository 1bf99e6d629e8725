package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// settingsFiles name the optional document that fixes page order.
var settingsFiles = map[string]struct{}{
	"settings.json": {},
	"settings.yaml": {},
	"settings.yml":  {},
}

var (
	structValidatorOnce sync.Once
	structValidator     *validator.Validate
)

// LoadFS walks fsys and parses every JSON/YAML page layout it finds. Each
// file holds one page; the page id is the document's `id`, else the file
// name without extension. Both the wrapped shape (`{"data": {"layout": []}}`)
// and a bare `{"layout": []}` document are accepted. A `Settings` file may
// declare `pages.order`.
func LoadFS(fsys fs.FS) (*Set, error) {
	set := &Set{Pages: make(map[string]*Layout)}
	if fsys == nil {
		return set, nil
	}

	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isLayoutFile(name) {
			return nil
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("layout: read %s: %w", name, err)
		}

		base := strings.ToLower(path.Base(name))
		if _, ok := settingsFiles[base]; ok {
			order, err := parseSettings(data, name)
			if err != nil {
				return err
			}
			set.Order = order
			return nil
		}

		page, err := Parse(data, name)
		if err != nil {
			return err
		}
		if page.ID == "" {
			page.ID = strings.TrimSuffix(path.Base(name), path.Ext(name))
		}
		if _, exists := set.Pages[page.ID]; exists {
			return fmt.Errorf("layout: duplicate page %q (file %s)", page.ID, name)
		}
		set.Pages[page.ID] = page
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

type pageFile struct {
	ID     string      `json:"id" yaml:"id"`
	Layout []Component `json:"layout" yaml:"layout"`
	Data   *struct {
		Layout []Component `json:"layout" yaml:"layout"`
	} `json:"data" yaml:"data"`
}

type settingsFile struct {
	Pages struct {
		Order []string `json:"order" yaml:"order"`
	} `json:"pages" yaml:"pages"`
}

// Parse decodes one page layout document and validates its definitions.
func Parse(data []byte, source string) (*Layout, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("layout: file %s is empty", source)
	}

	var doc pageFile
	if err := decode(data, &doc); err != nil {
		return nil, fmt.Errorf("layout: parse %s: %w", source, err)
	}

	components := doc.Layout
	if doc.Data != nil && len(doc.Data.Layout) > 0 {
		components = doc.Data.Layout
	}
	page := &Layout{ID: strings.TrimSpace(doc.ID), Components: components}
	if err := Validate(page); err != nil {
		return nil, fmt.Errorf("layout: file %s: %w", source, err)
	}
	return page, nil
}

func parseSettings(data []byte, source string) ([]string, error) {
	var doc settingsFile
	if err := decode(data, &doc); err != nil {
		return nil, fmt.Errorf("layout: parse settings %s: %w", source, err)
	}
	order := make([]string, 0, len(doc.Pages.Order))
	for _, id := range doc.Pages.Order {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			order = append(order, trimmed)
		}
	}
	return order, nil
}

func decode(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err == nil {
		return nil
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return errors.New("invalid JSON or YAML")
	}
	return nil
}

// Validate checks the structural rules of a page: field-level constraints via
// struct tags, unique component ids, children that exist, and repeating groups
// that declare a group binding.
func Validate(l *Layout) error {
	if l == nil {
		return errors.New("layout is nil")
	}
	if err := validatorInstance().Struct(l); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return fmt.Errorf("invalid %s (%s=%s)", first.Namespace(), first.Tag(), first.Param())
		}
		return err
	}

	seen := make(map[string]struct{}, len(l.Components))
	for _, comp := range l.Components {
		if _, dup := seen[comp.ID]; dup {
			return fmt.Errorf("duplicate component id %q", comp.ID)
		}
		seen[comp.ID] = struct{}{}
	}
	for _, comp := range l.Components {
		for _, child := range comp.ChildIDs() {
			if _, ok := seen[child]; !ok {
				return fmt.Errorf("group %q references %w %q", comp.ID, ErrUnknownComponent, child)
			}
		}
		if comp.IsRepeating() && strings.TrimSpace(comp.GroupBinding()) == "" {
			return fmt.Errorf("repeating group %q has no %q binding", comp.ID, BindingGroup)
		}
	}
	return nil
}

func validatorInstance() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return structValidator
}

func isLayoutFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
