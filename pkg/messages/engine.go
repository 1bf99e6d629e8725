package messages

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"
)

// Engine renders message templates (`Value must be at least {{ limit }}`)
// with pongo2. Compiled templates are cached by content.
type Engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

// NewEngine constructs an Engine and registers the default filters.
func NewEngine() *Engine {
	registerDefaultFilters()
	return &Engine{
		set:       pongo2.NewSet("formcheck", pongo2.NewFSLoader(embeddedLocales)),
		templates: make(map[string]*pongo2.Template),
	}
}

// Render executes content with params. Content without template markers is
// returned unchanged.
func (e *Engine) Render(content string, params map[string]any) (string, error) {
	if !isTemplateContent(content) {
		return content, nil
	}
	if e == nil || e.set == nil {
		return "", errors.New("messages: engine is nil")
	}
	tmpl, err := e.template(content)
	if err != nil {
		return "", err
	}
	ctx := make(pongo2.Context, len(params))
	for key, value := range params {
		if key = strings.TrimSpace(key); key != "" {
			ctx[key] = value
		}
	}
	out, err := tmpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("messages: execute template: %w", err)
	}
	return out, nil
}

func (e *Engine) template(content string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[content]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[content]; ok {
		return tmpl, nil
	}
	// Messages are plain text; HTML safety is the sanitizer's job.
	tmpl, err := e.set.FromString("{% autoescape off %}" + content + "{% endautoescape %}")
	if err != nil {
		return nil, fmt.Errorf("messages: parse template: %w", err)
	}
	e.templates[content] = tmpl
	return tmpl, nil
}

func isTemplateContent(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("lowerfirst") {
		_ = pongo2.RegisterFilter("lowerfirst", filterLowerFirst)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

func filterLowerFirst(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	text := in.String()
	for i, r := range text {
		if strings.ContainsRune(" \t\n\r", r) {
			continue
		}
		size := utf8.RuneLen(r)
		return pongo2.AsValue(text[:i] + strings.ToLower(string(r)) + text[i+size:]), nil
	}
	return pongo2.AsValue(text), nil
}
