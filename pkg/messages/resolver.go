package messages

import (
	"strings"
)

// Resources are the form's own text resources: key to message template.
// They take precedence over catalog entries with the same key.
type Resources map[string]string

// MissingHandler decides the text returned for an unresolved key.
type MissingHandler func(locale, key string) string

// Option configures a Resolver.
type Option func(*Resolver)

// WithLocale selects the language used for catalog lookups.
func WithLocale(locale string) Option {
	return func(r *Resolver) {
		if trimmed := strings.TrimSpace(locale); trimmed != "" {
			r.locale = trimmed
		}
	}
}

// WithResources registers the form's text resources.
func WithResources(resources Resources) Option {
	return func(r *Resolver) {
		for key, value := range resources {
			r.resources[key] = value
		}
	}
}

// WithTranslator replaces the default catalog.
func WithTranslator(t Translator) Option {
	return func(r *Resolver) {
		if t != nil {
			r.translator = t
		}
	}
}

// WithEngine replaces the template engine.
func WithEngine(engine *Engine) Option {
	return func(r *Resolver) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithMissingHandler overrides the text returned for unknown keys. The
// default returns the key itself.
func WithMissingHandler(fn MissingHandler) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.onMissing = fn
		}
	}
}

// Resolver turns message keys into display text: form text resources first,
// then the language catalog, rendered through the template engine.
type Resolver struct {
	locale     string
	resources  Resources
	translator Translator
	engine     *Engine
	onMissing  MissingHandler
}

// New constructs a Resolver backed by the embedded catalog.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		locale:    DefaultLocale,
		resources: make(Resources),
		onMissing: func(_, key string) string { return key },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.translator == nil {
		r.translator = NewCatalog()
	}
	if r.engine == nil {
		r.engine = NewEngine()
	}
	return r
}

// Locale returns the active locale.
func (r *Resolver) Locale() string {
	return r.locale
}

// Has reports whether key resolves to a resource or catalog entry.
func (r *Resolver) Has(key string) bool {
	_, ok := r.lookup(key)
	return ok
}

// Text resolves key and renders it with params. Unknown keys go through the
// missing handler; templates that fail to render are returned raw.
func (r *Resolver) Text(key string, params map[string]any) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	raw, ok := r.lookup(key)
	if !ok {
		return r.onMissing(r.locale, key)
	}
	rendered, err := r.engine.Render(raw, params)
	if err != nil {
		return raw
	}
	return rendered
}

// Resolve renders a key when it names a known text, or returns the input
// unchanged. Used for messages that may be either a key or literal text.
func (r *Resolver) Resolve(keyOrText string, params map[string]any) string {
	if r.Has(strings.TrimSpace(keyOrText)) {
		return r.Text(keyOrText, params)
	}
	return keyOrText
}

func (r *Resolver) lookup(key string) (string, bool) {
	if raw, ok := r.resources[key]; ok {
		return raw, true
	}
	raw, err := r.translator.Translate(r.locale, key)
	if err != nil {
		return "", false
	}
	return raw, true
}
