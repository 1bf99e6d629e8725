package schemavalidator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/goliatone/go-formcheck/pkg/schema"
)

// Option configures a Cache.
type Option func(*Cache)

// WithFormatAssertion toggles `format` keyword assertion. Enabled by default.
func WithFormatAssertion(enabled bool) Option {
	return func(c *Cache) {
		c.assertFormat = enabled
	}
}

// WithOpenAPIValidation toggles structural validation of OpenAPI documents
// before their component schemas are compiled. Enabled by default.
func WithOpenAPIValidation(enabled bool) Option {
	return func(c *Cache) {
		c.validateOpenAPI = enabled
	}
}

// WithLogger routes compile diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDocuments registers data model documents keyed by data type id.
func WithDocuments(docs map[string]schema.Document) Option {
	return func(c *Cache) {
		for typeID, doc := range docs {
			c.docs[typeID] = doc
		}
	}
}

// Cache holds one compiled Validator per data type id. It is owned by the
// host and safe for concurrent use; validators compile lazily on first Get.
type Cache struct {
	mu         sync.RWMutex
	docs       map[string]schema.Document
	validators map[string]*Validator

	assertFormat    bool
	validateOpenAPI bool
	logger          *slog.Logger
}

// NewCache constructs an empty cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		docs:            make(map[string]schema.Document),
		validators:      make(map[string]*Validator),
		assertFormat:    true,
		validateOpenAPI: true,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Register stores (or replaces) the document for typeID and drops any
// validator compiled from a previous document.
func (c *Cache) Register(typeID string, doc schema.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[typeID] = doc
	delete(c.validators, typeID)
}

// Invalidate drops the compiled validator for typeID, keeping its document.
func (c *Cache) Invalidate(typeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.validators, typeID)
}

// Len returns the number of compiled validators.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.validators)
}

// Get returns the validator for typeID, compiling it from the registered
// document on first use. Unregistered types fail with ErrUnknownType and
// broken documents with *CompileError.
func (c *Cache) Get(ctx context.Context, typeID string) (*Validator, error) {
	c.mu.RLock()
	v, ok := c.validators[typeID]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.validators[typeID]; ok {
		return v, nil
	}
	doc, ok := c.docs[typeID]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, typeID)
	}

	v, err := compile(ctx, typeID, doc, compileOptions{
		assertFormat:    c.assertFormat,
		validateOpenAPI: c.validateOpenAPI,
	})
	if err != nil {
		c.logger.Error("data model compile failed", "type", typeID, "location", doc.Location(), "err", err)
		return nil, err
	}
	c.logger.Debug("data model compiled", "type", typeID, "dialect", string(v.Dialect()), "root", v.RootElementPath())
	c.validators[typeID] = v
	return v, nil
}

// GetOrCompile registers doc for typeID when the type is unknown, then
// behaves like Get.
func (c *Cache) GetOrCompile(ctx context.Context, typeID string, doc schema.Document) (*Validator, error) {
	c.mu.Lock()
	if _, ok := c.docs[typeID]; !ok {
		c.docs[typeID] = doc
	}
	c.mu.Unlock()
	return c.Get(ctx, typeID)
}
