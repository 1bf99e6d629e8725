package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Dialect is the JSON Schema draft a document is evaluated under.
type Dialect string

const (
	DialectDraft4    Dialect = "draft-04"
	DialectDraft7    Dialect = "draft-07"
	DialectDraft2020 Dialect = "2020-12"
)

// Document wraps a data model document, its origin and the decoded body.
// Documents are either JSON Schema (draft-07 or 2020-12, JSON or YAML) or an
// OpenAPI 3.x document whose component schemas describe the data model.
type Document struct {
	source Source
	raw    []byte
	body   map[string]any

	firstProperty  string
	firstComponent string
}

// NewDocument constructs a Document wrapper while validating the inputs. The
// payload must decode to a JSON object.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Document{}, errors.New("schema: raw document is empty")
	}

	clone := append([]byte(nil), raw...)
	body, err := decodeBody(clone)
	if err != nil {
		return Document{}, fmt.Errorf("schema: decode %s: %w", src.Location(), err)
	}

	var node yaml.Node
	_ = yaml.Unmarshal(clone, &node)
	return Document{
		source:         src,
		raw:            clone,
		body:           body,
		firstProperty:  firstKey(&node, "properties"),
		firstComponent: firstKey(&node, "components", "schemas"),
	}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Body returns the decoded document. Numbers are json.Number values. Callers
// must treat the tree as read-only.
func (d Document) Body() map[string]any {
	return d.body
}

// IsOpenAPI reports whether the document is an OpenAPI description.
func (d Document) IsOpenAPI() bool {
	_, ok := d.body["openapi"]
	return ok
}

// OpenAPIVersion returns the declared `openapi` version string.
func (d Document) OpenAPIVersion() string {
	return stringValue(d.body["openapi"])
}

// Dialect selects the draft the document is compiled under. `$schema`
// markers naming 2020-12 or 2019-09 select Draft 2020-12; anything else
// selects Draft 7. OpenAPI 3.1 documents use 2020-12 and 3.0 documents use
// draft-04 semantics (boolean exclusive bounds).
func (d Document) Dialect() Dialect {
	if d.IsOpenAPI() {
		if strings.HasPrefix(d.OpenAPIVersion(), "3.0") {
			return DialectDraft4
		}
		return DialectDraft2020
	}
	marker := stringValue(d.body["$schema"])
	if strings.Contains(marker, "2020-12") || strings.Contains(marker, "2019-09") {
		return DialectDraft2020
	}
	return DialectDraft7
}

// RootElementPath returns the JSON pointer fragment (`#/definitions/Root`)
// of the schema that describes the form data root. Lookup order:
// `info.rootNode`; the property named by `info.meldingsnavn`; the `$ref` of
// the first declared property. OpenAPI documents use `info.x-root-node` or
// the first component schema. An empty string means the document root.
func (d Document) RootElementPath() string {
	info, _ := d.body["info"].(map[string]any)

	if d.IsOpenAPI() {
		if root := stringValue(info["x-root-node"]); root != "" {
			if strings.HasPrefix(root, "#") {
				return root
			}
			return "#/components/schemas/" + EscapeToken(root)
		}
		if d.firstComponent != "" {
			return "#/components/schemas/" + EscapeToken(d.firstComponent)
		}
		return ""
	}

	if root := stringValue(info["rootNode"]); root != "" {
		return root
	}
	properties, _ := d.body["properties"].(map[string]any)
	if name := stringValue(info["meldingsnavn"]); name != "" {
		if prop, ok := properties[name].(map[string]any); ok {
			if ref := stringValue(prop["$ref"]); ref != "" {
				return ref
			}
			return "#/properties/" + EscapeToken(name)
		}
	}
	if d.firstProperty != "" {
		if prop, ok := properties[d.firstProperty].(map[string]any); ok {
			if ref := stringValue(prop["$ref"]); ref != "" {
				return ref
			}
		}
	}
	return ""
}

// Part returns the schema node at a JSON pointer fragment (`#/a/b`). The
// empty pointer and `#` address the document root.
func (d Document) Part(pointer string) (map[string]any, bool) {
	node, ok := Pointer(d.body, pointer)
	if !ok {
		return nil, false
	}
	out, ok := node.(map[string]any)
	return out, ok
}

func decodeBody(raw []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(trimmed))
		if err != nil {
			return nil, err
		}
		body, ok := doc.(map[string]any)
		if !ok {
			return nil, errors.New("document is not an object")
		}
		return body, nil
	}

	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("invalid JSON or YAML: %w", err)
	}
	if _, ok := generic.(map[string]any); !ok {
		return nil, errors.New("document is not an object")
	}
	encoded, err := json.Marshal(generic)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	body, _ := doc.(map[string]any)
	return body, nil
}

// firstKey returns the first key of the mapping at path, keeping document
// order, which decoding into Go maps loses.
func firstKey(node *yaml.Node, path ...string) string {
	current := node
	if current.Kind == yaml.DocumentNode && len(current.Content) > 0 {
		current = current.Content[0]
	}
	for _, key := range path {
		current = mappingValue(current, key)
		if current == nil {
			return ""
		}
	}
	if current.Kind != yaml.MappingNode || len(current.Content) < 2 {
		return ""
	}
	return current.Content[0].Value
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func stringValue(value any) string {
	s, _ := value.(string)
	return strings.TrimSpace(s)
}
