package schema

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formcheck/pkg/datapath"
)

const maxRefHops = 32

// Pointer resolves a JSON pointer fragment (`#/definitions/A`, `/a/0`) within
// a decoded document.
func Pointer(root any, pointer string) (any, bool) {
	pointer = strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	if pointer == "" || pointer == "/" {
		return root, root != nil
	}
	current := root
	for _, raw := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		token := UnescapeToken(raw)
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[token]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// EscapeToken escapes a JSON pointer reference token.
func EscapeToken(token string) string {
	return strings.ReplaceAll(strings.ReplaceAll(token, "~", "~0"), "/", "~1")
}

// UnescapeToken reverses EscapeToken.
func UnescapeToken(token string) string {
	return strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
}

// Deref follows local `$ref` chains starting at node.
func (d Document) Deref(node map[string]any) map[string]any {
	node, _ = d.deref(node, "")
	return node
}

func (d Document) deref(node map[string]any, pointer string) (map[string]any, string) {
	for hop := 0; node != nil && hop < maxRefHops; hop++ {
		ref := stringValue(node["$ref"])
		if ref == "" || !strings.HasPrefix(ref, "#") {
			return node, pointer
		}
		target, ok := d.Part(ref)
		if !ok {
			return node, pointer
		}
		node, pointer = target, ref
	}
	return node, pointer
}

// SchemaAt walks from the schema at rootPath down the data path and returns
// the sub-schema describing that instance location. Local `$ref`s are
// followed; properties found under allOf/anyOf/oneOf branches are accepted.
func (d Document) SchemaAt(rootPath string, path datapath.Path) (map[string]any, bool) {
	node, _, ok := d.walk(rootPath, path)
	return node, ok
}

// PointerAt is SchemaAt returning the pointer fragment of the resolved
// sub-schema, suitable for compiling it on its own.
func (d Document) PointerAt(rootPath string, path datapath.Path) (string, bool) {
	_, pointer, ok := d.walk(rootPath, path)
	return pointer, ok
}

func (d Document) walk(rootPath string, path datapath.Path) (map[string]any, string, bool) {
	current, ok := d.Part(rootPath)
	if !ok {
		return nil, "", false
	}
	pointer := "#" + strings.TrimPrefix(rootPath, "#")
	for _, token := range path {
		current, pointer = d.deref(current, pointer)
		if token.IsIndex {
			current, pointer = d.itemSchema(current, pointer, token.Index)
		} else {
			current, pointer = d.propertySchema(current, pointer, token.Name)
		}
		if current == nil {
			return nil, "", false
		}
	}
	current, pointer = d.deref(current, pointer)
	return current, pointer, true
}

func (d Document) propertySchema(node map[string]any, pointer, name string) (map[string]any, string) {
	if node == nil {
		return nil, ""
	}
	if props, ok := node["properties"].(map[string]any); ok {
		if prop, ok := props[name].(map[string]any); ok {
			return prop, join(pointer, "properties", EscapeToken(name))
		}
	}
	for _, key := range []string{"allOf", "anyOf", "oneOf"} {
		branches, _ := node[key].([]any)
		for i, branch := range branches {
			schema, ok := branch.(map[string]any)
			if !ok {
				continue
			}
			resolved, at := d.deref(schema, join(pointer, key, strconv.Itoa(i)))
			if found, foundAt := d.propertySchema(resolved, at, name); found != nil {
				return found, foundAt
			}
		}
	}
	return nil, ""
}

func (d Document) itemSchema(node map[string]any, pointer string, index int) (map[string]any, string) {
	if node == nil {
		return nil, ""
	}
	if prefix, ok := node["prefixItems"].([]any); ok && index < len(prefix) {
		if item, ok := prefix[index].(map[string]any); ok {
			return item, join(pointer, "prefixItems", strconv.Itoa(index))
		}
	}
	switch items := node["items"].(type) {
	case map[string]any:
		return items, join(pointer, "items")
	case []any:
		if index < len(items) {
			if item, ok := items[index].(map[string]any); ok {
				return item, join(pointer, "items", strconv.Itoa(index))
			}
		}
	}
	return nil, ""
}

func join(pointer string, tokens ...string) string {
	return strings.TrimSuffix(pointer, "/") + "/" + strings.Join(tokens, "/")
}

// Types returns the declared `type` keyword of a schema node as a list.
func Types(node map[string]any) []string {
	switch typed := node["type"].(type) {
	case string:
		return []string{typed}
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
