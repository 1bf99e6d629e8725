package datapath

import (
	"sort"
	"strings"
)

// MaxIndex is the highest array index Expand materialises. Keys with a
// larger index are skipped so a single sparse key cannot allocate an
// arbitrarily long array.
const MaxIndex = 1<<16 - 1

// Expand converts flat form data keyed by binding paths (`Group[1].Field`)
// into the nested object shape a schema validator expects. Missing array
// slots are filled with empty objects so indices stay aligned. Keys are
// applied in sorted order, so when two paths collide on a scalar
// (`A` and `A.B`) the lexically later key wins.
func Expand(flat map[string]any) map[string]any {
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	root := make(map[string]any)
	for _, key := range keys {
		path := Parse(key)
		if len(path) == 0 || path[0].IsIndex || exceedsMaxIndex(path) {
			continue
		}
		root = setIn(root, path, flat[key]).(map[string]any)
	}
	return root
}

func exceedsMaxIndex(path Path) bool {
	for _, tok := range path {
		if tok.IsIndex && tok.Index > MaxIndex {
			return true
		}
	}
	return false
}

func setIn(container any, path Path, value any) any {
	if len(path) == 0 {
		return value
	}
	head := path[0]
	if head.IsIndex {
		list, _ := container.([]any)
		for len(list) <= head.Index {
			list = append(list, map[string]any{})
		}
		list[head.Index] = setIn(list[head.Index], path[1:], value)
		return list
	}

	obj, ok := container.(map[string]any)
	if !ok {
		obj = make(map[string]any)
	}
	obj[head.Name] = setIn(obj[head.Name], path[1:], value)
	return obj
}

// Flatten is the inverse of Expand: nested objects and arrays become binding
// paths. Empty objects and arrays produce no keys.
func Flatten(nested map[string]any) map[string]any {
	out := make(map[string]any)
	flattenInto(out, nil, nested)
	return out
}

func flattenInto(out map[string]any, prefix Path, value any) {
	switch v := value.(type) {
	case map[string]any:
		for key, child := range v {
			flattenInto(out, appendToken(prefix, Token{Name: key}), child)
		}
	case []any:
		for idx, child := range v {
			flattenInto(out, appendToken(prefix, Token{Index: idx, IsIndex: true}), child)
		}
	default:
		if len(prefix) > 0 {
			out[prefix.String()] = v
		}
	}
}

func appendToken(prefix Path, tok Token) Path {
	next := make(Path, len(prefix), len(prefix)+1)
	copy(next, prefix)
	return append(next, tok)
}

// Lookup reads a value from flat form data, accepting any path spelling that
// normalises to the same canonical binding.
func Lookup(flat map[string]any, binding string) (any, bool) {
	if len(flat) == 0 {
		return nil, false
	}
	if v, ok := flat[binding]; ok {
		return v, true
	}
	canonical := Normalize(binding)
	if v, ok := flat[canonical]; ok {
		return v, true
	}
	for key, v := range flat {
		if Normalize(key) == canonical {
			return v, true
		}
	}
	return nil, false
}

// IsEmpty reports whether a form value counts as not filled in.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}
