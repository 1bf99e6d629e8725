package datapath

import (
	"strconv"
	"strings"
)

// Token is one step of a data path: either a property name or an array index.
type Token struct {
	Name    string
	Index   int
	IsIndex bool
}

// Path is a parsed data-binding path such as `Group[2].Field`.
type Path []Token

// Parse reads dotted/bracketed binding paths (`A.B[2].C`), quoted bracket
// properties (`A['B'].C`, `A["B"]`) and the leading `.`/`$` markers emitted by
// some schema validators. Parsing never fails: malformed brackets are kept as
// part of the property name.
func Parse(raw string) Path {
	input := strings.TrimSpace(raw)
	input = strings.TrimPrefix(input, "$")
	input = strings.TrimPrefix(input, "#")
	if input == "" {
		return nil
	}

	var out Path
	var name strings.Builder
	flush := func() {
		if name.Len() == 0 {
			return
		}
		out = append(out, Token{Name: name.String()})
		name.Reset()
	}

	for i := 0; i < len(input); i++ {
		ch := input[i]
		switch ch {
		case '.', '/':
			flush()
		case '[':
			end := closingBracket(input, i)
			if end < 0 {
				name.WriteByte(ch)
				continue
			}
			flush()
			inner := strings.TrimSpace(input[i+1 : end])
			i = end
			if inner == "" {
				continue
			}
			if unquoted, ok := unquote(inner); ok {
				if unquoted != "" {
					out = append(out, Token{Name: unquoted})
				}
				continue
			}
			if idx, err := strconv.Atoi(inner); err == nil && idx >= 0 {
				out = append(out, Token{Index: idx, IsIndex: true})
				continue
			}
			out = append(out, Token{Name: inner})
		default:
			name.WriteByte(ch)
		}
	}
	flush()
	return out
}

// FromPointer converts a JSON pointer (`/Group/0/Field`, `#/Group/0`) into a
// Path. Purely numeric segments are treated as array indices.
func FromPointer(pointer string) Path {
	trimmed := strings.TrimSpace(pointer)
	trimmed = strings.TrimPrefix(trimmed, "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return nil
	}
	return FromSegments(strings.Split(trimmed, "/"))
}

// FromSegments converts already-split instance location segments, as reported
// by the schema validator, into a Path.
func FromSegments(segments []string) Path {
	out := make(Path, 0, len(segments))
	for _, raw := range segments {
		segment := strings.ReplaceAll(raw, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		if segment == "" {
			continue
		}
		if isNumeric(segment) {
			idx, err := strconv.Atoi(segment)
			if err == nil {
				out = append(out, Token{Index: idx, IsIndex: true})
				continue
			}
		}
		out = append(out, Token{Name: segment})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// String renders the canonical binding form, `A.B[2].C`.
func (p Path) String() string {
	var b strings.Builder
	for _, tok := range p {
		if tok.IsIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(tok.Index))
			b.WriteByte(']')
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(tok.Name)
	}
	return b.String()
}

// WithoutIndices drops every index token.
func (p Path) WithoutIndices() Path {
	out := make(Path, 0, len(p))
	for _, tok := range p {
		if tok.IsIndex {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Indices returns the array indices in order of appearance.
func (p Path) Indices() []int {
	var out []int
	for _, tok := range p {
		if tok.IsIndex {
			out = append(out, tok.Index)
		}
	}
	return out
}

// RowSuffix renders the composite repeating-group suffix for the path
// (`-2` for one level, `-1-0` for nested rows, empty when not indexed).
func (p Path) RowSuffix() string {
	return RowSuffix(p.Indices())
}

// Names returns only the property names.
func (p Path) Names() []string {
	out := make([]string, 0, len(p))
	for _, tok := range p {
		if !tok.IsIndex {
			out = append(out, tok.Name)
		}
	}
	return out
}

// RowSuffix joins row indices into an instance id suffix.
func RowSuffix(indices []int) string {
	if len(indices) == 0 {
		return ""
	}
	var b strings.Builder
	for _, idx := range indices {
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(idx))
	}
	return b.String()
}

// ParseRowSuffix reads a suffix produced by RowSuffix back into indices.
func ParseRowSuffix(suffix string) ([]int, bool) {
	if suffix == "" {
		return nil, true
	}
	if !strings.HasPrefix(suffix, "-") {
		return nil, false
	}
	parts := strings.Split(suffix[1:], "-")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		if !isNumeric(part) {
			return nil, false
		}
		idx, err := strconv.Atoi(part)
		if err != nil {
			return nil, false
		}
		out = append(out, idx)
	}
	return out, true
}

// Normalize parses and re-renders a path in canonical form.
func Normalize(raw string) string {
	return Parse(raw).String()
}

// StripIndices returns the index-free canonical form of raw.
func StripIndices(raw string) string {
	return Parse(raw).WithoutIndices().String()
}

// Join concatenates two dotted paths.
func Join(parent, child string) string {
	parent = strings.TrimSpace(parent)
	child = strings.TrimSpace(child)
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}

// IndexBinding inserts row indices into an index-free binding. groupBindings
// lists the data-model bindings of the enclosing repeating groups, outermost
// first, and indices holds the matching row index for each of them. Groups
// whose binding is not a prefix of binding are skipped.
func IndexBinding(binding string, groupBindings []string, indices []int) string {
	path := Parse(binding).WithoutIndices()
	if len(path) == 0 || len(groupBindings) == 0 {
		return path.String()
	}

	insertAfter := make(map[int]int, len(groupBindings))
	for i, group := range groupBindings {
		if i >= len(indices) {
			break
		}
		names := Parse(group).WithoutIndices()
		if len(names) == 0 || len(names) > len(path) || !hasNamePrefix(path, names) {
			continue
		}
		insertAfter[len(names)-1] = indices[i]
	}

	out := make(Path, 0, len(path)+len(insertAfter))
	for pos, tok := range path {
		out = append(out, tok)
		if idx, ok := insertAfter[pos]; ok {
			out = append(out, Token{Index: idx, IsIndex: true})
		}
	}
	return out.String()
}

func hasNamePrefix(path, prefix Path) bool {
	for i := range prefix {
		if path[i].Name != prefix[i].Name {
			return false
		}
	}
	return true
}

func closingBracket(input string, open int) int {
	quote := byte(0)
	for i := open + 1; i < len(input); i++ {
		ch := input[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == ']':
			return i
		}
	}
	return -1
}

func unquote(value string) (string, bool) {
	if len(value) < 2 {
		return "", false
	}
	first, last := value[0], value[len(value)-1]
	if (first == '\'' || first == '"') && first == last {
		return value[1 : len(value)-1], true
	}
	return "", false
}

func isNumeric(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
