package schemavalidator

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formcheck/pkg/datapath"
	"github.com/goliatone/go-formcheck/pkg/schema"
)

// Model converts flat form data into the nested model the data model
// describes. String values bound to number, integer or boolean schemas are
// converted when they parse; empty strings there are dropped as unanswered.
// Values that do not parse stay strings so the `type` keyword reports them.
func (v *Validator) Model(flat map[string]any) map[string]any {
	converted := make(map[string]any, len(flat))
	for key, value := range flat {
		raw, ok := value.(string)
		if !ok {
			converted[key] = value
			continue
		}
		node, found := v.SchemaAt(datapath.Parse(key))
		if !found {
			converted[key] = value
			continue
		}
		next, keep := coerce(raw, schema.Types(node))
		if keep {
			converted[key] = next
		}
	}
	return datapath.Expand(converted)
}

func coerce(raw string, types []string) (any, bool) {
	if len(types) == 0 || hasType(types, "string") {
		return raw, true
	}
	trimmed := strings.TrimSpace(raw)
	scalar := hasType(types, "number") || hasType(types, "integer") || hasType(types, "boolean")
	if trimmed == "" {
		return nil, !scalar
	}
	if hasType(types, "integer") {
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return n, true
		}
	}
	if hasType(types, "number") || hasType(types, "integer") {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f, true
		}
	}
	if hasType(types, "boolean") {
		if b, err := strconv.ParseBool(trimmed); err == nil {
			return b, true
		}
	}
	return raw, true
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}
