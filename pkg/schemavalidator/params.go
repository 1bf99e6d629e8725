package schemavalidator

import (
	"math/big"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
)

// params extracts message parameters from a leaf error kind. Names follow
// the conventional validation message placeholders (`limit`, `pattern`,
// `format`, `type`, `allowedValues`, `missingProperties`).
func params(k jsonschema.ErrorKind) map[string]any {
	switch e := k.(type) {
	case *kind.Type:
		return map[string]any{"type": strings.Join(e.Want, ","), "got": e.Got}
	case *kind.Format:
		return map[string]any{"format": e.Want}
	case *kind.Minimum:
		return limit(e.Want, ">=")
	case *kind.Maximum:
		return limit(e.Want, "<=")
	case *kind.ExclusiveMinimum:
		return limit(e.Want, ">")
	case *kind.ExclusiveMaximum:
		return limit(e.Want, "<")
	case *kind.MultipleOf:
		return map[string]any{"multipleOf": rat(e.Want)}
	case *kind.MinLength:
		return map[string]any{"limit": e.Want}
	case *kind.MaxLength:
		return map[string]any{"limit": e.Want}
	case *kind.MinItems:
		return map[string]any{"limit": e.Want}
	case *kind.MaxItems:
		return map[string]any{"limit": e.Want}
	case *kind.MinProperties:
		return map[string]any{"limit": e.Want}
	case *kind.MaxProperties:
		return map[string]any{"limit": e.Want}
	case *kind.Pattern:
		return map[string]any{"pattern": e.Want}
	case *kind.Enum:
		return map[string]any{"allowedValues": e.Want}
	case *kind.Const:
		return map[string]any{"allowedValue": e.Want}
	case *kind.Required:
		return map[string]any{"missingProperties": append([]string(nil), e.Missing...)}
	case *kind.AdditionalProperties:
		return map[string]any{"additionalProperties": append([]string(nil), e.Properties...)}
	default:
		return nil
	}
}

func limit(want *big.Rat, comparison string) map[string]any {
	return map[string]any{"limit": rat(want), "comparison": comparison}
}

func rat(r *big.Rat) any {
	if r == nil {
		return nil
	}
	if r.IsInt() && r.Num().IsInt64() {
		return r.Num().Int64()
	}
	f, _ := r.Float64()
	return f
}
