package schemavalidator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/goliatone/go-formcheck/pkg/schema"
)

// liftOpenAPI loads an OpenAPI document with kin-openapi and returns a JSON
// Schema resource holding its component schemas at the same location
// (`#/components/schemas/...`), so component `$ref`s and the root element
// path resolve unchanged. OpenAPI 3.0 `nullable` is rewritten to a `null`
// type member.
func liftOpenAPI(ctx context.Context, doc schema.Document, validate bool) (map[string]any, error) {
	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(doc.Raw())
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("validate openapi document: %w", err)
		}
	}
	if spec.Components == nil || len(spec.Components.Schemas) == 0 {
		return nil, errors.New("openapi document declares no component schemas")
	}

	encoded, err := json.Marshal(spec.Components.Schemas)
	if err != nil {
		return nil, fmt.Errorf("encode component schemas: %w", err)
	}
	decoded, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode component schemas: %w", err)
	}
	rewriteNullable(decoded)

	return map[string]any{
		"components": map[string]any{"schemas": decoded},
	}, nil
}

func rewriteNullable(node any) {
	switch typed := node.(type) {
	case map[string]any:
		if nullable, ok := typed["nullable"].(bool); ok {
			if nullable {
				switch kind := typed["type"].(type) {
				case string:
					typed["type"] = []any{kind, "null"}
				case []any:
					typed["type"] = append(kind, "null")
				}
				if enum, ok := typed["enum"].([]any); ok {
					typed["enum"] = append(enum, nil)
				}
			}
			delete(typed, "nullable")
		}
		for _, child := range typed {
			rewriteNullable(child)
		}
	case []any:
		for _, child := range typed {
			rewriteNullable(child)
		}
	}
}
