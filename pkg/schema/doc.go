// Package schema holds data model documents: JSON Schema (draft-07 and
// 2020-12, JSON or YAML) or OpenAPI 3.x descriptions. It detects the dialect,
// locates the root element schema and navigates sub-schemas by JSON pointer
// or by form data path. Compilation and evaluation live in schemavalidator.
package schema
