// Package schemavalidator compiles data model documents into validators and
// evaluates nested form models against them.
//
// A Cache is an explicit, host-owned object keyed by data type id. Documents
// are JSON Schema (draft-07 or 2020-12) or OpenAPI 3.x; OpenAPI component
// schemas are lifted into a JSON Schema resource. Only compilation can fail:
// Validate reports violations as validation.RawIssue values and never errors.
package schemavalidator
