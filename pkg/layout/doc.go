// Package layout models the form's page layouts: component definitions with a
// closed Kind, repeating-group row metadata, and the rendered node forest the
// validation passes walk.
//
// Definitions come from layout documents (JSON or YAML, see LoadFS). Resolve
// expands them against the current repeating-group state and form data,
// producing qualified instance ids (`field-1-0`), row-indexed bindings
// (`Group[1].Sub[0].Field`), and hidden flags evaluated with package expr.
package layout
