// Package rules implements the validation passes run over one rendered page:
// Required (empty bindings of components flagged required), Components
// (attachment counts, attachment tags, date values) and Schema (the form
// data model evaluated against its compiled JSON Schema).
//
// Each pass returns a fresh validation tree keyed by page id, ready to be
// merged. A Scope built with GroupScope or NodeScope restricts a pass to a
// group subtree, one group row, or a single instance.
package rules
