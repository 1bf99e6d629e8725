// Package validation holds the validation-state tree rendered components read
// back to decorate themselves: Validations (page id) → LayoutValidations
// (qualified component instance id) → ComponentValidations (binding key) →
// BindingValidation (per-severity message lists).
//
// Trees are values. Merge and the builders in this package always return new
// trees; callers replace their stored tree wholesale after a full pass, merge
// after a partial pass, and hand the tree to package reindex after a row
// deletion. Empty message lists, bindings, and components are never stored.
//
// Issues that cannot be attributed to a rendered component live under the
// reserved Unmapped instance id so they still reach the form-level summary.
package validation
