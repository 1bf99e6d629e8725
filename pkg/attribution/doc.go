// Package attribution maps validation issues onto rendered component
// instances. Schema issues are matched by data path; external issues by
// instance id, component id or data path. Unattributable external issues are
// filed under the reserved `unmapped` instance so form-level summaries can
// still show them.
package attribution
