// Package reindex keeps validation state and repeating-group state in step
// with row deletions. It is a structural transformation: nothing is
// revalidated, messages travel with their rows.
package reindex
