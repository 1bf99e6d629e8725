// Package messages resolves validation message keys into display text.
//
// Lookups try the form's text resources, then the language catalog (embedded
// English and Norwegian bundles plus any loaded YAML). Message templates use
// pongo2 syntax and receive keyword parameters such as `limit` or `field`.
// Sanitize cleans externally supplied descriptions.
package messages
