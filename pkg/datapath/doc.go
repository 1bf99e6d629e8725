// Package datapath parses the data-binding paths used by forms, schema
// validators, and server validation payloads into a typed token sequence.
// Array indices are explicit tokens, so stripping them, rendering the
// repeating-group row suffix (`-1-0`), or re-inserting them into an
// index-free binding never relies on string surgery.
package datapath
