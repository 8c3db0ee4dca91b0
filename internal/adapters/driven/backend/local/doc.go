// Package local implements the backend command surface in-process, over a
// provider store, a prompt store and the live configuration files.
//
// The store is the source of truth for which provider is current and which
// prompt is enabled; the live files are a mirror that is written whenever
// that choice changes. Before a mirror is overwritten, whatever the user
// edited by hand is copied back into the outgoing record.
package local
