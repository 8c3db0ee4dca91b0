// Package sqlite provides a unified SQLite-based implementation of the
// provider and prompt stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Both stores share one database connection:
//
//   - ProviderStore: providers per application scope
//   - PromptStore: prompt presets per application scope
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Partial unique indexes keep at most one current
// provider and at most one enabled prompt per scope, so a buggy caller
// cannot break the single-active rule at rest.
//
// # Data Location
//
// By default, the database is stored at ~/.cfgswitch/data/cfgswitch.db
package sqlite
