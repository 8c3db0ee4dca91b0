// Package domain defines the core business entities for cfgswitch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - AppType: The scope a provider or prompt belongs to
//   - Provider: A named endpoint configuration, at most one current per scope
//   - Prompt: A named instruction preset, at most one enabled per scope
//   - SyncCheckResult: A drift report between the store and the live file
//
// The single-active rules live here as pure functions (ApplyCurrent,
// ApplyEnabled) so that backends and optimistic client updates agree.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
