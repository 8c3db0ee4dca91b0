// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ProviderBackend / PromptBackend: The authoritative command surface.
//     Controllers never persist anything themselves.
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - Notifier: Advisory progress/outcome side-channel. Nil disables it.
//
// # Backend Building Blocks
//
// Used by the local backend adapter, never by the controllers:
//
//   - ProviderStore, PromptStore: Durable item storage (SQLite or memory)
//   - LiveConfig: External configuration files
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
