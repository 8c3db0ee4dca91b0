package mcp

import (
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Scopes hands out the provider and prompt controllers of each app.
	Scopes driving.ScopeRegistry
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Scopes == nil {
		return ErrMissingScopes
	}
	return nil
}
