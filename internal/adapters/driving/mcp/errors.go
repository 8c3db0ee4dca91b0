// Package mcp provides an MCP (Model Context Protocol) server adapter for cfgswitch.
// It lets AI assistants list and switch providers, check drift and toggle
// prompt presets.
package mcp

import "errors"

// ErrMissingScopes is returned when the scope registry is not provided.
var ErrMissingScopes = errors.New("mcp: scope registry is required")
