package domain

import (
	"fmt"
	"strings"
)

// AppType identifies the downstream application whose configuration is managed.
// Every provider and prompt belongs to exactly one AppType; scopes never interact.
type AppType string

// Supported application scopes.
const (
	// AppProxyCast is the proxy itself. It has no live configuration file.
	AppProxyCast AppType = "proxycast"

	// AppClaude is Claude Code (~/.claude/settings.json, ~/CLAUDE.md).
	AppClaude AppType = "claude"

	// AppCodex is the Codex CLI (~/.codex/auth.json, ~/.codex/config.toml, ~/AGENTS.md).
	AppCodex AppType = "codex"

	// AppGemini is the Gemini CLI (~/.gemini/.env, ~/.gemini/settings.json, ~/GEMINI.md).
	AppGemini AppType = "gemini"
)

// AllAppTypes returns every supported scope in display order.
func AllAppTypes() []AppType {
	return []AppType{AppClaude, AppCodex, AppGemini, AppProxyCast}
}

// ParseAppType converts a case-insensitive name into an AppType.
func ParseAppType(s string) (AppType, error) {
	app := AppType(strings.ToLower(strings.TrimSpace(s)))
	if !app.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedApp, s)
	}
	return app, nil
}

// IsValid returns true if the scope is recognised.
func (a AppType) IsValid() bool {
	switch a {
	case AppProxyCast, AppClaude, AppCodex, AppGemini:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (a AppType) String() string {
	return string(a)
}

// HasLiveConfig reports whether the scope is mirrored into an external file.
func (a AppType) HasLiveConfig() bool {
	return a.IsValid() && a != AppProxyCast
}

// PromptFileName returns the live prompt file name for the scope,
// or an empty string when the scope has no prompt file.
func (a AppType) PromptFileName() string {
	switch a {
	case AppClaude:
		return "CLAUDE.md"
	case AppCodex:
		return "AGENTS.md"
	case AppGemini:
		return "GEMINI.md"
	default:
		return ""
	}
}
