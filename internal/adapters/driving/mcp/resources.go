package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for cfgswitch resources.
	uriScheme = "cfgswitch://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource summarising every scope.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "scopes",
		Name:        "scopes",
		Description: "Supported applications and their current provider",
		MIMEType:    "application/json",
	}, s.handleScopesResource)

	// Template for the live prompt file of a scope.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "prompts/{app}/live",
		Name:        "live-prompt",
		Description: "Current content of an application's live prompt file",
		MIMEType:    "text/markdown",
	}, s.handleLivePromptResource)
}

// handleScopesResource lists every scope with its current provider.
// A scope whose providers cannot be loaded is listed without one.
func (s *Server) handleScopesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type scopeInfo struct {
		App             string `json:"app"`
		PromptFile      string `json:"prompt_file,omitempty"`
		CurrentProvider string `json:"current_provider,omitempty"`
		Providers       int    `json:"providers"`
	}

	apps := domain.AllAppTypes()
	infos := make([]scopeInfo, len(apps))
	for i, app := range apps {
		infos[i] = scopeInfo{App: app.String(), PromptFile: app.PromptFileName()}

		ctrl, err := s.ports.Scopes.Providers(app)
		if err != nil {
			continue
		}
		if err := ctrl.Refresh(ctx); err != nil {
			continue
		}
		infos[i].Providers = len(ctrl.Providers())
		if cur := ctrl.CurrentProvider(); cur != nil {
			infos[i].CurrentProvider = cur.Name
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling scopes: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleLivePromptResource returns the live prompt file of a scope.
func (s *Server) handleLivePromptResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract app from URI: cfgswitch://prompts/{app}/live
	app, err := domain.ParseAppType(extractPromptApp(req.Params.URI))
	if err != nil || app.PromptFileName() == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	ctrl, err := s.ports.Scopes.Prompts(app)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err := ctrl.Reload(ctx); err != nil {
		return nil, fmt.Errorf("reading prompts: %w", err)
	}
	content, ok := ctrl.CurrentFileContent()
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     content,
		}},
	}, nil
}

// extractPromptApp extracts the app from a URI like cfgswitch://prompts/{app}/live.
func extractPromptApp(uri string) string {
	const prefix = uriScheme + "prompts/"
	const suffix = "/live"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
