package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driving"
)

// AppInput selects a scope.
type AppInput struct {
	App string `json:"app" jsonschema:"application scope: claude, codex, gemini or proxycast"`
}

// ProviderOutput is one provider as shown to the assistant.
// Settings are omitted because they carry credentials.
type ProviderOutput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Current  bool   `json:"current"`
}

// ListProvidersOutput is the output schema for list_providers.
type ListProvidersOutput struct {
	App       string           `json:"app"`
	Providers []ProviderOutput `json:"providers"`
	Current   string           `json:"current,omitempty"`
}

// SwitchProviderInput is the input schema for switch_provider.
type SwitchProviderInput struct {
	App string `json:"app" jsonschema:"application scope: claude, codex, gemini or proxycast"`
	ID  string `json:"id" jsonschema:"id of the provider to make current"`
}

// SwitchProviderOutput is the output schema for switch_provider.
type SwitchProviderOutput struct {
	App     string `json:"app"`
	Current string `json:"current"`
}

// ConflictOutput is one differing field. Secrets arrive masked.
type ConflictOutput struct {
	Field    string `json:"field"`
	Local    string `json:"local"`
	External string `json:"external"`
}

// CheckConfigSyncOutput is the output schema for check_config_sync.
type CheckConfigSyncOutput struct {
	App              string           `json:"app"`
	Status           string           `json:"status"`
	CurrentProvider  string           `json:"current_provider"`
	ExternalProvider string           `json:"external_provider"`
	LastModified     string           `json:"last_modified,omitempty"`
	Conflicts        []ConflictOutput `json:"conflicts,omitempty"`
}

// PromptOutput is one prompt preset.
type PromptOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
	Content     string `json:"content,omitempty"`
}

// ListPromptsOutput is the output schema for list_prompts.
type ListPromptsOutput struct {
	App     string         `json:"app"`
	Prompts []PromptOutput `json:"prompts"`
}

// TogglePromptInput is the input schema for toggle_prompt.
type TogglePromptInput struct {
	App     string `json:"app" jsonschema:"application scope: claude, codex, gemini or proxycast"`
	ID      string `json:"id" jsonschema:"id of the prompt"`
	Enabled bool   `json:"enabled" jsonschema:"true to enable the prompt (disabling all others), false to disable it"`
}

// TogglePromptOutput is the output schema for toggle_prompt.
type TogglePromptOutput struct {
	App     string `json:"app"`
	Enabled string `json:"enabled,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_providers",
		Description: "List the API providers configured for an application and which one is current",
	}, s.handleListProviders)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "switch_provider",
		Description: "Make a provider current and write its configuration to the application's live files",
	}, s.handleSwitchProvider)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_config_sync",
		Description: "Compare the current provider with the application's live configuration files",
	}, s.handleCheckConfigSync)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_prompts",
		Description: "List the prompt presets of an application",
	}, s.handleListPrompts)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "toggle_prompt",
		Description: "Enable or disable a prompt preset; at most one prompt is enabled per application",
	}, s.handleTogglePrompt)
}

func (s *Server) providers(app string) (driving.ProviderSwitchController, error) {
	scope, err := domain.ParseAppType(app)
	if err != nil {
		return nil, err
	}
	return s.ports.Scopes.Providers(scope)
}

func (s *Server) prompts(app string) (driving.PromptController, error) {
	scope, err := domain.ParseAppType(app)
	if err != nil {
		return nil, err
	}
	return s.ports.Scopes.Prompts(scope)
}

func (s *Server) handleListProviders(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AppInput,
) (*mcp.CallToolResult, ListProvidersOutput, error) {
	ctrl, err := s.providers(input.App)
	if err != nil {
		return nil, ListProvidersOutput{}, err
	}
	if err := ctrl.Refresh(ctx); err != nil {
		return nil, ListProvidersOutput{}, fmt.Errorf("listing providers: %w", err)
	}

	output := ListProvidersOutput{App: ctrl.AppType().String()}
	list := ctrl.Providers()
	output.Providers = make([]ProviderOutput, len(list))
	for i := range list {
		output.Providers[i] = ProviderOutput{
			ID:       list[i].ID,
			Name:     list[i].Name,
			Category: list[i].Category,
			Notes:    list[i].Notes,
			Current:  list[i].IsCurrent,
		}
	}
	if cur := ctrl.CurrentProvider(); cur != nil {
		output.Current = cur.ID
	}
	return nil, output, nil
}

func (s *Server) handleSwitchProvider(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SwitchProviderInput,
) (*mcp.CallToolResult, SwitchProviderOutput, error) {
	ctrl, err := s.providers(input.App)
	if err != nil {
		return nil, SwitchProviderOutput{}, err
	}
	if input.ID == "" {
		return nil, SwitchProviderOutput{}, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	if err := ctrl.SwitchTo(ctx, input.ID); err != nil {
		return nil, SwitchProviderOutput{}, err
	}

	output := SwitchProviderOutput{App: ctrl.AppType().String()}
	if cur := ctrl.CurrentProvider(); cur != nil {
		output.Current = cur.ID
	}
	return nil, output, nil
}

func (s *Server) handleCheckConfigSync(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AppInput,
) (*mcp.CallToolResult, CheckConfigSyncOutput, error) {
	ctrl, err := s.providers(input.App)
	if err != nil {
		return nil, CheckConfigSyncOutput{}, err
	}
	result, err := ctrl.CheckConfigSync(ctx)
	if err != nil {
		return nil, CheckConfigSyncOutput{}, err
	}

	output := CheckConfigSyncOutput{
		App:              ctrl.AppType().String(),
		Status:           string(result.Status),
		CurrentProvider:  result.CurrentProvider,
		ExternalProvider: result.ExternalProvider,
	}
	if result.LastModified != nil {
		output.LastModified = result.LastModified.UTC().Format("2006-01-02T15:04:05Z")
	}
	for _, c := range result.Conflicts {
		output.Conflicts = append(output.Conflicts, ConflictOutput{Field: c.Field, Local: c.LocalValue, External: c.ExternalValue})
	}
	return nil, output, nil
}

func (s *Server) handleListPrompts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AppInput,
) (*mcp.CallToolResult, ListPromptsOutput, error) {
	ctrl, err := s.prompts(input.App)
	if err != nil {
		return nil, ListPromptsOutput{}, err
	}
	if err := ctrl.Reload(ctx); err != nil {
		return nil, ListPromptsOutput{}, fmt.Errorf("listing prompts: %w", err)
	}

	sorted := ctrl.Prompts().Sorted()
	output := ListPromptsOutput{App: ctrl.AppType().String(), Prompts: make([]PromptOutput, len(sorted))}
	for i, p := range sorted {
		output.Prompts[i] = PromptOutput{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Enabled:     p.Enabled,
			Content:     p.Content,
		}
	}
	return nil, output, nil
}

func (s *Server) handleTogglePrompt(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TogglePromptInput,
) (*mcp.CallToolResult, TogglePromptOutput, error) {
	ctrl, err := s.prompts(input.App)
	if err != nil {
		return nil, TogglePromptOutput{}, err
	}
	// The server outlives other writers, so the toggle must start from the store.
	if err := ctrl.Reload(ctx); err != nil {
		return nil, TogglePromptOutput{}, fmt.Errorf("loading prompts: %w", err)
	}
	if err := ctrl.ToggleEnabled(ctx, input.ID, input.Enabled); err != nil {
		return nil, TogglePromptOutput{}, err
	}

	output := TogglePromptOutput{App: ctrl.AppType().String()}
	if p, ok := ctrl.Prompts().Enabled(); ok {
		output.Enabled = p.ID
	}
	return nil, output, nil
}
