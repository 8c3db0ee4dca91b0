package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driving"
)

var (
	providerJSON bool

	providerName         string
	providerSettings     string
	providerSettingsFile string
	providerCategory     string
	providerIcon         string
	providerIconColor    string
	providerNotes        string
	providerSortIndex    int
)

var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "Manage provider configurations",
	Long: `Add, edit and switch between named provider configurations.

The current provider of each application is mirrored into its live
configuration file:
  claude  ~/.claude/settings.json
  codex   ~/.codex/auth.json and ~/.codex/config.toml
  gemini  ~/.gemini/.env and ~/.gemini/settings.json

ProxyCast has no live file; switching only changes the stored state.`,
}

var providerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List providers",
	Args:  cobra.NoArgs,
	RunE:  runProviderList,
}

var providerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a provider",
	Long: `Add a provider to the selected application.

Settings are given as a JSON object, either inline or from a file:
  cfgswitch provider add --app claude --name Work \
    --settings '{"env":{"ANTHROPIC_API_KEY":"sk-..."}}'

The first provider of an application becomes current automatically.`,
	Args: cobra.NoArgs,
	RunE: runProviderAdd,
}

var providerUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update a provider",
	Long: `Update the fields given as flags. Other fields are kept.
Updating the current provider rewrites the live configuration file.`,
	Args: cobra.ExactArgs(1),
	RunE: runProviderUpdate,
}

var providerDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a provider",
	Long:  `Delete a provider. The current provider cannot be deleted.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runProviderDelete,
}

var providerSwitchCmd = &cobra.Command{
	Use:   "switch [id]",
	Short: "Make a provider current",
	Long: `Make a provider current and write its settings to the live file.

Edits made directly to the live file are saved back into the outgoing
provider first. If writing the new configuration fails, the previous one
is restored.`,
	Args: cobra.ExactArgs(1),
	RunE: runProviderSwitch,
}

var providerCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare the live file with the current provider",
	Args:  cobra.NoArgs,
	RunE:  runProviderCheck,
}

var providerSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import the live file into the stored providers",
	Long: `Import the live configuration file. The current provider takes the
live settings; with no providers stored, the live file becomes the default
provider.`,
	Args: cobra.NoArgs,
	RunE: runProviderSync,
}

func init() {
	providerListCmd.Flags().BoolVar(&providerJSON, "json", false, "output as JSON")
	providerCheckCmd.Flags().BoolVar(&providerJSON, "json", false, "output as JSON")

	for _, c := range []*cobra.Command{providerAddCmd, providerUpdateCmd} {
		c.Flags().StringVar(&providerName, "name", "", "display name")
		c.Flags().StringVar(&providerSettings, "settings", "", "settings as a JSON object")
		c.Flags().StringVar(&providerSettingsFile, "settings-file", "", "read settings from a JSON file")
		c.Flags().StringVar(&providerCategory, "category", "", "category label")
		c.Flags().StringVar(&providerIcon, "icon", "", "icon name")
		c.Flags().StringVar(&providerIconColor, "icon-color", "", "icon colour")
		c.Flags().StringVar(&providerNotes, "notes", "", "free-form notes")
		c.Flags().IntVar(&providerSortIndex, "sort-index", 0, "position in listings")
		c.MarkFlagsMutuallyExclusive("settings", "settings-file")
	}
	_ = providerAddCmd.MarkFlagRequired("name")

	providerCmd.AddCommand(providerListCmd)
	providerCmd.AddCommand(providerAddCmd)
	providerCmd.AddCommand(providerUpdateCmd)
	providerCmd.AddCommand(providerDeleteCmd)
	providerCmd.AddCommand(providerSwitchCmd)
	providerCmd.AddCommand(providerCheckCmd)
	providerCmd.AddCommand(providerSyncCmd)
	rootCmd.AddCommand(providerCmd)
}

func runProviderList(cmd *cobra.Command, _ []string) error {
	ctrl, err := providerController()
	if err != nil {
		return err
	}
	if err := ctrl.Refresh(cmd.Context()); err != nil {
		return fmt.Errorf("failed to list providers: %w", err)
	}

	providers := ctrl.Providers()
	if providerJSON {
		return printJSON(cmd, providerViews(providers))
	}

	if len(providers) == 0 {
		cmd.Printf("No providers configured for %s.\n", ctrl.AppType())
		return nil
	}

	cmd.Printf("Providers (%s):\n", ctrl.AppType())
	for i := range providers {
		marker := " "
		if providers[i].IsCurrent {
			marker = "*"
		}
		cmd.Printf("  %s %s  %s", marker, providers[i].ID, providers[i].Name)
		if providers[i].Category != "" {
			cmd.Printf(" [%s]", providers[i].Category)
		}
		cmd.Println()
	}
	return nil
}

func runProviderAdd(cmd *cobra.Command, _ []string) error {
	ctrl, err := providerController()
	if err != nil {
		return err
	}

	settings, err := readProviderSettings()
	if err != nil {
		return err
	}
	draft := domain.ProviderDraft{
		Name:      providerName,
		Settings:  settings,
		Category:  providerCategory,
		Icon:      providerIcon,
		IconColor: providerIconColor,
		Notes:     providerNotes,
	}
	if cmd.Flags().Changed("sort-index") {
		idx := providerSortIndex
		draft.SortIndex = &idx
	}

	provider, err := ctrl.Add(cmd.Context(), draft)
	if err != nil {
		return fmt.Errorf("failed to add provider: %w", err)
	}

	cmd.Printf("Added provider %s (%s)\n", provider.Name, provider.ID)
	return nil
}

func runProviderUpdate(cmd *cobra.Command, args []string) error {
	ctrl, err := providerController()
	if err != nil {
		return err
	}
	if err := ctrl.Refresh(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load providers: %w", err)
	}

	provider, ok := findProvider(ctrl, args[0])
	if !ok {
		return fmt.Errorf("provider %s: %w", args[0], domain.ErrNotFound)
	}

	flags := cmd.Flags()
	if flags.Changed("settings") || flags.Changed("settings-file") {
		settings, err := readProviderSettings()
		if err != nil {
			return err
		}
		provider.Settings = settings
	}
	if flags.Changed("name") {
		provider.Name = providerName
	}
	if flags.Changed("category") {
		provider.Category = providerCategory
	}
	if flags.Changed("icon") {
		provider.Icon = providerIcon
	}
	if flags.Changed("icon-color") {
		provider.IconColor = providerIconColor
	}
	if flags.Changed("notes") {
		provider.Notes = providerNotes
	}
	if flags.Changed("sort-index") {
		idx := providerSortIndex
		provider.SortIndex = &idx
	}

	if err := ctrl.Update(cmd.Context(), provider); err != nil {
		return fmt.Errorf("failed to update provider: %w", err)
	}

	cmd.Printf("Updated provider %s\n", provider.ID)
	return nil
}

func runProviderDelete(cmd *cobra.Command, args []string) error {
	ctrl, err := providerController()
	if err != nil {
		return err
	}
	if err := ctrl.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete provider: %w", err)
	}

	cmd.Printf("Deleted provider %s\n", args[0])
	return nil
}

func runProviderSwitch(cmd *cobra.Command, args []string) error {
	ctrl, err := providerController()
	if err != nil {
		return err
	}
	if err := ctrl.SwitchTo(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to switch provider: %w", err)
	}

	cmd.Printf("Switched %s to %s\n", ctrl.AppType(), args[0])
	return nil
}

func runProviderCheck(cmd *cobra.Command, _ []string) error {
	ctrl, err := providerController()
	if err != nil {
		return err
	}

	result, err := ctrl.CheckConfigSync(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to check configuration: %w", err)
	}

	if providerJSON {
		return printJSON(cmd, result)
	}

	cmd.Printf("Status:            %s\n", result.Status)
	cmd.Printf("Current provider:  %s\n", valueOr(result.CurrentProvider, "(none)"))
	cmd.Printf("External provider: %s\n", valueOr(result.ExternalProvider, "(none)"))
	if result.LastModified != nil {
		cmd.Printf("Last modified:     %s\n", result.LastModified.Format(time.RFC3339))
	}
	if len(result.Conflicts) > 0 {
		cmd.Println("Conflicts:")
		for _, c := range result.Conflicts {
			cmd.Printf("  %s: stored %q, live %q\n", c.Field, c.LocalValue, c.ExternalValue)
		}
	}
	return nil
}

func runProviderSync(cmd *cobra.Command, _ []string) error {
	ctrl, err := providerController()
	if err != nil {
		return err
	}

	summary, err := ctrl.SyncFromExternal(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to import live configuration: %w", err)
	}

	cmd.Println(summary)
	return nil
}

// readProviderSettings decodes --settings or --settings-file.
// Neither flag yields an empty settings object.
func readProviderSettings() (map[string]any, error) {
	raw := []byte(providerSettings)
	if providerSettingsFile != "" {
		data, err := os.ReadFile(providerSettingsFile)
		if err != nil {
			return nil, fmt.Errorf("reading settings file: %w", err)
		}
		raw = data
	}
	if len(raw) == 0 {
		return map[string]any{}, nil
	}

	var settings map[string]any
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("%w: settings must be a JSON object: %v", domain.ErrInvalidInput, err)
	}
	if settings == nil {
		settings = map[string]any{}
	}
	return settings, nil
}

func findProvider(ctrl driving.ProviderSwitchController, id string) (domain.Provider, bool) {
	for _, p := range ctrl.Providers() {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Provider{}, false
}

// providerView is the JSON shape of a listed provider.
// Settings are left out because they carry credentials.
type providerView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	SortIndex *int      `json:"sort_index,omitempty"`
	Current   bool      `json:"current"`
	CreatedAt time.Time `json:"created_at"`
}

func providerViews(providers []domain.Provider) []providerView {
	views := make([]providerView, 0, len(providers))
	for i := range providers {
		views = append(views, providerView{
			ID:        providers[i].ID,
			Name:      providers[i].Name,
			Category:  providers[i].Category,
			Notes:     providers[i].Notes,
			SortIndex: providers[i].SortIndex,
			Current:   providers[i].IsCurrent,
			CreatedAt: providers[i].CreatedAt,
		})
	}
	return views
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
