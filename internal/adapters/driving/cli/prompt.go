package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
)

var (
	promptJSON bool

	promptName        string
	promptContent     string
	promptFile        string
	promptDescription string
	promptEnable      bool
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Manage prompt presets",
	Long: `Store prompt presets and choose which one is written to the
application's prompt file:
  claude  ~/CLAUDE.md
  codex   ~/AGENTS.md
  gemini  ~/GEMINI.md

At most one prompt per application is enabled.`,
}

var promptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompts",
	Args:  cobra.NoArgs,
	RunE:  runPromptList,
}

var promptSaveCmd = &cobra.Command{
	Use:   "save [id]",
	Short: "Create or replace a prompt",
	Long: `Create or replace the prompt stored under id. Content is taken from
--content or --file. Saving an enabled prompt rewrites the prompt file.`,
	Args: cobra.ExactArgs(1),
	RunE: runPromptSave,
}

var promptDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a prompt",
	Long:  `Delete a prompt. The enabled prompt cannot be deleted; disable it first.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptDelete,
}

var promptEnableCmd = &cobra.Command{
	Use:   "enable [id]",
	Short: "Enable a prompt and write it to the prompt file",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptEnable,
}

var promptDisableCmd = &cobra.Command{
	Use:   "disable [id]",
	Short: "Disable a prompt",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptDisable,
}

var promptImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Store the current prompt file as a new prompt",
	Args:  cobra.NoArgs,
	RunE:  runPromptImport,
}

var promptLiveCmd = &cobra.Command{
	Use:   "live",
	Short: "Print the current prompt file",
	Args:  cobra.NoArgs,
	RunE:  runPromptLive,
}

func init() {
	promptListCmd.Flags().BoolVar(&promptJSON, "json", false, "output as JSON")

	promptSaveCmd.Flags().StringVar(&promptName, "name", "", "display name (default: the id)")
	promptSaveCmd.Flags().StringVar(&promptContent, "content", "", "prompt text")
	promptSaveCmd.Flags().StringVar(&promptFile, "file", "", "read prompt text from a file")
	promptSaveCmd.Flags().StringVar(&promptDescription, "description", "", "short description")
	promptSaveCmd.Flags().BoolVar(&promptEnable, "enable", false, "save the prompt as enabled")
	promptSaveCmd.MarkFlagsMutuallyExclusive("content", "file")

	promptCmd.AddCommand(promptListCmd)
	promptCmd.AddCommand(promptSaveCmd)
	promptCmd.AddCommand(promptDeleteCmd)
	promptCmd.AddCommand(promptEnableCmd)
	promptCmd.AddCommand(promptDisableCmd)
	promptCmd.AddCommand(promptImportCmd)
	promptCmd.AddCommand(promptLiveCmd)
	rootCmd.AddCommand(promptCmd)
}

func runPromptList(cmd *cobra.Command, _ []string) error {
	ctrl, err := promptController()
	if err != nil {
		return err
	}
	if err := ctrl.Reload(cmd.Context()); err != nil {
		return fmt.Errorf("failed to list prompts: %w", err)
	}

	prompts := ctrl.Prompts().Sorted()
	if promptJSON {
		return printJSON(cmd, promptViews(prompts))
	}

	if len(prompts) == 0 {
		cmd.Printf("No prompts stored for %s.\n", ctrl.AppType())
		return nil
	}

	cmd.Printf("Prompts (%s):\n", ctrl.AppType())
	for i := range prompts {
		marker := " "
		if prompts[i].Enabled {
			marker = "*"
		}
		cmd.Printf("  %s %s  %s\n", marker, prompts[i].ID, prompts[i].Name)
		if prompts[i].Description != "" {
			cmd.Printf("      %s\n", prompts[i].Description)
		}
	}
	return nil
}

func runPromptSave(cmd *cobra.Command, args []string) error {
	ctrl, err := promptController()
	if err != nil {
		return err
	}

	content := promptContent
	if promptFile != "" {
		data, err := os.ReadFile(promptFile)
		if err != nil {
			return fmt.Errorf("reading prompt file: %w", err)
		}
		content = string(data)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: prompt content is empty", domain.ErrInvalidInput)
	}

	id := args[0]
	name := promptName
	if name == "" {
		name = id
	}
	prompt := domain.Prompt{
		ID:          id,
		Name:        name,
		Content:     content,
		Description: promptDescription,
		Enabled:     promptEnable,
	}
	if err := ctrl.Reload(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}
	if existing, ok := ctrl.Prompts()[id]; ok {
		prompt.CreatedAt = existing.CreatedAt
		if !cmd.Flags().Changed("enable") {
			prompt.Enabled = existing.Enabled
		}
	}

	if err := ctrl.SavePrompt(cmd.Context(), id, prompt); err != nil {
		return fmt.Errorf("failed to save prompt: %w", err)
	}

	cmd.Printf("Saved prompt %s\n", id)
	return nil
}

func runPromptDelete(cmd *cobra.Command, args []string) error {
	ctrl, err := promptController()
	if err != nil {
		return err
	}
	if err := ctrl.DeletePrompt(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete prompt: %w", err)
	}

	cmd.Printf("Deleted prompt %s\n", args[0])
	return nil
}

func runPromptEnable(cmd *cobra.Command, args []string) error {
	ctrl, err := promptController()
	if err != nil {
		return err
	}
	if err := ctrl.EnablePrompt(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to enable prompt: %w", err)
	}

	cmd.Printf("Enabled prompt %s\n", args[0])
	return nil
}

func runPromptDisable(cmd *cobra.Command, args []string) error {
	ctrl, err := promptController()
	if err != nil {
		return err
	}
	// ToggleEnabled works on the local set, so it has to be loaded first.
	if err := ctrl.Reload(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}
	if err := ctrl.ToggleEnabled(cmd.Context(), args[0], false); err != nil {
		return fmt.Errorf("failed to disable prompt: %w", err)
	}

	cmd.Printf("Disabled prompt %s\n", args[0])
	return nil
}

func runPromptImport(cmd *cobra.Command, _ []string) error {
	ctrl, err := promptController()
	if err != nil {
		return err
	}

	id, err := ctrl.ImportFromFile(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to import prompt file: %w", err)
	}

	cmd.Printf("Imported prompt file as %s\n", id)
	return nil
}

func runPromptLive(cmd *cobra.Command, _ []string) error {
	ctrl, err := promptController()
	if err != nil {
		return err
	}
	if err := ctrl.Reload(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}

	content, ok := ctrl.CurrentFileContent()
	if !ok {
		cmd.Printf("No prompt file for %s.\n", ctrl.AppType())
		return nil
	}
	cmd.Print(content)
	if !strings.HasSuffix(content, "\n") {
		cmd.Println()
	}
	return nil
}

// promptView is the JSON shape of a listed prompt.
type promptView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
	Content     string `json:"content"`
}

func promptViews(prompts []domain.Prompt) []promptView {
	views := make([]promptView, 0, len(prompts))
	for i := range prompts {
		views = append(views, promptView{
			ID:          prompts[i].ID,
			Name:        prompts[i].Name,
			Description: prompts[i].Description,
			Enabled:     prompts[i].Enabled,
			Content:     prompts[i].Content,
		})
	}
	return views
}
