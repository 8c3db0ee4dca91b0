package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage cfgswitch settings",
	Long: `View and change the settings stored in ~/.cfgswitch/config.toml.

Command-line flags such as --home and --data-dir take precedence over
the stored values.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Change a single setting.

Keys:
  storage.backend              sqlite or memory
  storage.data_dir             database directory
  live.home_dir                root for live configuration files
  notify.color                 true or false
  switch.sync_failure_hint     text appended to file-sync failures
  watch.debounce_ms            milliseconds to wait for more file events
  watch.max_checks_per_minute  0 disables the limit`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the settable keys",
	Args:  cobra.NoArgs,
	RunE:  runConfigKeys,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend.Description())
	cmd.Printf("  Data directory: %s\n", valueOr(settings.Storage.DataDir, "(default)"))
	cmd.Println()

	cmd.Println("[Live files]")
	cmd.Printf("  Home: %s\n", valueOr(settings.Live.HomeDir, "(user home)"))
	cmd.Println()

	cmd.Println("[Notifications]")
	cmd.Printf("  Color: %t\n", settings.Notify.Color)
	cmd.Printf("  Sync failure hint: %s\n", valueOr(settings.Notify.SyncFailureHint, "(none)"))
	cmd.Println()

	cmd.Println("[Watch]")
	cmd.Printf("  Debounce: %s\n", settings.Watch.Debounce)
	if settings.Watch.MaxChecksPerMinute > 0 {
		cmd.Printf("  Max checks per minute: %d\n", settings.Watch.MaxChecksPerMinute)
	} else {
		cmd.Println("  Max checks per minute: unlimited")
	}

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.SetValue(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}
