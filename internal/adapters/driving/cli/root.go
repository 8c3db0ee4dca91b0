package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driven"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driving"
	"github.com/custodia-labs/cfgswitch/internal/logger"
)

// version is set at build time.
var version = "dev"

// Global flags.
var (
	verbose     bool
	appFlag     string
	homeFlag    string
	dataDirFlag string
	storageFlag string
)

// Runtime is everything the commands need once settings are known.
type Runtime struct {
	// Scopes hands out the controllers of each app.
	Scopes driving.ScopeRegistry

	// WatchPaths lists the directories holding the live files of an app.
	WatchPaths func(app domain.AppType) []string

	// Notifier receives progress and outcome signals.
	Notifier driven.Notifier

	// Close releases the stores. May be nil.
	Close func() error
}

// Bootstrap builds a Runtime from resolved settings.
type Bootstrap func(settings domain.AppSettings) (*Runtime, error)

// Services wired by Configure. Tests replace them directly.
var (
	settingsService driving.SettingsService
	bootstrap       Bootstrap
	activeRuntime   *Runtime
)

var rootCmd = &cobra.Command{
	Use:   "cfgswitch",
	Short: "Switch provider configurations and prompt presets",
	Long: `cfgswitch keeps named provider configurations and prompt presets for
Claude Code, Codex, Gemini CLI and ProxyCast, and mirrors the active one of
each into the tool's own configuration files.

Quick start:
  cfgswitch provider list --app claude
  cfgswitch provider switch <id> --app claude
  cfgswitch provider check --app codex
  cfgswitch prompt enable <id> --app gemini`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return closeRuntime()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&appFlag, "app", "a", string(domain.AppClaude),
		"application scope (claude, codex, gemini, proxycast)")
	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "root for live configuration files (default: user home)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "directory holding the database")
	rootCmd.PersistentFlags().StringVar(&storageFlag, "storage", "", "storage backend (sqlite, memory)")
}

// Configure injects the settings service and the runtime factory.
func Configure(settings driving.SettingsService, b Bootstrap) {
	settingsService = settings
	bootstrap = b
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// resolvedSettings loads settings and applies flag overrides.
func resolvedSettings() (domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()
	if settingsService != nil {
		loaded, err := settingsService.Get()
		if err != nil {
			return settings, fmt.Errorf("loading settings: %w", err)
		}
		settings = *loaded
	}

	if homeFlag != "" {
		settings.Live.HomeDir = homeFlag
	}
	if dataDirFlag != "" {
		settings.Storage.DataDir = dataDirFlag
	}
	if storageFlag != "" {
		backend := domain.StorageBackend(storageFlag)
		if !backend.IsValid() {
			return settings, fmt.Errorf("%w: storage backend %q", domain.ErrInvalidInput, storageFlag)
		}
		settings.Storage.Backend = backend
	}
	return settings, nil
}

// currentRuntime builds the runtime on first use.
func currentRuntime() (*Runtime, error) {
	if activeRuntime != nil {
		return activeRuntime, nil
	}
	if bootstrap == nil {
		return nil, errors.New("runtime not configured")
	}

	settings, err := resolvedSettings()
	if err != nil {
		return nil, err
	}
	rt, err := bootstrap(settings)
	if err != nil {
		return nil, err
	}
	logger.Debug("runtime ready (storage=%s, home=%q)", settings.Storage.Backend, settings.Live.HomeDir)
	activeRuntime = rt
	return activeRuntime, nil
}

func closeRuntime() error {
	if activeRuntime == nil || activeRuntime.Close == nil || bootstrap == nil {
		return nil
	}
	err := activeRuntime.Close()
	activeRuntime = nil
	return err
}

// selectedApp parses the --app flag.
func selectedApp() (domain.AppType, error) {
	return domain.ParseAppType(appFlag)
}

func providerController() (driving.ProviderSwitchController, error) {
	rt, err := currentRuntime()
	if err != nil {
		return nil, err
	}
	app, err := selectedApp()
	if err != nil {
		return nil, err
	}
	return rt.Scopes.Providers(app)
}

func promptController() (driving.PromptController, error) {
	rt, err := currentRuntime()
	if err != nil {
		return nil, err
	}
	app, err := selectedApp()
	if err != nil {
		return nil, err
	}
	return rt.Scopes.Prompts(app)
}
