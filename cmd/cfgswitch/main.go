// Command cfgswitch manages provider configurations and prompt presets for
// AI coding assistants.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/cfgswitch/internal/adapters/driven/backend/local"
	"github.com/custodia-labs/cfgswitch/internal/adapters/driven/config/file"
	"github.com/custodia-labs/cfgswitch/internal/adapters/driven/livefile"
	"github.com/custodia-labs/cfgswitch/internal/adapters/driven/notify"
	"github.com/custodia-labs/cfgswitch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/cfgswitch/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/cfgswitch/internal/adapters/driving/cli"
	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driven"
	"github.com/custodia-labs/cfgswitch/internal/core/services"
	"github.com/custodia-labs/cfgswitch/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = ""

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "cfgswitch: %v\n", err)
		os.Exit(1)
	}

	cli.SetVersion(version)
	cli.Configure(services.NewSettingsService(configStore), newRuntime)

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// newRuntime wires the stores, live files and services for settings.
func newRuntime(settings domain.AppSettings) (*cli.Runtime, error) {
	live, err := livefile.New(settings.Live.HomeDir)
	if err != nil {
		return nil, err
	}

	var (
		providers driven.ProviderStore
		prompts   driven.PromptStore
		closeFn   func() error
	)
	switch settings.Storage.Backend {
	case domain.StorageMemory:
		providers = memory.NewProviderStore()
		prompts = memory.NewPromptStore()
	default:
		store, err := sqlite.NewStore(settings.Storage.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		providers = store.ProviderStore()
		prompts = store.PromptStore()
		closeFn = store.Close
	}

	backend := local.New(providers, prompts, live, local.Options{})
	importDefaults(backend)

	notifier := notify.Multi{
		notify.NewConsoleNotifier(os.Stderr, settings.Notify.Color),
		notify.LogNotifier{},
	}
	scopes := services.NewScopes(backend, notifier, services.ProviderSwitchOptions{
		SyncFailureHint: settings.Notify.SyncFailureHint,
	})

	return &cli.Runtime{
		Scopes:     scopes,
		WatchPaths: live.WatchPaths,
		Notifier:   notifier,
		Close:      closeFn,
	}, nil
}

// importDefaults seeds empty scopes from existing live files.
func importDefaults(backend *local.Backend) {
	ctx := context.Background()
	for _, app := range domain.AllAppTypes() {
		imported, err := backend.ImportDefaultConfig(ctx, app)
		switch {
		case err != nil:
			logger.Warn("importing existing %s configuration: %v", app, err)
		case imported:
			logger.Info("imported existing %s configuration as the default provider", app)
		}
	}
}
