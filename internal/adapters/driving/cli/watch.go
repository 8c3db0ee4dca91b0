package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cfgswitch/internal/adapters/driving/watch"
	"github.com/custodia-labs/cfgswitch/internal/core/domain"
)

var watchAll bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report live configuration drift as it happens",
	Long: `Watch the live configuration files and run a drift check whenever
they change. Out-of-sync and conflicting files are reported once per
change of status.

Watches the --app scope by default; --all watches every application with
a live file. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchAll, "all", false, "watch every application")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	rt, err := currentRuntime()
	if err != nil {
		return err
	}
	if rt.WatchPaths == nil {
		return fmt.Errorf("%w: live files cannot be watched", domain.ErrNotImplemented)
	}

	apps, err := watchedApps()
	if err != nil {
		return err
	}

	targets := make([]watch.Target, 0, len(apps))
	for _, app := range apps {
		ctrl, err := rt.Scopes.Providers(app)
		if err != nil {
			return err
		}
		targets = append(targets, watch.Target{Checker: ctrl, Paths: rt.WatchPaths(app)})
	}

	settings, err := resolvedSettings()
	if err != nil {
		return err
	}

	w := watch.New(targets, rt.Notifier, watch.Options{
		Debounce:           settings.Watch.Debounce,
		MaxChecksPerMinute: settings.Watch.MaxChecksPerMinute,
	})

	cmd.Printf("Watching %d application(s). Press Ctrl+C to stop.\n", len(targets))
	return w.Run(cmd.Context())
}

func watchedApps() ([]domain.AppType, error) {
	if !watchAll {
		app, err := selectedApp()
		if err != nil {
			return nil, err
		}
		if !app.HasLiveConfig() {
			return nil, fmt.Errorf("%w: %s has no live configuration file", domain.ErrInvalidInput, app)
		}
		return []domain.AppType{app}, nil
	}

	var apps []domain.AppType
	for _, app := range domain.AllAppTypes() {
		if app.HasLiveConfig() {
			apps = append(apps, app)
		}
	}
	return apps, nil
}
