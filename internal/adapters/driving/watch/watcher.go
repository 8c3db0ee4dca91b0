// Package watch observes the live configuration directories and reports
// drift between the store and files edited outside cfgswitch.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driven"
	"github.com/custodia-labs/cfgswitch/internal/logger"
)

// SyncChecker runs the drift check of one scope.
type SyncChecker interface {
	AppType() domain.AppType
	CheckConfigSync(ctx context.Context) (*domain.SyncCheckResult, error)
}

// Target pairs a scope's checker with the directories to observe.
type Target struct {
	Checker SyncChecker
	Paths   []string
}

// Options tunes a Watcher.
type Options struct {
	// Debounce collapses bursts of events into one check. Defaults to 250ms.
	Debounce time.Duration

	// MaxChecksPerMinute caps checks across all scopes. Zero means no cap.
	MaxChecksPerMinute int
}

// Watcher runs drift checks when live files change.
type Watcher struct {
	notifier driven.Notifier
	opts     Options
	limiter  *rate.Limiter

	checkers map[domain.AppType]SyncChecker
	dirs     map[string]domain.AppType

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu       sync.Mutex
	pending  map[domain.AppType]bool
	reported map[domain.AppType]domain.SyncStatus
}

// New creates a watcher over targets. The notifier is optional.
func New(targets []Target, notifier driven.Notifier, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = 250 * time.Millisecond
	}

	limit := rate.Inf
	burst := 1
	if opts.MaxChecksPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.MaxChecksPerMinute))
		burst = opts.MaxChecksPerMinute
	}

	w := &Watcher{
		notifier: notifier,
		opts:     opts,
		limiter:  rate.NewLimiter(limit, burst),
		checkers: make(map[domain.AppType]SyncChecker),
		dirs:     make(map[string]domain.AppType),
		pending:  make(map[domain.AppType]bool),
		reported: make(map[domain.AppType]domain.SyncStatus),
	}
	for _, t := range targets {
		app := t.Checker.AppType()
		w.checkers[app] = t.Checker
		for _, p := range t.Paths {
			w.dirs[filepath.Clean(p)] = app
		}
	}
	return w
}

// Start runs an initial check of every scope and begins watching.
// Directories that do not exist yet are skipped.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	watched := 0
	for dir, app := range w.dirs {
		if _, err := os.Stat(dir); err != nil {
			logger.Debug("not watching %s for %s: %v", dir, app, err)
			continue
		}
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		watched++
	}
	if watched == 0 {
		_ = watcher.Close()
		return fmt.Errorf("no live configuration directories exist to watch")
	}
	w.watcher = watcher

	for app := range w.checkers {
		w.markPending(app)
	}
	w.flush(ctx)

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	go w.watchLoop(watchCtx)
	return nil
}

// Stop ends the watch loop and releases the file watcher.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
}

// Run starts the watcher and blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.wg.Done()
	debounce := time.NewTimer(time.Hour)
	if !debounce.Stop() {
		<-debounce.C
	}
	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error: %v", err)
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isRelevantEvent(ev) {
				continue
			}
			app, known := w.dirs[filepath.Dir(ev.Name)]
			if !known {
				continue
			}
			w.markPending(app)
			debounce.Reset(w.opts.Debounce)
		case <-debounce.C:
			if w.flush(ctx) {
				// Rate limited: try again after another quiet period.
				debounce.Reset(w.opts.Debounce)
			}
		}
	}
}

func (w *Watcher) markPending(app domain.AppType) {
	w.mu.Lock()
	w.pending[app] = true
	w.mu.Unlock()
}

// flush checks every pending scope the limiter admits. It reports whether
// any scope is still pending.
func (w *Watcher) flush(ctx context.Context) bool {
	w.mu.Lock()
	apps := make([]domain.AppType, 0, len(w.pending))
	for app := range w.pending {
		apps = append(apps, app)
	}
	w.mu.Unlock()

	for _, app := range apps {
		if !w.limiter.Allow() {
			logger.Debug("drift check for %s deferred by rate limit", app)
			continue
		}
		w.mu.Lock()
		delete(w.pending, app)
		w.mu.Unlock()
		w.check(ctx, app)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending) > 0
}

// check runs one drift check and notifies when the status changes.
// Check failures are already notified by the controller.
func (w *Watcher) check(ctx context.Context, app domain.AppType) {
	checker, ok := w.checkers[app]
	if !ok {
		return
	}
	result, err := checker.CheckConfigSync(ctx)
	if err != nil {
		logger.Debug("drift check for %s failed: %v", app, err)
		return
	}

	w.mu.Lock()
	previous, seen := w.reported[app]
	w.reported[app] = result.Status
	w.mu.Unlock()

	if seen && previous == result.Status {
		return
	}
	switch {
	case !result.InSync():
		w.notify(domain.Notification{Level: domain.NotifyError, AppType: app, Message: describeDrift(result)})
	case seen:
		w.notify(domain.Notification{Level: domain.NotifyInfo, AppType: app, Message: "Live configuration is back in sync"})
	}
}

func (w *Watcher) notify(n domain.Notification) {
	if w.notifier != nil {
		w.notifier.Notify(n)
	}
}

func describeDrift(r *domain.SyncCheckResult) string {
	var b strings.Builder
	switch r.Status {
	case domain.SyncStatusConflict:
		fmt.Fprintf(&b, "Live configuration switched to %s outside cfgswitch (stored: %s)", r.ExternalProvider, r.CurrentProvider)
	default:
		b.WriteString("Live configuration differs from the current provider")
	}
	for _, c := range r.Conflicts {
		if c.Field == "provider" {
			continue
		}
		fmt.Fprintf(&b, "; %s: %q -> %q", c.Field, c.LocalValue, c.ExternalValue)
	}
	return b.String()
}

// isRelevantEvent filters out cfgswitch's own lock, temp and backup files.
func isRelevantEvent(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(ev.Name)
	switch {
	case strings.HasPrefix(base, ".cfgswitch"):
		return false
	case strings.HasSuffix(base, ".bak"):
		return false
	default:
		return true
	}
}
