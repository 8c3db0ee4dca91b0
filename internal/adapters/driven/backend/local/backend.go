package local

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driven"
)

// Ensure Backend implements the interface.
var _ driven.Backend = (*Backend)(nil)

// Options tunes a Backend.
type Options struct {
	// Now stamps created and updated times. Defaults to time.Now.
	Now func() time.Time
}

// Backend serves provider and prompt commands from local stores.
type Backend struct {
	providers driven.ProviderStore
	prompts   driven.PromptStore
	live      driven.LiveConfig
	now       func() time.Time
}

// New creates a local backend.
func New(providers driven.ProviderStore, prompts driven.PromptStore, live driven.LiveConfig, opts Options) *Backend {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Backend{
		providers: providers,
		prompts:   prompts,
		live:      live,
		now:       opts.Now,
	}
}

func checkApp(app domain.AppType) error {
	if !app.IsValid() {
		return domain.NewBackendError(domain.KindOther, "", fmt.Errorf("%w: %q", domain.ErrUnsupportedApp, app))
	}
	return nil
}

// storeError classifies a store failure.
func storeError(detail string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.NewBackendError(domain.KindNotFound, detail, err)
	case errors.Is(err, fs.ErrPermission):
		return domain.NewBackendError(domain.KindPermissionDenied, detail, err)
	default:
		return domain.NewBackendError(domain.KindOther, detail, err)
	}
}

// syncError classifies a live-file failure.
func syncError(detail string, err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return domain.NewBackendError(domain.KindPermissionDenied, detail, err)
	}
	return domain.NewBackendError(domain.KindSyncFailure, detail, err)
}

// stampID returns prefix-<unix seconds>, adding a counter when that id is
// already taken in the scope.
func stampID(prefix string, now time.Time, taken func(id string) bool) string {
	base := fmt.Sprintf("%s-%d", prefix, now.Unix())
	id := base
	for n := 2; taken(id); n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}
