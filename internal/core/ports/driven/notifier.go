package driven

import "github.com/custodia-labs/cfgswitch/internal/core/domain"

// Notifier receives advisory progress and outcome signals.
// Implementations must not block for long and must not fail; delivery is
// best-effort and never affects correctness.
type Notifier interface {
	Notify(n domain.Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n domain.Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n domain.Notification) {
	f(n)
}
