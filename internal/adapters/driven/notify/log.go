package notify

import (
	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driven"
	"github.com/custodia-labs/cfgswitch/internal/logger"
)

// Ensure LogNotifier implements the interface.
var _ driven.Notifier = LogNotifier{}

// LogNotifier forwards notifications to the verbose logger.
type LogNotifier struct{}

// Notify logs n. Errors carry their kind.
func (LogNotifier) Notify(n domain.Notification) {
	switch n.Level {
	case domain.NotifyError:
		logger.Warn("%s: %s (%s)", n.AppType, n.Message, n.Kind)
	case domain.NotifyLoading:
		logger.Debug("%s: %s", n.AppType, n.Message)
	default:
		logger.Info("%s: %s", n.AppType, n.Message)
	}
}

// Multi fans a notification out to several notifiers in order.
type Multi []driven.Notifier

// Notify delivers n to every non-nil notifier.
func (m Multi) Notify(n domain.Notification) {
	for _, target := range m {
		if target != nil {
			target.Notify(n)
		}
	}
}
