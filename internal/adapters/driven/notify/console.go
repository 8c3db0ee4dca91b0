package notify

import (
	"fmt"
	"io"
	"sync"

	"golang.org/x/term"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
	"github.com/custodia-labs/cfgswitch/internal/core/ports/driven"
)

// Ensure ConsoleNotifier implements the interface.
var _ driven.Notifier = (*ConsoleNotifier)(nil)

var levelMarkers = map[domain.NotificationLevel]string{
	domain.NotifyLoading: "...",
	domain.NotifySuccess: "ok",
	domain.NotifyError:   "error",
	domain.NotifyInfo:    "info",
}

// ConsoleNotifier prints one line per notification.
// Colour is used only when requested and w is a terminal.
type ConsoleNotifier struct {
	mu     sync.Mutex
	w      io.Writer
	styles *Styles
	color  bool
}

// NewConsoleNotifier creates a notifier writing to w.
func NewConsoleNotifier(w io.Writer, color bool) *ConsoleNotifier {
	return &ConsoleNotifier{
		w:      w,
		styles: NewStyles(nil),
		color:  color && isTerminal(w),
	}
}

// Colored reports whether output is styled.
func (c *ConsoleNotifier) Colored() bool {
	return c.color
}

// Notify writes n. Write errors are ignored.
func (c *ConsoleNotifier) Notify(n domain.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.w, c.format(n))
}

func (c *ConsoleNotifier) format(n domain.Notification) string {
	marker, ok := levelMarkers[n.Level]
	if !ok {
		marker = string(n.Level)
	}
	scope := fmt.Sprintf("[%s]", n.AppType)
	if n.AppType == "" {
		scope = "[cfgswitch]"
	}

	if !c.color {
		return fmt.Sprintf("%s %s: %s", scope, marker, n.Message)
	}
	style := c.styles.ForLevel(n.Level)
	return fmt.Sprintf("%s %s %s", c.styles.Scope.Render(scope), style.Render(marker+":"), n.Message)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
