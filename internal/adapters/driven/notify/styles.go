package notify

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
)

// Theme defines the colour palette for notifications.
type Theme struct {
	// Scope tags the application a notification belongs to.
	Scope lipgloss.Color

	// Muted is for in-progress messages.
	Muted lipgloss.Color

	// Success indicates positive outcomes.
	Success lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color

	// Info is for neutral messages.
	Info lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Scope:   lipgloss.Color("#7C3AED"), // Purple
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		Success: lipgloss.Color("#A6E3A1"), // Green
		Error:   lipgloss.Color("#F38BA8"), // Red
		Info:    lipgloss.Color("#06B6D4"), // Cyan
	}
}

// Styles contains pre-configured lipgloss styles per notification level.
type Styles struct {
	Scope   lipgloss.Style
	Loading lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		Scope: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Scope),

		Loading: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Error),

		Info: lipgloss.NewStyle().
			Foreground(theme.Info),
	}
}

// ForLevel returns the style used for a notification level.
func (s *Styles) ForLevel(level domain.NotificationLevel) lipgloss.Style {
	switch level {
	case domain.NotifyLoading:
		return s.Loading
	case domain.NotifySuccess:
		return s.Success
	case domain.NotifyError:
		return s.Error
	default:
		return s.Info
	}
}
