package domain

import (
	"sort"
	"time"
)

// Provider is a named API endpoint configuration for one scope.
// At most one provider per AppType has IsCurrent set.
type Provider struct {
	// ID is unique within the scope. Generated by the caller on add.
	ID string

	// AppType is the owning scope.
	AppType AppType

	// Name is the human-readable name.
	Name string

	// Settings is the configuration written to the live file when the
	// provider becomes current (e.g. {"env": {"ANTHROPIC_API_KEY": "..."}}).
	Settings map[string]any

	// Category, Icon, IconColor and Notes are display metadata.
	Category  string
	Icon      string
	IconColor string
	Notes     string

	// SortIndex orders providers in listings. Nil sorts by creation time only.
	SortIndex *int

	// IsCurrent marks the active provider of the scope.
	IsCurrent bool

	// CreatedAt is when the provider was added.
	CreatedAt time.Time
}

// ProviderDraft is what a caller supplies when adding a provider.
// Identity, scope, timestamps and the current flag are assigned on add.
type ProviderDraft struct {
	Name      string
	Settings  map[string]any
	Category  string
	Icon      string
	IconColor string
	Notes     string
	SortIndex *int
}

// NewProvider builds a full provider from a draft.
func NewProvider(id string, app AppType, draft ProviderDraft, now time.Time) Provider {
	return Provider{
		ID:        id,
		AppType:   app,
		Name:      draft.Name,
		Settings:  draft.Settings,
		Category:  draft.Category,
		Icon:      draft.Icon,
		IconColor: draft.IconColor,
		Notes:     draft.Notes,
		SortIndex: draft.SortIndex,
		IsCurrent: false,
		CreatedAt: now,
	}
}

// ApplyCurrent returns a copy of providers where only id carries IsCurrent.
// An empty id clears the flag everywhere.
func ApplyCurrent(providers []Provider, id string) []Provider {
	out := make([]Provider, len(providers))
	for i, p := range providers {
		p.IsCurrent = id != "" && p.ID == id
		out[i] = p
	}
	return out
}

// CurrentCount returns how many providers are marked current.
func CurrentCount(providers []Provider) int {
	n := 0
	for i := range providers {
		if providers[i].IsCurrent {
			n++
		}
	}
	return n
}

// SortProviders orders providers by sort index, then creation time, then id.
// Providers without a sort index come after those with one.
func SortProviders(providers []Provider) {
	sort.SliceStable(providers, func(i, j int) bool {
		a, b := providers[i], providers[j]
		switch {
		case a.SortIndex != nil && b.SortIndex == nil:
			return true
		case a.SortIndex == nil && b.SortIndex != nil:
			return false
		case a.SortIndex != nil && b.SortIndex != nil && *a.SortIndex != *b.SortIndex:
			return *a.SortIndex < *b.SortIndex
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Clone returns a copy of p whose Settings and SortIndex share no memory with p.
func (p Provider) Clone() Provider {
	p.Settings = CloneSettings(p.Settings)
	if p.SortIndex != nil {
		idx := *p.SortIndex
		p.SortIndex = &idx
	}
	return p
}

// CloneSettings deep-copies nested maps and slices of a settings tree.
func CloneSettings(settings map[string]any) map[string]any {
	if settings == nil {
		return nil
	}
	out := make(map[string]any, len(settings))
	for k, v := range settings {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneSettings(t)
	case []any:
		s := make([]any, len(t))
		for i := range t {
			s[i] = cloneValue(t[i])
		}
		return s
	default:
		return v
	}
}
