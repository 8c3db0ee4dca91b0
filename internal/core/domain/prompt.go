package domain

import (
	"sort"
	"time"
)

// Prompt is a named preset instruction payload for one scope.
// At most one prompt per AppType has Enabled set; the enabled prompt is
// the one mirrored into the scope's live prompt file.
type Prompt struct {
	ID          string
	AppType     AppType
	Name        string
	Content     string
	Description string
	Enabled     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PromptSet maps prompt ID to prompt. Iteration order is irrelevant.
type PromptSet map[string]Prompt

// Clone returns an independent copy of the set.
func (s PromptSet) Clone() PromptSet {
	out := make(PromptSet, len(s))
	for id, p := range s {
		out[id] = p
	}
	return out
}

// EnabledIDs returns the ids of enabled prompts in sorted order.
// A consistent set yields at most one id.
func (s PromptSet) EnabledIDs() []string {
	var ids []string
	for id, p := range s {
		if p.Enabled {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Enabled returns the enabled prompt, if any.
func (s PromptSet) Enabled() (Prompt, bool) {
	ids := s.EnabledIDs()
	if len(ids) == 0 {
		return Prompt{}, false
	}
	return s[ids[0]], true
}

// Sorted returns the prompts ordered by creation time, then id.
func (s PromptSet) Sorted() []Prompt {
	out := make([]Prompt, 0, len(s))
	for _, p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ApplyEnabled returns the post-state of enabling or disabling id.
//
// Enabling clears every other prompt's flag and sets id. Disabling clears
// only id. The input set is never modified. Backends and the optimistic
// client path both derive their post-state from this function.
func ApplyEnabled(set PromptSet, id string, enabled bool) PromptSet {
	out := set.Clone()
	if enabled {
		for pid, p := range out {
			p.Enabled = pid == id
			out[pid] = p
		}
		return out
	}
	if p, ok := out[id]; ok {
		p.Enabled = false
		out[id] = p
	}
	return out
}
