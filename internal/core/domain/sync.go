package domain

import "time"

// SyncStatus is the outcome of comparing stored provider state with the live file.
type SyncStatus string

const (
	// SyncStatusInSync means the live file matches the current provider.
	SyncStatusInSync SyncStatus = "in_sync"

	// SyncStatusOutOfSync means the live file differs but cannot be attributed
	// to another provider (missing, unreadable or unrecognised).
	SyncStatusOutOfSync SyncStatus = "out_of_sync"

	// SyncStatusConflict means the live file was changed to a different provider.
	SyncStatusConflict SyncStatus = "conflict"
)

// UnknownProvider is reported when the live file cannot be attributed.
const UnknownProvider = "unknown"

// ConfigConflict describes one differing field.
// Secret values are masked before they reach this struct.
type ConfigConflict struct {
	Field         string `json:"field"`
	LocalValue    string `json:"local_value"`
	ExternalValue string `json:"external_value"`
}

// SyncCheckResult is a read-only drift report for one scope.
type SyncCheckResult struct {
	Status           SyncStatus       `json:"status"`
	CurrentProvider  string           `json:"current_provider"`
	ExternalProvider string           `json:"external_provider"`
	LastModified     *time.Time       `json:"last_modified,omitempty"`
	Conflicts        []ConfigConflict `json:"conflicts,omitempty"`
}

// InSync returns true if no drift was detected.
func (r *SyncCheckResult) InSync() bool {
	return r != nil && r.Status == SyncStatusInSync
}
