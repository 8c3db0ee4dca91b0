package domain

// NotificationLevel classifies a side-channel signal.
type NotificationLevel string

const (
	NotifyLoading NotificationLevel = "loading"
	NotifySuccess NotificationLevel = "success"
	NotifyError   NotificationLevel = "error"
	NotifyInfo    NotificationLevel = "info"
)

// Notification is an advisory, human-readable progress or outcome signal.
// Nothing in the core depends on a notification being delivered.
type Notification struct {
	Level   NotificationLevel
	AppType AppType
	Message string

	// Kind is set on error notifications raised from a classified backend failure.
	Kind ErrorKind
}
