package domain

// NotificationKind distinguishes success toasts from failures.
type NotificationKind string

const (
	NotifySuccess         NotificationKind = "success"
	NotifyValidationError NotificationKind = "validation_error"
)

// Notification is the user-visible toast produced by an action.
type Notification struct {
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
}

// Failed reports whether the notification describes a rejected action.
func (n Notification) Failed() bool { return n.Kind != NotifySuccess }
