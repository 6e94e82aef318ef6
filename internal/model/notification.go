package model

import "time"

// Severity classifies user-facing notifications
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a transient user-facing message.
// A zero Expiry means the notification never auto-removes.
type Notification struct {
	ID        string        `json:"id"`
	Severity  Severity      `json:"severity"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Expiry    time.Duration `json:"expiry,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}
