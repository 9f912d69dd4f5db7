package alert

import "netguard-ids/internal/model"

// Notifier interface for alert notification
type Notifier interface {
	SendAlert(alert model.Alert) error
}
