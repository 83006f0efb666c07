package enums

import "fmt"

// WebhookEventType enumerates the internal events a user webhook can subscribe to.
type WebhookEventType string

const (
	WebhookEventLinkClicked         WebhookEventType = "link.clicked"
	WebhookEventProfileViewed       WebhookEventType = "profile.viewed"
	WebhookEventSubscriptionChanged WebhookEventType = "subscription.changed"
	WebhookEventBackupCompleted     WebhookEventType = "backup.completed"
)

var validWebhookEventTypes = []WebhookEventType{
	WebhookEventLinkClicked,
	WebhookEventProfileViewed,
	WebhookEventSubscriptionChanged,
	WebhookEventBackupCompleted,
}

// String implements fmt.Stringer.
func (w WebhookEventType) String() string {
	return string(w)
}

// IsValid reports whether the value is known.
func (w WebhookEventType) IsValid() bool {
	for _, candidate := range validWebhookEventTypes {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWebhookEventType converts raw input into a WebhookEventType.
func ParseWebhookEventType(value string) (WebhookEventType, error) {
	for _, candidate := range validWebhookEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid webhook event type %q", value)
}
