package entities

// WebhookEvent identifies a merchant notification type.
type WebhookEvent string

const (
	EventPaymentCompleted     WebhookEvent = "payment.completed"
	EventPaymentExpired       WebhookEvent = "payment.expired"
	EventPaymentStatusChanged WebhookEvent = "payment.status_changed"
)

// WebhookResult is the outcome of a single delivery attempt. Delivery is
// best-effort: callers inspect the result but never treat it as an error.
type WebhookResult struct {
	Sent   bool   `json:"sent"`
	Reason string `json:"reason,omitempty"`
	Status int    `json:"status,omitempty"`
}

// Skip reasons and failure classes reported in WebhookResult.Reason.
const (
	WebhookReasonNoWebhook      = "no_webhook"
	WebhookReasonDeliveryFailed = "delivery_failed"
	WebhookReasonNetworkError   = "network_error"
)
