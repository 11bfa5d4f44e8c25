package usecases

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
	"tapmove.backend/internal/domain/entities"
	"tapmove.backend/internal/domain/repositories"
	"tapmove.backend/pkg/logger"
	"tapmove.backend/pkg/metrics"
)

const (
	headerEvent     = "X-TapMove-Event"
	headerTimestamp = "X-TapMove-Timestamp"

	defaultWebhookTimeout = 10 * time.Second
)

// Notifier delivers merchant webhooks. Every method returns a result value,
// never an error: delivery failure must not affect the triggering operation.
type Notifier interface {
	NotifyPaymentCompleted(ctx context.Context, session *entities.PaymentSession) entities.WebhookResult
	NotifyPaymentExpired(ctx context.Context, session *entities.PaymentSession) entities.WebhookResult
	NotifyStatusChanged(ctx context.Context, merchantAddress, paymentID string, status entities.PaymentStatus) entities.WebhookResult
}

// WebhookNotifier posts lifecycle events to a merchant's registered webhook
// URL. Single attempt, no retry.
type WebhookNotifier struct {
	merchantRepo repositories.MerchantRepository
	client       *http.Client
	now          func() time.Time
}

func NewWebhookNotifier(merchantRepo repositories.MerchantRepository, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &WebhookNotifier{
		merchantRepo: merchantRepo,
		client:       &http.Client{Timeout: timeout},
		now:          time.Now,
	}
}

type webhookMerchantBlock struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// NotifyPaymentCompleted fires payment.completed with the settlement details.
func (n *WebhookNotifier) NotifyPaymentCompleted(ctx context.Context, session *entities.PaymentSession) entities.WebhookResult {
	merchant, result := n.lookupMerchant(ctx, session.MerchantAddress)
	if merchant == nil {
		return result
	}

	timestamp := n.now().UTC().Format(time.RFC3339)
	payload := map[string]interface{}{
		"event":     string(entities.EventPaymentCompleted),
		"timestamp": timestamp,
		"payment": map[string]interface{}{
			"id":            session.ID,
			"amount":        session.Amount,
			"txHash":        session.TxHash.String,
			"senderAddress": session.SenderAddress.String,
		},
		"merchant": webhookMerchantBlock{Address: merchant.Address, Name: merchant.Name},
	}
	return n.deliver(ctx, merchant, entities.EventPaymentCompleted, timestamp, payload)
}

// NotifyPaymentExpired fires payment.expired with the original creation and
// expiry timestamps.
func (n *WebhookNotifier) NotifyPaymentExpired(ctx context.Context, session *entities.PaymentSession) entities.WebhookResult {
	merchant, result := n.lookupMerchant(ctx, session.MerchantAddress)
	if merchant == nil {
		return result
	}

	timestamp := n.now().UTC().Format(time.RFC3339)
	payload := map[string]interface{}{
		"event":     string(entities.EventPaymentExpired),
		"timestamp": timestamp,
		"payment": map[string]interface{}{
			"id":        session.ID,
			"amount":    session.Amount,
			"expiredAt": session.ExpiresAt.UnixMilli(),
			"createdAt": session.CreatedAt.UTC().Format(time.RFC3339),
		},
		"merchant": webhookMerchantBlock{Address: merchant.Address, Name: merchant.Name},
	}
	return n.deliver(ctx, merchant, entities.EventPaymentExpired, timestamp, payload)
}

// NotifyStatusChanged fires the generic payment.status_changed event.
func (n *WebhookNotifier) NotifyStatusChanged(ctx context.Context, merchantAddress, paymentID string, status entities.PaymentStatus) entities.WebhookResult {
	merchant, result := n.lookupMerchant(ctx, merchantAddress)
	if merchant == nil {
		return result
	}

	timestamp := n.now().UTC().Format(time.RFC3339)
	payload := map[string]interface{}{
		"event":     string(entities.EventPaymentStatusChanged),
		"timestamp": timestamp,
		"paymentId": paymentID,
		"status":    string(status),
	}
	return n.deliver(ctx, merchant, entities.EventPaymentStatusChanged, timestamp, payload)
}

func (n *WebhookNotifier) lookupMerchant(ctx context.Context, address string) (*entities.Merchant, entities.WebhookResult) {
	merchant, err := n.merchantRepo.GetByAddress(ctx, address)
	if err != nil || !merchant.WebhookURL.Valid || merchant.WebhookURL.String == "" {
		logger.Debug(ctx, "no webhook configured for merchant", zap.String("merchant", address))
		metrics.WebhookDeliveries.WithLabelValues("skipped").Inc()
		return nil, entities.WebhookResult{Sent: false, Reason: entities.WebhookReasonNoWebhook}
	}
	return merchant, entities.WebhookResult{}
}

func (n *WebhookNotifier) deliver(ctx context.Context, merchant *entities.Merchant, event entities.WebhookEvent, timestamp string, payload interface{}) entities.WebhookResult {
	body, err := json.Marshal(payload)
	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues("failed").Inc()
		return entities.WebhookResult{Sent: false, Reason: entities.WebhookReasonNetworkError}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, merchant.WebhookURL.String, bytes.NewReader(body))
	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues("failed").Inc()
		return entities.WebhookResult{Sent: false, Reason: entities.WebhookReasonNetworkError}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerEvent, string(event))
	req.Header.Set(headerTimestamp, timestamp)

	resp, err := n.client.Do(req)
	if err != nil {
		logger.Warn(ctx, "webhook delivery error",
			zap.String("merchant", merchant.Address),
			zap.String("event", string(event)),
			zap.Error(err))
		metrics.WebhookDeliveries.WithLabelValues("failed").Inc()
		return entities.WebhookResult{Sent: false, Reason: entities.WebhookReasonNetworkError}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn(ctx, "webhook delivery failed",
			zap.String("merchant", merchant.Address),
			zap.String("event", string(event)),
			zap.Int("status", resp.StatusCode))
		metrics.WebhookDeliveries.WithLabelValues("failed").Inc()
		return entities.WebhookResult{Sent: false, Reason: entities.WebhookReasonDeliveryFailed, Status: resp.StatusCode}
	}

	logger.Debug(ctx, "webhook delivered",
		zap.String("merchant", merchant.Address),
		zap.String("event", string(event)))
	metrics.WebhookDeliveries.WithLabelValues("sent").Inc()
	return entities.WebhookResult{Sent: true, Status: resp.StatusCode}
}
