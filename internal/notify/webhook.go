// Package notify delivers transaction receipts and schedule failure notices
// to an external webhook endpoint.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/internal/service"
)

// WebhookNotifier posts JSON events to a configured URL. Delivery is best
// effort; callers must treat failures as non-fatal.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier posting to the given URL.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type webhookEvent struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type receiptPayload struct {
	TransactionID   string `json:"transaction_id"`
	ReferenceNumber string `json:"reference_number"`
	Type            string `json:"type"`
	Status          string `json:"status"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
}

type scheduleFailurePayload struct {
	ScheduledPaymentID string `json:"scheduled_payment_id"`
	Amount             string `json:"amount"`
	Currency           string `json:"currency"`
	Reason             string `json:"reason"`
}

// TransactionReceipt posts a completed-transaction event.
func (n *WebhookNotifier) TransactionReceipt(ctx context.Context, result *service.TransactionResult) error {
	return n.send(ctx, webhookEvent{
		Event:     "transaction.completed",
		Timestamp: result.Timestamp,
		Data: receiptPayload{
			TransactionID:   result.TransactionID.String(),
			ReferenceNumber: result.ReferenceNumber,
			Type:            string(result.Type),
			Status:          string(result.Status),
			Amount:          result.Amount.StringFixed(2),
			Currency:        result.Currency,
		},
	})
}

// ScheduledPaymentFailed posts a schedule-failure event.
func (n *WebhookNotifier) ScheduledPaymentFailed(ctx context.Context, sp *domain.ScheduledPayment, reason string) error {
	return n.send(ctx, webhookEvent{
		Event:     "scheduled_payment.failed",
		Timestamp: sp.UpdatedAt,
		Data: scheduleFailurePayload{
			ScheduledPaymentID: sp.ID.String(),
			Amount:             sp.Amount.StringFixed(2),
			Currency:           sp.Currency,
			Reason:             reason,
		},
	})
}

func (n *WebhookNotifier) send(ctx context.Context, event webhookEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "CoreBank-Webhook/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Nop is a notifier that discards every event. Used when no webhook URL is
// configured.
type Nop struct{}

// TransactionReceipt discards the event.
func (Nop) TransactionReceipt(context.Context, *service.TransactionResult) error { return nil }

// ScheduledPaymentFailed discards the event.
func (Nop) ScheduledPaymentFailed(context.Context, *domain.ScheduledPayment, string) error {
	return nil
}

var (
	_ service.Notifier = (*WebhookNotifier)(nil)
	_ service.Notifier = Nop{}
)
