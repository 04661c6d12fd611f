package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/consultapay/checkout-gateway-go/internal/domain"
	"github.com/consultapay/checkout-gateway-go/internal/infra/observability"
	"github.com/consultapay/checkout-gateway-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var webhookTracer = otel.Tracer("service/webhook")

// WebhookService verifies and processes gateway payment callbacks.
type WebhookService struct {
	store   port.CounterStore
	secret  []byte
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewWebhookService creates a new WebhookService.
func NewWebhookService(store port.CounterStore, secret string, metrics *observability.Metrics, logger *zap.Logger) *WebhookService {
	return &WebhookService{
		store:   store,
		secret:  []byte(secret),
		metrics: metrics,
		logger:  logger,
	}
}

// Process handles one webhook delivery. rawBody must be the exact bytes
// received on the wire — the signature is computed over them, and
// re-serializing parsed JSON would break verification.
//
// A missing signature is accepted and logged: the gateway does not sign
// every event.
func (s *WebhookService) Process(ctx context.Context, rawBody []byte, signature string) (domain.WebhookEvent, error) {
	_, span := webhookTracer.Start(ctx, "WebhookService.Process")
	defer span.End()

	var payload map[string]any
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return domain.WebhookEvent{}, &domain.ErrValidation{Field: "body", Message: "JSON inválido"}
	}

	if signature != "" {
		if !s.signatureMatches(rawBody, signature) {
			s.logger.Warn("webhook: signature mismatch, event rejected")
			return domain.WebhookEvent{}, &domain.ErrInvalidSignature{}
		}
		s.logger.Debug("webhook: signature verified")
	} else {
		s.logger.Warn("webhook: unsigned delivery accepted")
	}

	event := domain.ClassifyWebhook(payload)
	span.SetAttributes(
		attribute.String("webhook.event", event.RawType),
		attribute.String("webhook.kind", string(event.Kind)),
	)
	s.metrics.IncrWebhookEvent(string(event.Kind))

	switch event.Kind {
	case domain.EventApproved:
		counter, err := s.store.RecordApproved(event.PaymentID, event.Amount)
		if err != nil {
			s.logger.Error("webhook: failed to record approved payment",
				zap.String("payment_id", event.PaymentID),
				zap.Error(err),
			)
			return event, err
		}
		s.metrics.AddApprovedAmount(event.Amount)
		s.logger.Info("payment approved",
			zap.String("payment_id", event.PaymentID),
			zap.Float64("amount", event.Amount),
			zap.Float64("total", counter.Total),
			zap.Int64("count", counter.Count),
		)

	case domain.EventPending:
		s.logger.Info("payment pending", zap.String("payment_id", event.PaymentID))

	case domain.EventFailed:
		s.logger.Info("payment failed or cancelled",
			zap.String("payment_id", event.PaymentID),
			zap.String("status", event.Status),
		)

	default:
		// Unknown event types are logged and acknowledged, never an error.
		s.logger.Info("webhook: unknown event type", zap.String("event", event.RawType))
	}

	return event, nil
}

// Counter returns the persisted approved-payments counter.
func (s *WebhookService) Counter() (domain.Counter, error) {
	return s.store.Read()
}

func (s *WebhookService) signatureMatches(rawBody []byte, signature string) bool {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	// Constant-time compare; the header value is attacker-controlled.
	return hmac.Equal([]byte(expected), []byte(signature))
}
