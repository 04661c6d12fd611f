package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/consultapay/checkout-gateway-go/internal/domain"
	"github.com/consultapay/checkout-gateway-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// 3. Webhook de confirmação de pagamento
// ============================================================

type webhookResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	EventType string `json:"event_type"`
	PaymentID string `json:"payment_id,omitempty"`
}

// webhookHandler receives payment notifications from the provider. The
// signature covers the raw body exactly as received, so the body is handed
// to the service undecoded.
func webhookHandler(svc *service.WebhookService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /webhook")
		defer span.End()

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Erro ao ler o corpo da requisição")
			return
		}
		if len(body) == 0 {
			writeError(w, http.StatusBadRequest, "Body vazio")
			return
		}

		event, err := svc.Process(ctx, body, r.Header.Get("X-Signature"))
		if err != nil {
			var badSignature *domain.ErrInvalidSignature
			var validation *domain.ErrValidation
			switch {
			case errors.As(err, &badSignature):
				logger.Warn("webhook signature mismatch", zap.String("remote_addr", r.RemoteAddr))
				writeError(w, http.StatusUnauthorized, "Assinatura inválida")
			case errors.As(err, &validation):
				writeError(w, http.StatusBadRequest, validation.Message)
			default:
				logger.Error("webhook processing failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "Erro ao processar webhook")
			}
			return
		}
		span.SetAttributes(attribute.String("webhook.event", string(event.Kind)))

		writeJSON(w, http.StatusOK, webhookResponse{
			Status:    "success",
			Message:   "Webhook processado com sucesso",
			EventType: event.RawType,
			PaymentID: event.PaymentID,
		})
	}
}

func paymentsCounterHandler(svc *service.WebhookService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counter, err := svc.Counter()
		if err != nil {
			logger.Error("failed to read payment counter", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Erro ao ler contador de pagamentos")
			return
		}

		writeJSON(w, http.StatusOK, counter)
	}
}
