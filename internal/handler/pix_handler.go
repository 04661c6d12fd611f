package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/consultapay/checkout-gateway-go/internal/domain"
	"github.com/consultapay/checkout-gateway-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// 2. Geração de pagamento PIX
// ============================================================

func createPixHandler(svc *service.PaymentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /pix")
		defer span.End()

		var req struct {
			Amount       float64 `json:"amount"`
			CustomerName string  `json:"customer_name"`
			CustomerCPF  string  `json:"customer_cpf"`
			Description  string  `json:"description,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Dados inválidos")
			return
		}
		span.SetAttributes(attribute.Float64("payment.amount", req.Amount))

		result, err := svc.CreatePixPayment(ctx, &domain.PaymentRequest{
			Amount:       req.Amount,
			CustomerName: req.CustomerName,
			CustomerCPF:  req.CustomerCPF,
			Description:  req.Description,
		})
		if err != nil {
			// Provider rejections keep their original status code and message
			// so the checkout page can show what the provider said.
			var upstream *domain.ErrUpstream
			if errors.As(err, &upstream) && upstream.Status >= 400 {
				logger.Error("payment provider rejected charge",
					zap.Int("status", upstream.Status),
					zap.String("message", upstream.Body),
				)
				msg := upstream.Body
				if msg == "" {
					msg = "Erro ao gerar pagamento PIX"
				}
				writeError(w, upstream.Status, msg)
				return
			}
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
