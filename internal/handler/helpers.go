package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/consultapay/checkout-gateway-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// handleServiceError maps domain errors to HTTP responses. User-correctable
// validation messages pass through verbatim; everything upstream degrades to
// a generic message with the detail kept in server-side logs. Credentials
// and full secret keys never reach a response body.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var validation *domain.ErrValidation
	var upstreamAuth *domain.ErrUpstreamAuth
	var accessDenied *domain.ErrAccessDenied
	var notFound *domain.ErrNotFound
	var rateLimited *domain.ErrRateLimited
	var upstream *domain.ErrUpstream
	var malformed *domain.ErrMalformedResponse
	var timeout *domain.ErrTimeout
	var circuitOpen *domain.ErrCircuitOpen
	var unauthorized *domain.ErrUnauthorized
	var badSignature *domain.ErrInvalidSignature

	switch {
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.As(err, &upstreamAuth):
		logger.Error("upstream rejected our credentials", zap.String("service", upstreamAuth.Service))
		writeError(w, http.StatusBadGateway, "Erro de configuração do serviço. Tente novamente mais tarde")
	case errors.As(err, &accessDenied):
		logger.Error("upstream denied access", zap.String("service", accessDenied.Service))
		writeError(w, http.StatusBadGateway, "Acesso negado pelo serviço externo")
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, "CPF não encontrado na base de dados")
	case errors.As(err, &rateLimited):
		logger.Warn("rate limited on all keys", zap.String("service", rateLimited.Service))
		writeError(w, http.StatusTooManyRequests, "Limite de consultas excedido. Tente novamente mais tarde")
	case errors.As(err, &upstream):
		logger.Error("upstream error",
			zap.String("service", upstream.Service),
			zap.Int("status", upstream.Status),
			zap.String("body", upstream.Body),
		)
		writeError(w, http.StatusBadGateway, "Erro no serviço externo. Tente novamente mais tarde")
	case errors.As(err, &malformed):
		logger.Error("malformed upstream response", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Resposta inválida do serviço externo")
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, "Tempo de resposta excedido. Tente novamente mais tarde")
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Serviço temporariamente indisponível")
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &badSignature):
		logger.Warn("invalid webhook signature")
		writeError(w, http.StatusUnauthorized, "Assinatura inválida")
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
