package handler

import (
	"net/http"

	"github.com/consultapay/checkout-gateway-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// 1. Consulta de CPF
// ============================================================

func getCPFHandler(svc *service.LookupService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cpf/{cpf}")
		defer span.End()

		cpf := chi.URLParam(r, "cpf")
		if cpf == "" {
			writeError(w, http.StatusBadRequest, "CPF é obrigatório")
			return
		}
		span.SetAttributes(attribute.Int("cpf.length", len(cpf)))

		result, err := svc.Lookup(ctx, cpf)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
