package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/consultapay/checkout-gateway-go/internal/domain"
	"github.com/consultapay/checkout-gateway-go/internal/infra/keypool"
	"github.com/consultapay/checkout-gateway-go/internal/infra/observability"
	"github.com/consultapay/checkout-gateway-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// 4. Administração
// ============================================================

func adminLoginHandler(adminSvc *service.AdminService, accessTTL time.Duration, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Dados inválidos")
			return
		}

		token, err := adminSvc.Login(req.Password)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"token":      token,
			"token_type": "Bearer",
			"expires_in": int(accessTTL.Seconds()),
		})
	}
}

type adminStatsResponse struct {
	KeyPool keypool.Stats          `json:"key_pool"`
	Counter domain.Counter         `json:"counter"`
	Metrics observability.Snapshot `json:"metrics"`
}

func adminStatsHandler(webhookSvc *service.WebhookService, keys *keypool.Pool, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counter, err := webhookSvc.Counter()
		if err != nil {
			logger.Error("failed to read payment counter", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Erro ao ler contador de pagamentos")
			return
		}

		writeJSON(w, http.StatusOK, adminStatsResponse{
			KeyPool: keys.Stats(),
			Counter: counter,
			Metrics: metrics.GetSnapshot(),
		})
	}
}
