package handler

import (
	"net/http"
	"time"

	"github.com/consultapay/checkout-gateway-go/internal/infra/keypool"
	"github.com/consultapay/checkout-gateway-go/internal/infra/observability"
	"github.com/consultapay/checkout-gateway-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// The checkout page calls POST /pix and GET /v1/cpf/{cpf} directly from the
// browser, so CORS stays wide open.
func NewRouter(lookupSvc *service.LookupService, paymentSvc *service.PaymentService, webhookSvc *service.WebhookService, adminSvc *service.AdminService, keys *keypool.Pool, metrics *observability.Metrics, accessTTL time.Duration, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Signature"},
		MaxAge:         300,
	}))

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Método não permitido")
	})

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(webhookSvc, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// =============================================
	// Checkout endpoints (called by the payment page)
	// =============================================
	r.Post("/pix", createPixHandler(paymentSvc, logger))
	r.Post("/webhook", webhookHandler(webhookSvc, logger))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. 🔍 Consulta de CPF
		// GET /v1/cpf/{cpf}
		// =============================================
		r.Get("/cpf/{cpf}", getCPFHandler(lookupSvc, logger))

		// =============================================
		// 2. 📊 Contador de pagamentos aprovados
		// GET /v1/payments/counter
		// =============================================
		r.Get("/payments/counter", paymentsCounterHandler(webhookSvc, logger))

		// =============================================
		// 3. 🔐 Administração (protected)
		// =============================================
		r.Post("/admin/login", adminLoginHandler(adminSvc, accessTTL, logger))
		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminSvc, logger))
			r.Get("/admin/stats", adminStatsHandler(webhookSvc, keys, metrics, logger))
		})
	})

	return r
}

// ============================================================
// Health
// ============================================================

func healthzHandler(webhookSvc *service.WebhookService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		counterStatus := "healthy"
		if _, err := webhookSvc.Counter(); err != nil {
			logger.Warn("healthz: counter store unreadable", zap.Error(err))
			status = "degraded"
			counterStatus = "degraded"
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status": status,
			"services": map[string]string{
				"counter_store": counterStatus,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
