package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/consultapay/checkout-gateway-go/internal/domain"
	"github.com/consultapay/checkout-gateway-go/internal/handler"
	"github.com/consultapay/checkout-gateway-go/internal/infra/cache"
	"github.com/consultapay/checkout-gateway-go/internal/infra/counter"
	"github.com/consultapay/checkout-gateway-go/internal/infra/keypool"
	"github.com/consultapay/checkout-gateway-go/internal/infra/observability"
	"github.com/consultapay/checkout-gateway-go/internal/service"

	"go.uber.org/zap"
)

type fakeFetcher struct {
	result *domain.LookupResult
	err    error
	calls  int
}

func (f *fakeFetcher) Lookup(ctx context.Context, cpf string) (*domain.LookupResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeGateway struct {
	result *domain.PaymentResult
	err    error
	calls  int
}

func (f *fakeGateway) CreatePixCharge(ctx context.Context, charge *domain.PixCharge) (*domain.PaymentResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type routerFixture struct {
	router  http.Handler
	fetcher *fakeFetcher
	gateway *fakeGateway
	store   *counter.FileStore
}

func newTestRouter(t *testing.T, webhookSecret, adminPasswordHash string) *routerFixture {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	dir := t.TempDir()
	store := counter.NewFileStore(
		filepath.Join(dir, "payment_counter.json"),
		filepath.Join(dir, "payments_log.txt"),
	)

	fetcher := &fakeFetcher{}
	gateway := &fakeGateway{}

	keys, err := keypool.New([]string{"key-a", "key-b"})
	if err != nil {
		t.Fatalf("keypool.New: %v", err)
	}

	lookupSvc := service.NewLookupService(fetcher, cache.New[*domain.LookupResult](time.Minute), 4, metrics, logger)
	paymentSvc := service.NewPaymentService(gateway, metrics, logger)
	webhookSvc := service.NewWebhookService(store, webhookSecret, metrics, logger)
	adminSvc := service.NewAdminService(adminPasswordHash, "test-jwt-secret", time.Hour, logger)

	router := handler.NewRouter(lookupSvc, paymentSvc, webhookSvc, adminSvc, keys, metrics, time.Hour, logger)

	return &routerFixture{router: router, fetcher: fetcher, gateway: gateway, store: store}
}

func TestHealthz(t *testing.T) {
	fx := newTestRouter(t, "", "")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	fx.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	fx := newTestRouter(t, "", "")

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	fx.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	fx := newTestRouter(t, "", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	fx.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMethodNotAllowedReturnsJSON(t *testing.T) {
	fx := newTestRouter(t, "", "")

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()

	fx.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
}

func TestCORSPreflight(t *testing.T) {
	fx := newTestRouter(t, "", "")

	req := httptest.NewRequest(http.MethodOptions, "/pix", nil)
	req.Header.Set("Origin", "https://checkout.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	fx.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected Access-Control-Allow-Origin *, got %q", got)
	}
}
