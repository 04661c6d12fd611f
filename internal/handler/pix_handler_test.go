package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/consultapay/checkout-gateway-go/internal/domain"
)

func postPix(fx *routerFixture, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/pix", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	return rec
}

func TestCreatePixSuccess(t *testing.T) {
	fx := newTestRouter(t, "", "")
	fx.gateway.result = &domain.PaymentResult{
		Success:   true,
		PaymentID: "pay_1",
		PixQRCode: "https://qr.example/1.png",
		PixCode:   "000201brcode",
		Status:    "pending",
		Message:   "PIX gerado com sucesso!",
	}

	rec := postPix(fx, `{"amount":49.9,"customer_name":"Maria","customer_cpf":"529.982.247-25"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.PaymentResult
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success true")
	}
	if resp.PixCode != "000201brcode" {
		t.Errorf("expected pix code, got %q", resp.PixCode)
	}
	if resp.Amount != 49.9 {
		t.Errorf("expected amount 49.9, got %v", resp.Amount)
	}
	if fx.gateway.calls != 1 {
		t.Errorf("expected 1 gateway call, got %d", fx.gateway.calls)
	}
}

func TestCreatePixInvalidAmount(t *testing.T) {
	fx := newTestRouter(t, "", "")

	rec := postPix(fx, `{"amount":0,"customer_name":"Maria","customer_cpf":"52998224725"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if fx.gateway.calls != 0 {
		t.Errorf("gateway must not be called for invalid amount, got %d calls", fx.gateway.calls)
	}
}

func TestCreatePixMalformedBody(t *testing.T) {
	fx := newTestRouter(t, "", "")

	rec := postPix(fx, `{"amount":`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if fx.gateway.calls != 0 {
		t.Errorf("gateway must not be called for malformed body, got %d calls", fx.gateway.calls)
	}
}

func TestCreatePixProviderRejectionKeepsStatus(t *testing.T) {
	fx := newTestRouter(t, "", "")
	fx.gateway.err = &domain.ErrUpstream{Service: "gateway", Status: http.StatusUnprocessableEntity, Body: "Saldo insuficiente na conta"}

	rec := postPix(fx, `{"amount":25,"customer_name":"Maria","customer_cpf":"52998224725"}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Success {
		t.Error("expected success false")
	}
	if resp.Error != "Saldo insuficiente na conta" {
		t.Errorf("expected provider message, got %q", resp.Error)
	}
}

func TestGetCPFInvalidDigits(t *testing.T) {
	fx := newTestRouter(t, "", "")

	req := httptest.NewRequest(http.MethodGet, "/v1/cpf/11111111111", nil)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if fx.fetcher.calls != 0 {
		t.Errorf("upstream must not be called for invalid CPF, got %d calls", fx.fetcher.calls)
	}
}

func TestGetCPFSuccess(t *testing.T) {
	fx := newTestRouter(t, "", "")
	fx.fetcher.result = &domain.LookupResult{
		Success: true,
		Person:  &domain.Person{CPF: "529.982.247-25", Name: "Maria Silva"},
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/cpf/52998224725", nil)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.LookupResult
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Person == nil || resp.Person.Name != "Maria Silva" {
		t.Errorf("unexpected person: %+v", resp.Person)
	}
}
