package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/consultapay/checkout-gateway-go/internal/domain"
	"github.com/consultapay/checkout-gateway-go/internal/infra/client"
	"github.com/consultapay/checkout-gateway-go/internal/infra/resilience"

	"go.uber.org/zap"
)

func newGatewayClient(t *testing.T, url string) *client.GatewayClient {
	t.Helper()
	httpClient := &http.Client{Timeout: 5 * time.Second}
	cb := resilience.NewCircuitBreaker("gateway-test")
	cfg := resilience.Config{MaxRetries: 2, InitialBackoff: 5 * time.Millisecond}
	return client.NewGatewayClient(httpClient, url, "pk_test", "sk_test_secret", "https://example.com/webhook", cb, cfg, zap.NewNop())
}

func testCharge() *domain.PixCharge {
	return &domain.PixCharge{
		Identifier:       "pix_1700000000000_abc123def",
		Amount:           49.9,
		CustomerName:     "Maria da Silva",
		CustomerDocument: "52998224725",
		Description:      "Pedido #42",
		DueDate:          time.Now().Add(24 * time.Hour),
	}
}

func TestCreatePixCharge_SendsGatewayPayloadAndAuthHeaders(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-public-key") != "pk_test" {
			t.Errorf("missing public key header, got %q", r.Header.Get("x-public-key"))
		}
		if r.Header.Get("x-secret-key") != "sk_test_secret" {
			t.Errorf("missing secret key header")
		}
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`{"transactionId":"tx-1","status":"pending","pix":{"code":"COPYPASTE","image":"data:image/png;base64,..."}}`))
	}))
	defer srv.Close()

	c := newGatewayClient(t, srv.URL)
	result, err := c.CreatePixCharge(context.Background(), testCharge())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatal("expected success")
	}

	if gotBody["identifier"] != "pix_1700000000000_abc123def" {
		t.Errorf("unexpected identifier: %v", gotBody["identifier"])
	}
	if gotBody["amount"] != 49.9 {
		t.Errorf("unexpected amount: %v", gotBody["amount"])
	}
	if gotBody["callbackUrl"] != "https://example.com/webhook" {
		t.Errorf("unexpected callback url: %v", gotBody["callbackUrl"])
	}
	clientBlock, _ := gotBody["client"].(map[string]any)
	if clientBlock["document"] != "52998224725" {
		t.Errorf("unexpected client block: %v", clientBlock)
	}
	if _, err := time.Parse("2006-01-02", gotBody["dueDate"].(string)); err != nil {
		t.Errorf("dueDate is not a date: %v", gotBody["dueDate"])
	}
}

// Pins the contractual resolution order for the known gateway shapes.
func TestCreatePixCharge_FieldPathResolution(t *testing.T) {
	cases := []struct {
		name          string
		body          string
		wantPaymentID string
		wantQRCode    string
		wantPixCode   string
		wantStatus    string
	}{
		{
			name:          "nested pix block with transactionId",
			body:          `{"pix":{"code":"X","image":"Y"},"transactionId":"T"}`,
			wantPaymentID: "T",
			wantQRCode:    "Y",
			wantPixCode:   "X",
			wantStatus:    "pending",
		},
		{
			name:          "flat shape under data",
			body:          `{"data":{"id":"p-9","qr_code":"QR","copy_paste":"CODE","status":"waiting_payment"}}`,
			wantPaymentID: "p-9",
			wantQRCode:    "QR",
			wantPixCode:   "CODE",
			wantStatus:    "waiting_payment",
		},
		{
			name:          "qr_code wins over nested pix image",
			body:          `{"id":"p-1","qr_code":"FLAT","pix":{"image":"NESTED","copy_paste":"CP"}}`,
			wantPaymentID: "p-1",
			wantQRCode:    "FLAT",
			wantPixCode:   "CP",
			wantStatus:    "pending",
		},
		{
			name:          "root id fallback when data block lacks one",
			body:          `{"id":"root-id","data":{"pix_code":"CODE"}}`,
			wantPaymentID: "root-id",
			wantQRCode:    "",
			wantPixCode:   "CODE",
			wantStatus:    "pending",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := newGatewayClient(t, srv.URL)
			result, err := c.CreatePixCharge(context.Background(), testCharge())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.PaymentID != tc.wantPaymentID {
				t.Errorf("payment_id: expected %q, got %q", tc.wantPaymentID, result.PaymentID)
			}
			if result.PixQRCode != tc.wantQRCode {
				t.Errorf("pix_qr_code: expected %q, got %q", tc.wantQRCode, result.PixQRCode)
			}
			if result.PixCode != tc.wantPixCode {
				t.Errorf("pix_code: expected %q, got %q", tc.wantPixCode, result.PixCode)
			}
			if result.Status != tc.wantStatus {
				t.Errorf("status: expected %q, got %q", tc.wantStatus, result.Status)
			}
		})
	}
}

func TestCreatePixCharge_RejectionCarriesGatewayMessage(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid document"}`))
	}))
	defer srv.Close()

	c := newGatewayClient(t, srv.URL)
	_, err := c.CreatePixCharge(context.Background(), testCharge())

	var upstream *domain.ErrUpstream
	if !errors.As(err, &upstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if upstream.Status != http.StatusUnprocessableEntity {
		t.Errorf("expected propagated status 422, got %d", upstream.Status)
	}
	if upstream.Body != "invalid document" {
		t.Errorf("expected parsed message, got %q", upstream.Body)
	}
	if calls != 1 {
		t.Errorf("rejections must not be retried, got %d calls", calls)
	}
}

func TestCreatePixCharge_NonJSONErrorBodyTruncated(t *testing.T) {
	long := make([]byte, 2048)
	for i := range long {
		long[i] = 'x'
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write(long)
	}))
	defer srv.Close()

	c := newGatewayClient(t, srv.URL)
	_, err := c.CreatePixCharge(context.Background(), testCharge())

	var upstream *domain.ErrUpstream
	if !errors.As(err, &upstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if len(upstream.Body) > 512 {
		t.Errorf("expected bounded excerpt, got %d bytes", len(upstream.Body))
	}
}

func TestCreatePixCharge_RetriesTransportErrors(t *testing.T) {
	// A server that drops the first connection then answers.
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("recorder does not support hijack")
			}
			conn, _, _ := hj.Hijack()
			conn.Close()
			return
		}
		w.Write([]byte(`{"transactionId":"tx-2","pix":{"code":"C"}}`))
	}))
	defer srv.Close()

	c := newGatewayClient(t, srv.URL)
	result, err := c.CreatePixCharge(context.Background(), testCharge())
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if result.PaymentID != "tx-2" {
		t.Errorf("unexpected payment id: %q", result.PaymentID)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}
