package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/consultapay/checkout-gateway-go/internal/domain"
	"github.com/consultapay/checkout-gateway-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// GatewayClient creates PIX charges on the payment gateway.
type GatewayClient struct {
	httpClient  *http.Client
	baseURL     string
	publicKey   string
	secretKey   string
	callbackURL string
	cb          *gobreaker.CircuitBreaker
	cfg         resilience.Config
	logger      *zap.Logger
}

// NewGatewayClient creates a new GatewayClient.
func NewGatewayClient(httpClient *http.Client, baseURL, publicKey, secretKey, callbackURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *GatewayClient {
	return &GatewayClient{
		httpClient:  httpClient,
		baseURL:     baseURL,
		publicKey:   publicKey,
		secretKey:   secretKey,
		callbackURL: callbackURL,
		cb:          cb,
		cfg:         cfg,
		logger:      logger,
	}
}

// chargePayload is the gateway's request shape for a PIX charge.
type chargePayload struct {
	Identifier  string            `json:"identifier"`
	Amount      float64           `json:"amount"`
	Client      chargeClient      `json:"client"`
	Products    []chargeProduct   `json:"products"`
	DueDate     string            `json:"dueDate"`
	Metadata    map[string]string `json:"metadata"`
	CallbackURL string            `json:"callbackUrl"`
}

type chargeClient struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
}

type chargeProduct struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// The gateway's response shape is not stable across integrations. Each
// logical field therefore resolves through an ordered list of candidate
// paths ("pix.code" means payload.pix.code); the first present, non-null
// value wins. Candidates are checked against the unwrapped "data" payload
// first, then against the response root. This order is contractual — tests
// pin it — so keep the tables and not ad hoc conditionals.
var (
	qrCodePaths    = []string{"qr_code", "qr_code_url", "pix.qr_code", "pix.image"}
	pixCodePaths   = []string{"pix_code", "copy_paste", "pix.copy_paste", "pix.code"}
	paymentIDPaths = []string{"id", "payment_id", "transactionId"}
	statusPaths    = []string{"status"}
	orderURLPaths  = []string{"order.url"}
)

// CreatePixCharge posts a charge to the gateway and normalizes the answer.
// Transport errors are retried with backoff; gateway rejections are not.
func (c *GatewayClient) CreatePixCharge(ctx context.Context, charge *domain.PixCharge) (*domain.PaymentResult, error) {
	ctx, span := tracer.Start(ctx, "GatewayClient.CreatePixCharge")
	defer span.End()
	span.SetAttributes(
		attribute.String("charge.identifier", charge.Identifier),
		attribute.Float64("charge.amount", charge.Amount),
	)

	payload := chargePayload{
		Identifier: charge.Identifier,
		Amount:     charge.Amount,
		Client: chargeClient{
			Name:     charge.CustomerName,
			Email:    "cliente@checkout.local",
			Phone:    "11999999999",
			Document: charge.CustomerDocument,
		},
		Products: []chargeProduct{
			{
				ID:       "checkout_item_001",
				Name:     charge.Description,
				Quantity: 1,
				Price:    charge.Amount,
			},
		},
		DueDate: charge.DueDate.Format("2006-01-02"),
		Metadata: map[string]string{
			"source":            "checkout_gateway",
			"customer_document": charge.CustomerDocument,
		},
		CallbackURL: c.callbackURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal charge payload: %w", err)
	}

	var result *domain.PaymentResult
	_, cbErr := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			var attemptErr error
			result, attemptErr = c.postCharge(ctx, body)
			return attemptErr
		})
	})
	if cbErr != nil {
		if errors.Is(cbErr, gobreaker.ErrOpenState) || errors.Is(cbErr, gobreaker.ErrTooManyRequests) {
			return nil, &domain.ErrCircuitOpen{Service: "gateway"}
		}
		return nil, cbErr
	}
	return result, nil
}

func (c *GatewayClient) postCharge(ctx context.Context, body []byte) (*domain.PaymentResult, error) {
	url := fmt.Sprintf("%s/gateway/pix/receive", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, resilience.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-public-key", c.publicKey)
	req.Header.Set("x-secret-key", c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, resilience.Permanent(&domain.ErrTimeout{Operation: "create pix charge"})
		}
		// Transport errors are worth a retry.
		return nil, &domain.ErrUpstream{Service: "gateway", Body: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resilience.Permanent(&domain.ErrMalformedResponse{Service: "gateway", Err: err})
	}

	c.logger.Debug("gateway: charge response",
		zap.Int("status", resp.StatusCode),
		zap.String("public_key_prefix", maskKey(c.publicKey)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resilience.Permanent(c.rejectionError(resp.StatusCode, raw))
	}

	return c.normalizeCharge(raw)
}

// rejectionError maps a non-2xx gateway answer to a typed error, pulling a
// human message out of the body when it is JSON.
func (c *GatewayClient) rejectionError(status int, raw []byte) error {
	switch status {
	case http.StatusUnauthorized:
		return &domain.ErrUpstreamAuth{Service: "gateway"}
	case http.StatusForbidden:
		return &domain.ErrAccessDenied{Service: "gateway"}
	}

	message := excerpt(raw)
	var errBody map[string]any
	if err := json.Unmarshal(raw, &errBody); err == nil {
		for _, k := range []string{"message", "error"} {
			if s, ok := errBody[k].(string); ok && s != "" {
				message = s
				break
			}
		}
	}
	return &domain.ErrUpstream{Service: "gateway", Status: status, Body: message}
}

func (c *GatewayClient) normalizeCharge(raw []byte) (*domain.PaymentResult, error) {
	var root map[string]any
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, resilience.Permanent(&domain.ErrMalformedResponse{Service: "gateway", Err: err})
	}

	payload := root
	if inner, ok := root["data"].(map[string]any); ok {
		payload = inner
	}

	status := resolveField(statusPaths, payload, root)
	if status == "" {
		status = "pending"
	}

	result := &domain.PaymentResult{
		Success:   true,
		PaymentID: resolveField(paymentIDPaths, payload, root),
		PixQRCode: resolveField(qrCodePaths, payload, root),
		PixCode:   resolveField(pixCodePaths, payload, root),
		Status:    status,
		OrderURL:  resolveField(orderURLPaths, payload, root),
		Message:   "PIX gerado com sucesso!",
	}
	if result.PaymentID == "" && result.PixCode == "" {
		return nil, resilience.Permanent(&domain.ErrMalformedResponse{
			Service: "gateway",
			Err:     errors.New("response carries neither a transaction id nor a pix code"),
		})
	}
	return result, nil
}

// resolveField walks the candidate paths in order against the payload and
// then the root, returning the first present non-empty value.
func resolveField(paths []string, payload, root map[string]any) string {
	for _, m := range []map[string]any{payload, root} {
		if m == nil {
			continue
		}
		for _, path := range paths {
			if v := valueAtPath(m, path); v != "" {
				return v
			}
		}
	}
	return ""
}

func valueAtPath(m map[string]any, path string) string {
	parts := strings.Split(path, ".")
	current := any(m)
	for _, part := range parts {
		obj, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		current = obj[part]
	}
	switch v := current.(type) {
	case string:
		return v
	case float64:
		return trimFloat(v)
	default:
		return ""
	}
}
