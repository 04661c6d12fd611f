// Package client holds the HTTP clients for the two upstream APIs: the
// identity-lookup provider and the PIX payment gateway.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/consultapay/checkout-gateway-go/internal/domain"
	"github.com/consultapay/checkout-gateway-go/internal/infra/keypool"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("client")

const maxBodyExcerpt = 512

// LookupClient queries the identity-lookup API with key rotation.
type LookupClient struct {
	httpClient *http.Client
	baseURL    string
	keys       *keypool.Pool
	cb         *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewLookupClient creates a new LookupClient.
func NewLookupClient(httpClient *http.Client, baseURL string, keys *keypool.Pool, cb *gobreaker.CircuitBreaker, logger *zap.Logger) *LookupClient {
	return &LookupClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		keys:       keys,
		cb:         cb,
		logger:     logger,
	}
}

// Lookup fetches identity data for an already-validated CPF (digits only).
// Each attempt takes the next key from the pool; a 429 rotates to the
// following key until the pool is exhausted, so the loop is bounded by the
// pool size. Expected upstream conditions come back as typed errors, never
// panics.
func (c *LookupClient) Lookup(ctx context.Context, cpf string) (*domain.LookupResult, error) {
	ctx, span := tracer.Start(ctx, "LookupClient.Lookup")
	defer span.End()
	span.SetAttributes(attribute.Int("keypool.size", c.keys.Size()))

	result, err := c.cb.Execute(func() (any, error) {
		return c.lookupWithRotation(ctx, cpf)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &domain.ErrCircuitOpen{Service: "lookup"}
		}
		return nil, err
	}
	return result.(*domain.LookupResult), nil
}

func (c *LookupClient) lookupWithRotation(ctx context.Context, cpf string) (*domain.LookupResult, error) {
	attempts := c.keys.Size()

	for attempt := 0; attempt < attempts; attempt++ {
		key := c.keys.Next()
		c.logger.Debug("lookup: using API key",
			zap.String("key_prefix", maskKey(key)),
			zap.Int("attempt", attempt+1),
		)

		result, err := c.doLookup(ctx, cpf, key)

		var rateLimited *domain.ErrRateLimited
		if errors.As(err, &rateLimited) && attempt < attempts-1 {
			c.logger.Warn("lookup: key rate-limited, rotating to next key",
				zap.String("key_prefix", maskKey(key)),
			)
			continue
		}
		return result, err
	}
	// Unreachable: the loop always returns on its last attempt.
	return nil, &domain.ErrRateLimited{Service: "lookup"}
}

func (c *LookupClient) doLookup(ctx context.Context, cpf, apiKey string) (*domain.LookupResult, error) {
	url := fmt.Sprintf("%s?cpf=%s", c.baseURL, cpf)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &domain.ErrTimeout{Operation: "lookup"}
		}
		return nil, &domain.ErrUpstream{Service: "lookup", Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &domain.ErrMalformedResponse{Service: "lookup", Err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return c.parseLookupBody(cpf, body)
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &domain.ErrUpstreamAuth{Service: "lookup"}
	case resp.StatusCode == http.StatusForbidden:
		return nil, &domain.ErrAccessDenied{Service: "lookup"}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &domain.ErrNotFound{Resource: "cpf", ID: domain.FormatCPF(cpf)}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &domain.ErrRateLimited{Service: "lookup"}
	default:
		return nil, &domain.ErrUpstream{
			Service: "lookup",
			Status:  resp.StatusCode,
			Body:    excerpt(body),
		}
	}
}

// parseLookupBody decodes a 2xx response. Providers wrap the payload under
// "data" or "result"; one level is unwrapped before normalization. An empty
// object is a soft "no data" outcome, distinct from a hard error.
func (c *LookupClient) parseLookupBody(cpf string, body []byte) (*domain.LookupResult, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &domain.ErrMalformedResponse{Service: "lookup", Err: err}
	}

	payload := raw
	if inner, ok := raw["data"].(map[string]any); ok {
		payload = inner
	}
	if inner, ok := raw["result"].(map[string]any); ok {
		payload = inner
	}

	if len(payload) == 0 {
		return &domain.LookupResult{
			Success: false,
			Message: "CPF válido, mas não foram encontrados dados na base de consulta",
		}, nil
	}

	person := normalizePerson(cpf, payload)
	return &domain.LookupResult{Success: true, Person: person}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// maskKey keeps only a short prefix of a credential for diagnostics.
func maskKey(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:8] + "..."
}

func excerpt(body []byte) string {
	if len(body) > maxBodyExcerpt {
		return string(body[:maxBodyExcerpt])
	}
	return string(body)
}
