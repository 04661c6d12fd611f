package service

import (
	"context"
	"time"

	"github.com/consultapay/checkout-gateway-go/internal/domain"
	"github.com/consultapay/checkout-gateway-go/internal/infra/cache"
	"github.com/consultapay/checkout-gateway-go/internal/infra/observability"
	"github.com/consultapay/checkout-gateway-go/internal/infra/resilience"
	"github.com/consultapay/checkout-gateway-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var lookupTracer = otel.Tracer("service/lookup")

// LookupService validates CPFs locally and orchestrates upstream lookups.
// Every upstream query costs API credits, so results are cached per CPF and
// concurrent duplicate queries are collapsed into a single flight.
type LookupService struct {
	fetcher  port.LookupFetcher
	cache    *cache.InMemory[*domain.LookupResult]
	bulkhead *resilience.Bulkhead
	group    singleflight.Group
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewLookupService creates a new LookupService.
func NewLookupService(fetcher port.LookupFetcher, resultCache *cache.InMemory[*domain.LookupResult], maxConcurrency int, metrics *observability.Metrics, logger *zap.Logger) *LookupService {
	return &LookupService{
		fetcher:  fetcher,
		cache:    resultCache,
		bulkhead: resilience.NewBulkhead(maxConcurrency),
		metrics:  metrics,
		logger:   logger,
	}
}

// Lookup validates the CPF and fetches identity data for it. Invalid input
// fails locally; no network call is made.
func (s *LookupService) Lookup(ctx context.Context, rawCPF string) (*domain.LookupResult, error) {
	ctx, span := lookupTracer.Start(ctx, "LookupService.Lookup")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("lookup", time.Since(start))
	}()

	digits := domain.CleanCPF(rawCPF)
	if !domain.IsValidCPF(digits) {
		s.metrics.IncrLookup("invalid")
		return nil, &domain.ErrValidation{Field: "cpf", Message: "CPF inválido"}
	}
	span.SetAttributes(attribute.Bool("lookup.valid_cpf", true))

	if cached, ok := s.cache.Get(digits); ok {
		s.metrics.IncrCacheHit("lookup")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("lookup")

	v, err, shared := s.group.Do(digits, func() (any, error) {
		if err := s.bulkhead.Acquire(ctx); err != nil {
			return nil, err
		}
		defer s.bulkhead.Release()

		return s.fetcher.Lookup(ctx, digits)
	})
	if err != nil {
		s.metrics.IncrLookup("error")
		s.metrics.IncrExternalError("lookup")
		return nil, err
	}
	if shared {
		s.logger.Debug("lookup: shared in-flight result",
			zap.String("cpf", domain.FormatCPF(digits)),
		)
	}

	result := v.(*domain.LookupResult)
	if result.Success {
		s.metrics.IncrLookup("success")
		s.cache.Set(digits, result)
	} else {
		s.metrics.IncrLookup("no_data")
	}
	return result, nil
}
