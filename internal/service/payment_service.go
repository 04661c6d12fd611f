package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/consultapay/checkout-gateway-go/internal/domain"
	"github.com/consultapay/checkout-gateway-go/internal/infra/observability"
	"github.com/consultapay/checkout-gateway-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var paymentTracer = otel.Tracer("service/payment")

const (
	defaultCustomerName = "Cliente"
	defaultCustomerCPF  = "00000000000"
)

// PaymentService builds PIX charges from checkout submissions and hands
// them to the gateway.
type PaymentService struct {
	gateway port.PaymentGateway
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(gateway port.PaymentGateway, metrics *observability.Metrics, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		gateway: gateway,
		metrics: metrics,
		logger:  logger,
	}
}

// CreatePixPayment validates the request and creates a charge. A
// non-positive amount fails before any network call.
func (s *PaymentService) CreatePixPayment(ctx context.Context, req *domain.PaymentRequest) (*domain.PaymentResult, error) {
	ctx, span := paymentTracer.Start(ctx, "PaymentService.CreatePixPayment")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("create_pix_payment", time.Since(start))
	}()

	if req.Amount <= 0 {
		s.metrics.IncrPayment("invalid")
		return nil, &domain.ErrValidation{Field: "amount", Message: "Valor inválido"}
	}
	span.SetAttributes(attribute.Float64("payment.amount", req.Amount))

	name := req.CustomerName
	if name == "" {
		name = defaultCustomerName
	}
	document := domain.CleanCPF(req.CustomerCPF)
	if document == "" {
		document = defaultCustomerCPF
	}
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Pagamento - R$ %s", formatBRL(req.Amount))
	}

	charge := &domain.PixCharge{
		Identifier:       newChargeIdentifier(),
		Amount:           req.Amount,
		CustomerName:     name,
		CustomerDocument: document,
		Description:      description,
		DueDate:          time.Now().Add(24 * time.Hour),
	}

	s.logger.Info("creating pix charge",
		zap.String("identifier", charge.Identifier),
		zap.Float64("amount", charge.Amount),
	)

	result, err := s.gateway.CreatePixCharge(ctx, charge)
	if err != nil {
		s.metrics.IncrPayment("error")
		s.metrics.IncrExternalError("gateway")
		return nil, err
	}

	result.Amount = req.Amount
	s.metrics.IncrPayment("success")
	return result, nil
}

// newChargeIdentifier builds the client-side idempotency id:
// pix_<unix-ms>_<random suffix>.
func newChargeIdentifier() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("pix_%d_%s", time.Now().UnixMilli(), suffix)
}

// formatBRL renders an amount the Brazilian way (comma decimal separator).
func formatBRL(amount float64) string {
	return strings.Replace(fmt.Sprintf("%.2f", amount), ".", ",", 1)
}
