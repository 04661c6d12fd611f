// Package port defines the interfaces between services and infrastructure.
// Services accept these interfaces; infra packages return concrete types.
package port

import (
	"context"

	"github.com/consultapay/checkout-gateway-go/internal/domain"
)

// LookupFetcher queries the external identity-lookup API for a CPF that has
// already passed local validation (digits only).
type LookupFetcher interface {
	Lookup(ctx context.Context, cpf string) (*domain.LookupResult, error)
}

// PaymentGateway creates PIX charges on the external payment gateway and
// normalizes its response shapes.
type PaymentGateway interface {
	CreatePixCharge(ctx context.Context, charge *domain.PixCharge) (*domain.PaymentResult, error)
}

// CounterStore persists the approved-payments counter and log.
type CounterStore interface {
	Read() (domain.Counter, error)
	Write(c domain.Counter) error
	RecordApproved(paymentID string, amount float64) (domain.Counter, error)
}
