package domain

import "fmt"

// Error types for consistent error handling across the gateway.
// Local validation errors never reach the network; upstream conditions are
// mapped to these types instead of leaking raw responses to callers.

// ErrValidation indicates user-correctable bad input (invalid CPF, amount).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUpstreamAuth indicates our credentials were rejected by an upstream
// API (401). Operator-facing, not user-correctable.
type ErrUpstreamAuth struct {
	Service string
}

func (e *ErrUpstreamAuth) Error() string {
	return fmt.Sprintf("upstream rejected credentials [%s]", e.Service)
}

// ErrAccessDenied indicates the upstream refused the operation (403).
type ErrAccessDenied struct {
	Service string
}

func (e *ErrAccessDenied) Error() string {
	return fmt.Sprintf("upstream denied access [%s]", e.Service)
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrRateLimited indicates the upstream quota is exhausted on every
// available key.
type ErrRateLimited struct {
	Service string
}

func (e *ErrRateLimited) Error() string {
	return fmt.Sprintf("rate limit exceeded [%s]", e.Service)
}

// ErrUpstream indicates a 5xx or otherwise unexpected upstream status.
// Body carries a bounded excerpt for server-side logs only.
type ErrUpstream struct {
	Service string
	Status  int
	Body    string
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("upstream error [%s]: status %d", e.Service, e.Status)
}

// ErrMalformedResponse indicates the upstream answered with something we
// could not decode.
type ErrMalformedResponse struct {
	Service string
	Err     error
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("malformed upstream response [%s]: %v", e.Service, e.Err)
}

func (e *ErrMalformedResponse) Unwrap() error {
	return e.Err
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrUnauthorized indicates invalid operator credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrInvalidSignature indicates a webhook signature that did not match the
// shared secret. The event must not be processed.
type ErrInvalidSignature struct{}

func (e *ErrInvalidSignature) Error() string {
	return "invalid webhook signature"
}
