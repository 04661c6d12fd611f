package domain

import "time"

// PaymentRequest is a checkout form submission asking for a PIX charge.
// Currency is fixed to BRL by the gateway integration.
type PaymentRequest struct {
	Amount       float64 `json:"amount"`
	CustomerName string  `json:"customer_name,omitempty"`
	CustomerCPF  string  `json:"customer_cpf,omitempty"`
	Description  string  `json:"description,omitempty"`
}

// PixCharge is the gateway-bound charge built from a PaymentRequest once it
// has passed validation. Identifier is the client-side idempotency id.
type PixCharge struct {
	Identifier       string
	Amount           float64
	CustomerName     string
	CustomerDocument string
	Description      string
	DueDate          time.Time
}

// PaymentResult is the normalized answer for a PIX charge, regardless of
// which response shape the gateway produced.
type PaymentResult struct {
	Success   bool    `json:"success"`
	PaymentID string  `json:"payment_id,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
	PixQRCode string  `json:"pix_qr_code,omitempty"`
	PixCode   string  `json:"pix_code,omitempty"`
	Status    string  `json:"status,omitempty"`
	OrderURL  string  `json:"order_url,omitempty"`
	Message   string  `json:"message,omitempty"`
}
