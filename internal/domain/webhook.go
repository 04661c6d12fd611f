package domain

import "strconv"

// EventKind is the logical classification of a gateway webhook event.
type EventKind string

const (
	EventApproved EventKind = "approved"
	EventPending  EventKind = "pending"
	EventFailed   EventKind = "failed"
	EventUnknown  EventKind = "unknown"
)

// WebhookEvent is a parsed gateway callback. RawType keeps whatever string
// the gateway sent; Kind is the normalized classification.
type WebhookEvent struct {
	RawType   string
	Kind      EventKind
	PaymentID string
	Status    string
	Amount    float64
}

// eventSynonyms maps every event string the gateways are known to send to
// its logical kind. Anything absent classifies as EventUnknown.
var eventSynonyms = map[string]EventKind{
	"payment.completed": EventApproved,
	"payment.approved":  EventApproved,
	"approved":          EventApproved,
	"paid":              EventApproved,

	"payment.pending": EventPending,
	"pending":         EventPending,

	"payment.failed":    EventFailed,
	"payment.cancelled": EventFailed,
	"failed":            EventFailed,
	"cancelled":         EventFailed,
}

// ClassifyWebhook builds a WebhookEvent from a decoded gateway payload.
// Field precedence is fixed: event > type > status for the event string,
// payment_id > id > transaction_id for the payment id, status >
// payment_status for the status, amount > value for the amount.
func ClassifyWebhook(payload map[string]any) WebhookEvent {
	rawType := firstString(payload, "event", "type", "status")
	if rawType == "" {
		rawType = "unknown"
	}

	kind, ok := eventSynonyms[rawType]
	if !ok {
		kind = EventUnknown
	}

	return WebhookEvent{
		RawType:   rawType,
		Kind:      kind,
		PaymentID: firstString(payload, "payment_id", "id", "transaction_id"),
		Status:    firstString(payload, "status", "payment_status"),
		Amount:    firstNumber(payload, "amount", "value"),
	}
}

func firstString(payload map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := payload[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// firstNumber accepts both JSON numbers and numeric strings; gateways are
// not consistent about which they send for amounts.
func firstNumber(payload map[string]any, keys ...string) float64 {
	for _, k := range keys {
		switch v := payload[k].(type) {
		case float64:
			return v
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

// Counter is the running total of approved payments, persisted between
// deliveries.
type Counter struct {
	Total      float64 `json:"total"`
	Count      int64   `json:"count"`
	LastUpdate string  `json:"last_update,omitempty"`
}
