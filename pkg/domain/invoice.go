package domain

import (
	"time"

	"github.com/google/uuid"
)

// Invoice is a billing document generated server-side. The PDF itself is
// fetched through a dedicated endpoint and passed through as bytes.
type Invoice struct {
	ID          uuid.UUID  `json:"id"`
	Number      string     `json:"number"` // e.g. "VC-2026-00412"
	Description string     `json:"description,omitempty"`
	Total       float64    `json:"total"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"` // see Invoice* constants
	IssuedAt    time.Time  `json:"issuedAt"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
}

// Invoice states.
const (
	InvoiceOpen    = "open"
	InvoicePaid    = "paid"
	InvoiceOverdue = "overdue"
	InvoiceVoid    = "void"
)
