package domain

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is a single card transaction as reported by the server.
type Transaction struct {
	ID               uuid.UUID `json:"id"`
	CardID           uuid.UUID `json:"cardId"`
	MerchantName     string    `json:"merchantName"`
	MerchantCategory string    `json:"merchantCategory,omitempty"`
	Amount           float64   `json:"amount"`
	Currency         string    `json:"currency"`
	Type             string    `json:"type"`   // see Tx* constants
	Status           string    `json:"status"` // see TxStatus* constants
	DeclineReason    string    `json:"declineReason,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Transaction types.
const (
	TxAuthorization = "authorization"
	TxCapture       = "capture"
	TxRefund        = "refund"
	TxFee           = "fee"
)

// Transaction states.
const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusDeclined  = "declined"
	TxStatusReversed  = "reversed"
)
