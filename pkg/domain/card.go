package domain

import (
	"time"

	"github.com/google/uuid"
)

// Card represents a virtual card as shown in list and detail views.
// The full PAN and CVV are never part of this record; they are delivered
// separately through the secure card-details endpoint.
type Card struct {
	ID           uuid.UUID  `json:"id"`
	Nickname     string     `json:"nickname,omitempty"`
	MaskedPan    string     `json:"maskedPan"` // e.g. "**** **** **** 4821"
	Brand        string     `json:"brand"`     // "visa", "mastercard"
	Status       string     `json:"status"`    // see Card* constants
	Currency     string     `json:"currency"`
	SpendLimit   float64    `json:"spendLimit"`
	SpentAmount  float64    `json:"spentAmount"`
	ExpiryMonth  int        `json:"expiryMonth"`
	ExpiryYear   int        `json:"expiryYear"`
	CreatedAt    time.Time  `json:"createdAt"`
	TerminatedAt *time.Time `json:"terminatedAt,omitempty"`
}

// Card states.
const (
	CardActive     = "active"
	CardFrozen     = "frozen"
	CardTerminated = "terminated"
)

// Last4 returns the last four digits of the masked PAN for compact display.
func (c Card) Last4() string {
	if len(c.MaskedPan) < 4 {
		return c.MaskedPan
	}
	return c.MaskedPan[len(c.MaskedPan)-4:]
}

// Remaining returns the unspent portion of the card's limit, floored at zero.
// Both values are server-computed; this is display arithmetic only.
func (c Card) Remaining() float64 {
	r := c.SpendLimit - c.SpentAmount
	if r < 0 {
		return 0
	}
	return r
}

// CardDetails is the sensitive payload from the secure card-details
// endpoint: full PAN, CVV, and cardholder name. It is fetched on demand,
// shown briefly, and never persisted.
type CardDetails struct {
	CardID         uuid.UUID `json:"cardId"`
	Pan            string    `json:"pan"`
	CVV            string    `json:"cvv"`
	ExpiryMonth    int       `json:"expiryMonth"`
	ExpiryYear     int       `json:"expiryYear"`
	CardholderName string    `json:"cardholderName"`
}
