package domain

import (
	"time"

	"github.com/google/uuid"
)

// CryptoDeposit tracks a single crypto top-up from detection on-chain
// through crediting to the account balance. Confirmation counting and
// crediting happen server-side; the client renders progress.
type CryptoDeposit struct {
	ID               uuid.UUID  `json:"id"`
	Currency         string     `json:"currency"` // e.g. "BTC", "ETH", "USDT"
	Network          string     `json:"network,omitempty"`
	Amount           float64    `json:"amount"`
	AmountUSD        float64    `json:"amountUsd"`
	Address          string     `json:"address"`
	TxHash           string     `json:"txHash,omitempty"`
	Status           string     `json:"status"` // see Deposit* constants
	Confirmations    int        `json:"confirmations"`
	RequiredConfirms int        `json:"requiredConfirmations"`
	CreatedAt        time.Time  `json:"createdAt"`
	CreditedAt       *time.Time `json:"creditedAt,omitempty"`
}

// Deposit states.
const (
	DepositPending    = "pending"
	DepositConfirming = "confirming"
	DepositCredited   = "credited"
	DepositFailed     = "failed"
)

// DepositCurrencies is the set of currencies deposit addresses can be
// requested for, in display order.
var DepositCurrencies = []string{"BTC", "ETH", "USDT", "USDC", "LTC"}

var depositCurrencySet = func() map[string]bool {
	m := make(map[string]bool, len(DepositCurrencies))
	for _, c := range DepositCurrencies {
		m[c] = true
	}
	return m
}()

// ValidDepositCurrency returns true for a supported deposit currency.
func ValidDepositCurrency(c string) bool {
	return depositCurrencySet[c]
}

// DepositAddress is a freshly issued deposit address for one currency.
type DepositAddress struct {
	Currency  string     `json:"currency"`
	Network   string     `json:"network"`
	Address   string     `json:"address"`
	MinAmount float64    `json:"minAmount"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
