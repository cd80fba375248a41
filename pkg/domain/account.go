package domain

import "time"

// Balance is the server-computed account balance snapshot. Available and
// pending are derived on the backend from deposits minus card
// authorizations and fees; the client only displays them.
type Balance struct {
	Available float64   `json:"available"`
	Pending   float64   `json:"pending"`
	Currency  string    `json:"currency"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TierInfo describes the account's fee tier as computed by the server.
type TierInfo struct {
	Level           int     `json:"level"`
	Name            string  `json:"name"` // e.g. "Starter", "Silver", "Gold"
	CardIssuanceFee float64 `json:"cardIssuanceFee"`
	DepositFeeRate  float64 `json:"depositFeeRate"` // fraction, e.g. 0.03
	MonthlyFee      float64 `json:"monthlyFee"`
	NextLevelAt     float64 `json:"nextLevelAt,omitempty"` // lifetime deposit total to reach next tier
	LifetimeDeposit float64 `json:"lifetimeDeposit"`
}

// TwoFactorSetup is returned when enabling 2FA: the shared secret and
// otpauth URI to load into an authenticator app. Enablement completes
// only after the first code is verified.
type TwoFactorSetup struct {
	Secret     string `json:"secret"`
	OtpauthURL string `json:"otpauthUrl"`
}
