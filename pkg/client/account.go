package client

import (
	"context"
	"fmt"

	"github.com/velocards/velocards-cli/pkg/domain"
)

// GetBalance fetches the server-computed balance snapshot.
func (c *Client) GetBalance(ctx context.Context) (*domain.Balance, error) {
	var bal domain.Balance
	if err := c.get(ctx, "/account/balance", &bal); err != nil {
		return nil, fmt.Errorf("client.GetBalance: %w", err)
	}
	return &bal, nil
}

// GetTier fetches the account's fee tier. Thresholds and rates are
// server-side business rules; the client only displays them.
func (c *Client) GetTier(ctx context.Context) (*domain.TierInfo, error) {
	var tier domain.TierInfo
	if err := c.get(ctx, "/account/tier", &tier); err != nil {
		return nil, fmt.Errorf("client.GetTier: %w", err)
	}
	return &tier, nil
}

// GetKYCStatus fetches the current identity-verification state.
func (c *Client) GetKYCStatus(ctx context.Context) (*domain.KYCInfo, error) {
	var info domain.KYCInfo
	if err := c.get(ctx, "/kyc/status", &info); err != nil {
		return nil, fmt.Errorf("client.GetKYCStatus: %w", err)
	}
	return &info, nil
}

// StartKYC begins a verification session with the provider and returns
// the hosted verification URL to open in a browser.
func (c *Client) StartKYC(ctx context.Context) (*domain.KYCInfo, error) {
	var info domain.KYCInfo
	if err := c.post(ctx, "/kyc/start", nil, &info); err != nil {
		return nil, fmt.Errorf("client.StartKYC: %w", err)
	}
	return &info, nil
}
