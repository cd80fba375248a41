package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/velocards/velocards-cli/pkg/domain"
)

// ListDeposits fetches crypto deposit history, newest first.
func (c *Client) ListDeposits(ctx context.Context, limit, offset int) ([]domain.CryptoDeposit, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var deposits []domain.CryptoDeposit
	if err := c.get(ctx, "/crypto/deposits?"+params.Encode(), &deposits); err != nil {
		return nil, fmt.Errorf("client.ListDeposits: %w", err)
	}
	return deposits, nil
}

// GetDeposit fetches a single deposit by ID.
func (c *Client) GetDeposit(ctx context.Context, id string) (*domain.CryptoDeposit, error) {
	var dep domain.CryptoDeposit
	if err := c.get(ctx, "/crypto/deposits/"+url.PathEscape(id), &dep); err != nil {
		return nil, fmt.Errorf("client.GetDeposit: %w", err)
	}
	return &dep, nil
}

// CreateDepositAddress requests a deposit address for the given currency.
// Address generation and monitoring are entirely server-side.
func (c *Client) CreateDepositAddress(ctx context.Context, currency string) (*domain.DepositAddress, error) {
	var addr domain.DepositAddress
	if err := c.post(ctx, "/crypto/deposits/address", map[string]string{"currency": currency}, &addr); err != nil {
		return nil, fmt.Errorf("client.CreateDepositAddress: %w", err)
	}
	return &addr, nil
}
