package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/velocards/velocards-cli/pkg/domain"
)

// TransactionFilter narrows a transaction listing. Zero values mean "all".
type TransactionFilter struct {
	CardID string
	Status string
	Limit  int
	Offset int
}

// ListTransactions fetches transaction history with optional filters,
// newest first.
func (c *Client) ListTransactions(ctx context.Context, f TransactionFilter) ([]domain.Transaction, error) {
	params := url.Values{}
	if f.CardID != "" {
		params.Set("cardId", f.CardID)
	}
	if f.Status != "" {
		params.Set("status", f.Status)
	}
	params.Set("limit", strconv.Itoa(f.Limit))
	params.Set("offset", strconv.Itoa(f.Offset))

	var txs []domain.Transaction
	if err := c.get(ctx, "/transactions?"+params.Encode(), &txs); err != nil {
		return nil, fmt.Errorf("client.ListTransactions: %w", err)
	}
	return txs, nil
}

// GetTransaction fetches a single transaction by ID.
func (c *Client) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := c.get(ctx, "/transactions/"+url.PathEscape(id), &tx); err != nil {
		return nil, fmt.Errorf("client.GetTransaction: %w", err)
	}
	return &tx, nil
}
