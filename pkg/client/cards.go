package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/velocards/velocards-cli/pkg/domain"
)

// ListCards fetches all of the account's virtual cards, newest first.
func (c *Client) ListCards(ctx context.Context) ([]domain.Card, error) {
	var cards []domain.Card
	if err := c.get(ctx, "/cards", &cards); err != nil {
		return nil, fmt.Errorf("client.ListCards: %w", err)
	}
	return cards, nil
}

// GetCard fetches a single card by ID.
func (c *Client) GetCard(ctx context.Context, id string) (*domain.Card, error) {
	var card domain.Card
	if err := c.get(ctx, "/cards/"+url.PathEscape(id), &card); err != nil {
		return nil, fmt.Errorf("client.GetCard: %w", err)
	}
	return &card, nil
}

// GetCardDetails fetches the sensitive card payload (full PAN, CVV) over
// the secure details endpoint. Callers must not persist the result.
func (c *Client) GetCardDetails(ctx context.Context, id string) (*domain.CardDetails, error) {
	var details domain.CardDetails
	if err := c.get(ctx, "/cards/"+url.PathEscape(id)+"/details", &details); err != nil {
		return nil, fmt.Errorf("client.GetCardDetails: %w", err)
	}
	return &details, nil
}

// CreateCardRequest is the payload for issuing a new virtual card. The
// issuance fee is tier-dependent and computed server-side.
type CreateCardRequest struct {
	Nickname   string  `json:"nickname,omitempty"`
	Brand      string  `json:"brand,omitempty"`
	Currency   string  `json:"currency"`
	SpendLimit float64 `json:"spendLimit"`
}

// CreateCard issues a new virtual card.
func (c *Client) CreateCard(ctx context.Context, req CreateCardRequest) (*domain.Card, error) {
	var card domain.Card
	if err := c.post(ctx, "/cards", req, &card); err != nil {
		return nil, fmt.Errorf("client.CreateCard: %w", err)
	}
	return &card, nil
}

// FreezeCard suspends a card; declined while frozen, reversible.
func (c *Client) FreezeCard(ctx context.Context, id string) (*domain.Card, error) {
	var card domain.Card
	if err := c.put(ctx, "/cards/"+url.PathEscape(id)+"/freeze", nil, &card); err != nil {
		return nil, fmt.Errorf("client.FreezeCard: %w", err)
	}
	return &card, nil
}

// UnfreezeCard lifts a freeze.
func (c *Client) UnfreezeCard(ctx context.Context, id string) (*domain.Card, error) {
	var card domain.Card
	if err := c.put(ctx, "/cards/"+url.PathEscape(id)+"/unfreeze", nil, &card); err != nil {
		return nil, fmt.Errorf("client.UnfreezeCard: %w", err)
	}
	return &card, nil
}

// TerminateCard permanently closes a card.
func (c *Client) TerminateCard(ctx context.Context, id string) error {
	if err := c.delete(ctx, "/cards/"+url.PathEscape(id)); err != nil {
		return fmt.Errorf("client.TerminateCard: %w", err)
	}
	return nil
}
