package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/velocards/velocards-cli/pkg/domain"
)

// ListInvoices fetches billing documents, newest first.
func (c *Client) ListInvoices(ctx context.Context, limit, offset int) ([]domain.Invoice, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var invoices []domain.Invoice
	if err := c.get(ctx, "/invoices?"+params.Encode(), &invoices); err != nil {
		return nil, fmt.Errorf("client.ListInvoices: %w", err)
	}
	return invoices, nil
}

// GetInvoice fetches a single invoice by ID.
func (c *Client) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	var inv domain.Invoice
	if err := c.get(ctx, "/invoices/"+url.PathEscape(id), &inv); err != nil {
		return nil, fmt.Errorf("client.GetInvoice: %w", err)
	}
	return &inv, nil
}

// GetInvoicePDF downloads the server-rendered PDF for an invoice. The
// bytes are passed through untouched.
func (c *Client) GetInvoicePDF(ctx context.Context, id string) ([]byte, error) {
	data, err := c.getRaw(ctx, "/invoices/"+url.PathEscape(id)+"/pdf")
	if err != nil {
		return nil, fmt.Errorf("client.GetInvoicePDF: %w", err)
	}
	return data, nil
}
