package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/velocards/velocards-cli/internal/cache"
	"github.com/velocards/velocards-cli/pkg/domain"
)

var errTest = errors.New("test error")

func makeTestInvoices() []domain.Invoice {
	due := time.Now().Add(14 * 24 * time.Hour)
	return []domain.Invoice{
		{ID: uuid.New(), Number: "VC-2026-00412", Description: "Monthly fee — August", Total: 9.99, Currency: "USD", Status: domain.InvoiceOpen, IssuedAt: time.Now(), DueAt: &due},
		{ID: uuid.New(), Number: "VC-2026-00398", Total: 9.99, Currency: "USD", Status: domain.InvoicePaid, IssuedAt: time.Now().Add(-31 * 24 * time.Hour)},
	}
}

func TestInvoicesView(t *testing.T) {
	m := newInvoicesModel(nil, nil, t.TempDir())
	m.width, m.height = 100, 30
	m, _ = m.Update(invoicesLoadedMsg{invoices: makeTestInvoices()})

	view := m.View()
	if !strings.Contains(view, "Monthly fee — August") {
		t.Errorf("expected description in view, got:\n%s", view)
	}
	// Invoices without a description fall back to their number.
	if !strings.Contains(view, "VC-2026-00398") {
		t.Errorf("expected invoice number fallback in view, got:\n%s", view)
	}
	if !strings.Contains(view, "paid") {
		t.Errorf("expected paid status in view, got:\n%s", view)
	}
	if !strings.Contains(view, "due") {
		t.Errorf("expected due date on the open invoice, got:\n%s", view)
	}
}

func TestInvoicesNavigation(t *testing.T) {
	m := newInvoicesModel(nil, nil, t.TempDir())
	m, _ = m.Update(invoicesLoadedMsg{invoices: makeTestInvoices()})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	if m.cursor != 1 {
		t.Errorf("cursor = %d after j, want 1", m.cursor)
	}
}

func TestInvoicesOfflineFallback(t *testing.T) {
	cs, err := cache.Open(":memory:")
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cs.Close() //nolint:errcheck
	ctx := context.Background()
	if err := cs.Put(ctx, cache.KindInvoices, makeTestInvoices()); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	m := newInvoicesModel(nil, cs, t.TempDir())
	m.width, m.height = 100, 30
	m, _ = m.Update(loadInvoicesFromCache(ctx, cs, errTest))

	view := m.View()
	if !strings.Contains(view, "offline") {
		t.Errorf("expected offline banner, got:\n%s", view)
	}
	if !strings.Contains(view, "Monthly fee — August") {
		t.Errorf("expected cached invoices in view, got:\n%s", view)
	}
}

func TestInvoicesSavedMessage(t *testing.T) {
	m := newInvoicesModel(nil, nil, t.TempDir())

	m, _ = m.Update(invoiceSavedMsg{path: "/tmp/VC-2026-00412.pdf"})
	if !strings.Contains(m.statusMsg, "saved /tmp/VC-2026-00412.pdf") {
		t.Errorf("statusMsg = %q", m.statusMsg)
	}

	m, _ = m.Update(invoiceSavedMsg{err: errTest})
	if !strings.Contains(m.statusMsg, "download failed") {
		t.Errorf("statusMsg = %q", m.statusMsg)
	}
}
