package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/velocards/velocards-cli/internal/browser"
	"github.com/velocards/velocards-cli/internal/cache"
	"github.com/velocards/velocards-cli/pkg/client"
	"github.com/velocards/velocards-cli/pkg/domain"
)

type invoicesLoadedMsg struct {
	invoices []domain.Invoice

	stale     bool
	fetchedAt time.Time
	err       error
}

type invoiceSavedMsg struct {
	path string
	err  error
}

type invoicesModel struct {
	client      *client.Client
	cache       *cache.Store
	downloadDir string

	invoices  []domain.Invoice
	cursor    int
	loading   bool
	stale     bool
	fetchedAt time.Time
	err       error

	statusMsg string
	width     int
	height    int
}

func newInvoicesModel(c *client.Client, cs *cache.Store, downloadDir string) invoicesModel {
	return invoicesModel{client: c, cache: cs, downloadDir: downloadDir, loading: true}
}

func (m invoicesModel) Init() tea.Cmd {
	return m.load()
}

// load fetches the invoice list, falling back to the last cached
// snapshot when the network is down. PDFs are never cached.
func (m invoicesModel) load() tea.Cmd {
	c, cs := m.client, m.cache
	return func() tea.Msg {
		ctx := context.Background()
		invoices, err := c.ListInvoices(ctx, pageSize, 0)
		if err != nil {
			return loadInvoicesFromCache(ctx, cs, err)
		}
		if cs != nil {
			_ = cs.Put(ctx, cache.KindInvoices, invoices)
		}
		return invoicesLoadedMsg{invoices: invoices}
	}
}

func loadInvoicesFromCache(ctx context.Context, cs *cache.Store, fetchErr error) tea.Msg {
	if cs == nil {
		return invoicesLoadedMsg{err: fetchErr}
	}
	var invoices []domain.Invoice
	fetchedAt, err := cs.Get(ctx, cache.KindInvoices, &invoices)
	if err != nil {
		return invoicesLoadedMsg{err: fetchErr}
	}
	return invoicesLoadedMsg{invoices: invoices, stale: true, fetchedAt: fetchedAt, err: fetchErr}
}

// downloadPDF fetches the invoice PDF, writes it under the download
// directory, and opens it with the system viewer.
func (m invoicesModel) downloadPDF(inv domain.Invoice) tea.Cmd {
	c := m.client
	dir := m.downloadDir
	return func() tea.Msg {
		data, err := c.GetInvoicePDF(context.Background(), inv.ID.String())
		if err != nil {
			return invoiceSavedMsg{err: err}
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return invoiceSavedMsg{err: err}
		}
		path := filepath.Join(dir, inv.Number+".pdf")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return invoiceSavedMsg{err: err}
		}
		browser.Open(path) //nolint:errcheck // best-effort viewer open
		return invoiceSavedMsg{path: path}
	}
}

func (m invoicesModel) Update(msg tea.Msg) (invoicesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case invoicesLoadedMsg:
		m.loading = false
		m.invoices = msg.invoices
		m.stale = msg.stale
		m.fetchedAt = msg.fetchedAt
		if msg.stale {
			m.err = nil
		} else {
			m.err = msg.err
		}
		if m.cursor >= len(m.invoices) {
			m.cursor = 0
		}
		return m, nil

	case invoiceSavedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("download failed: %v", client.Message(msg.err))
		} else {
			m.statusMsg = "saved " + msg.path
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.invoices)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "enter", "d":
			if m.cursor < len(m.invoices) {
				return m, m.downloadPDF(m.invoices[m.cursor])
			}
		case "r":
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

func (m invoicesModel) View() string {
	if m.loading && len(m.invoices) == 0 {
		return " " + dimStyle.Render("loading invoices...")
	}
	if m.err != nil {
		return " " + dangerStyle.Render("error: "+client.Message(m.err))
	}

	var sb strings.Builder
	if m.stale {
		sb.WriteString(" " + staleStyle.Render(
			fmt.Sprintf("offline — showing data from %s", formatTime(m.fetchedAt))) + "\n\n")
	}
	sb.WriteString(" " + sectionHeaderStyle.Render("Invoices") + "  " + metaStyle.Render("enter: download PDF") + "\n\n")

	if len(m.invoices) == 0 {
		sb.WriteString(" " + dimStyle.Render("no invoices yet") + "\n")
		return sb.String()
	}

	for i, inv := range m.invoices {
		desc := inv.Description
		if desc == "" {
			desc = inv.Number
		}
		row := fmt.Sprintf("%s  %-32s %s  %s",
			metaStyle.Render(inv.IssuedAt.Format("2006-01-02")),
			truncStr(desc, 32),
			normalStyle.Render(formatMoney(inv.Total, inv.Currency)),
			statusStyle(inv.Status).Render(inv.Status),
		)
		if inv.Status == domain.InvoiceOpen && inv.DueAt != nil {
			row += "  " + dimStyle.Render("due "+inv.DueAt.Format("Jan 2"))
		}

		if i == m.cursor {
			sb.WriteString(selectedRowBg.Render(" > "+row) + "\n")
		} else {
			sb.WriteString("   " + row + "\n")
		}
	}
	if m.statusMsg != "" {
		sb.WriteString("\n " + accentStyle.Render(m.statusMsg) + "\n")
	}
	return sb.String()
}
