package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/velocards/velocards-cli/internal/cache"
	"github.com/velocards/velocards-cli/pkg/client"
	"github.com/velocards/velocards-cli/pkg/domain"
)

type depositsLoadedMsg struct {
	deposits []domain.CryptoDeposit

	stale     bool
	fetchedAt time.Time
	err       error
}

type addressCreatedMsg struct {
	addr *domain.DepositAddress
	err  error
}

type depositsModel struct {
	client *client.Client
	cache  *cache.Store

	deposits  []domain.CryptoDeposit
	cursor    int
	loading   bool
	stale     bool
	fetchedAt time.Time
	err       error

	// new-address flow: pick a currency, then show the issued address
	picking     bool
	currencyIdx int
	address     *domain.DepositAddress

	statusMsg string
	width     int
	height    int
}

func newDepositsModel(c *client.Client, cs *cache.Store) depositsModel {
	return depositsModel{client: c, cache: cs, loading: true}
}

func (m depositsModel) Init() tea.Cmd {
	return m.load()
}

// load fetches the deposit history, falling back to the last cached
// snapshot when the network is down.
func (m depositsModel) load() tea.Cmd {
	c, cs := m.client, m.cache
	return func() tea.Msg {
		ctx := context.Background()
		deposits, err := c.ListDeposits(ctx, pageSize, 0)
		if err != nil {
			return loadDepositsFromCache(ctx, cs, err)
		}
		if cs != nil {
			_ = cs.Put(ctx, cache.KindDeposits, deposits)
		}
		return depositsLoadedMsg{deposits: deposits}
	}
}

func loadDepositsFromCache(ctx context.Context, cs *cache.Store, fetchErr error) tea.Msg {
	if cs == nil {
		return depositsLoadedMsg{err: fetchErr}
	}
	var deposits []domain.CryptoDeposit
	fetchedAt, err := cs.Get(ctx, cache.KindDeposits, &deposits)
	if err != nil {
		return depositsLoadedMsg{err: fetchErr}
	}
	return depositsLoadedMsg{deposits: deposits, stale: true, fetchedAt: fetchedAt, err: fetchErr}
}

func (m depositsModel) Update(msg tea.Msg) (depositsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case depositsLoadedMsg:
		m.loading = false
		m.deposits = msg.deposits
		m.stale = msg.stale
		m.fetchedAt = msg.fetchedAt
		if msg.stale {
			m.err = nil
		} else {
			m.err = msg.err
		}
		if m.cursor >= len(m.deposits) {
			m.cursor = 0
		}
		return m, nil

	case addressCreatedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("address request failed: %v", client.Message(msg.err))
			m.picking = false
			return m, nil
		}
		m.picking = false
		m.address = msg.addr
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.statusMsg = "address copied!"
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		if m.address != nil {
			return m.updateAddressView(msg)
		}
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m depositsModel) updateList(msg tea.KeyMsg) (depositsModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.deposits)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "n":
		m.picking = true
		m.currencyIdx = 0
	case "r":
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

func (m depositsModel) updatePicker(msg tea.KeyMsg) (depositsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.picking = false
	case "j", "down", "l", "right":
		if m.currencyIdx < len(domain.DepositCurrencies)-1 {
			m.currencyIdx++
		}
	case "k", "up", "h", "left":
		if m.currencyIdx > 0 {
			m.currencyIdx--
		}
	case "enter":
		currency := domain.DepositCurrencies[m.currencyIdx]
		c := m.client
		return m, func() tea.Msg {
			addr, err := c.CreateDepositAddress(context.Background(), currency)
			return addressCreatedMsg{addr: addr, err: err}
		}
	}
	return m, nil
}

func (m depositsModel) updateAddressView(msg tea.KeyMsg) (depositsModel, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.address = nil
		m.loading = true
		return m, m.load()
	case "c":
		addr := m.address.Address
		return m, func() tea.Msg {
			return copyResultMsg{err: clipboard.WriteAll(addr)}
		}
	}
	return m, nil
}

func (m depositsModel) View() string {
	if m.address != nil {
		return m.addressView()
	}
	if m.picking {
		return m.pickerView()
	}
	return m.listView()
}

func (m depositsModel) listView() string {
	if m.loading && len(m.deposits) == 0 {
		return " " + dimStyle.Render("loading deposits...")
	}
	if m.err != nil {
		return " " + dangerStyle.Render("error: "+client.Message(m.err))
	}

	var sb strings.Builder
	if m.stale {
		sb.WriteString(" " + staleStyle.Render(
			fmt.Sprintf("offline — showing data from %s", formatTime(m.fetchedAt))) + "\n\n")
	}
	sb.WriteString(" " + sectionHeaderStyle.Render("Crypto deposits") + "  " + metaStyle.Render("n: new address") + "\n\n")

	if len(m.deposits) == 0 {
		sb.WriteString(" " + dimStyle.Render("no deposits yet — press n to get a deposit address") + "\n")
		return sb.String()
	}

	for i, d := range m.deposits {
		timeStr := metaStyle.Render(fmt.Sprintf("%8s", formatTime(d.CreatedAt)))
		amount := normalStyle.Render(formatMoney(d.Amount, d.Currency)) +
			dimStyle.Render(fmt.Sprintf(" (~%s)", formatMoney(d.AmountUSD, "USD")))

		status := statusStyle(d.Status).Render(d.Status)
		if d.Status == domain.DepositConfirming {
			status += dimStyle.Render(fmt.Sprintf(" %d/%d", d.Confirmations, d.RequiredConfirms))
		}

		row := timeStr + "  " + amount + "  " + status
		if d.TxHash != "" {
			row += "  " + metaStyle.Render(truncStr(d.TxHash, 16))
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

func (m depositsModel) pickerView() string {
	var sb strings.Builder
	sb.WriteString(" " + selectedStyle.Render("New deposit address") + "\n\n")
	sb.WriteString(" " + dimStyle.Render("pick a currency:") + "\n\n")
	for i, cur := range domain.DepositCurrencies {
		if i == m.currencyIdx {
			sb.WriteString("  " + accentStyle.Render("> "+cur) + "\n")
		} else {
			sb.WriteString("    " + normalStyle.Render(cur) + "\n")
		}
	}
	return sb.String()
}

func (m depositsModel) addressView() string {
	a := m.address
	var sb strings.Builder
	sb.WriteString(" " + selectedStyle.Render("Deposit "+a.Currency) + "\n\n")
	sb.WriteString("   " + panStyle.Render(a.Address) + "\n\n")
	if a.Network != "" {
		sb.WriteString("   " + dimStyle.Render("network    ") + normalStyle.Render(a.Network) + "\n")
	}
	if a.MinAmount > 0 {
		sb.WriteString("   " + dimStyle.Render("minimum    ") + normalStyle.Render(formatMoney(a.MinAmount, a.Currency)) + "\n")
	}
	if a.ExpiresAt != nil {
		sb.WriteString("   " + dimStyle.Render("expires    ") + warnStyle.Render(a.ExpiresAt.Format("2006-01-02 15:04")) + "\n")
	}
	sb.WriteString("\n " + dimStyle.Render("send only "+a.Currency+" to this address — funds appear after network confirmation") + "\n")
	if m.statusMsg != "" {
		sb.WriteString("\n " + accentStyle.Render(m.statusMsg) + "\n")
	}
	return sb.String()
}
