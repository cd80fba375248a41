package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/velocards/velocards-cli/internal/cache"
	"github.com/velocards/velocards-cli/pkg/client"
	"github.com/velocards/velocards-cli/pkg/domain"
)

type overviewTickMsg time.Time

func overviewTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return overviewTickMsg(t)
	})
}

// overviewLoadedMsg carries one full dashboard refresh. When the network
// fails and a cached snapshot exists, stale is true and fetchedAt says
// how old the data is.
type overviewLoadedMsg struct {
	balance *domain.Balance
	tier    *domain.TierInfo
	cards   []domain.Card
	recent  []domain.Transaction

	stale     bool
	fetchedAt time.Time
	err       error
}

type overviewModel struct {
	client *client.Client
	cache  *cache.Store
	poll   time.Duration

	balance   *domain.Balance
	tier      *domain.TierInfo
	cards     []domain.Card
	recent    []domain.Transaction
	stale     bool
	fetchedAt time.Time

	loading bool
	err     string
	width   int
	height  int
}

func newOverviewModel(c *client.Client, cs *cache.Store, poll time.Duration) overviewModel {
	return overviewModel{client: c, cache: cs, poll: poll, loading: true}
}

func (m overviewModel) Init() tea.Cmd {
	return m.load()
}

// load fetches the dashboard in one command. On any fetch error it falls
// back to the cached snapshot so the user still sees their last known
// balance; on success the snapshot is rewritten.
func (m overviewModel) load() tea.Cmd {
	c, cs := m.client, m.cache
	return func() tea.Msg {
		ctx := context.Background()

		bal, err := c.GetBalance(ctx)
		if err != nil {
			return loadFromCache(ctx, cs, err)
		}
		tier, err := c.GetTier(ctx)
		if err != nil {
			return loadFromCache(ctx, cs, err)
		}
		cards, err := c.ListCards(ctx)
		if err != nil {
			return loadFromCache(ctx, cs, err)
		}
		recent, err := c.ListTransactions(ctx, client.TransactionFilter{Limit: 10})
		if err != nil {
			return loadFromCache(ctx, cs, err)
		}

		if cs != nil {
			// Best effort; a cache write failure never breaks the dashboard.
			_ = cs.PutAll(ctx, map[string]any{
				cache.KindBalance:      bal,
				cache.KindCards:        cards,
				cache.KindTransactions: recent,
			})
		}
		return overviewLoadedMsg{balance: bal, tier: tier, cards: cards, recent: recent}
	}
}

func loadFromCache(ctx context.Context, cs *cache.Store, fetchErr error) tea.Msg {
	if cs == nil {
		return overviewLoadedMsg{err: fetchErr}
	}

	var bal domain.Balance
	fetchedAt, err := cs.Get(ctx, cache.KindBalance, &bal)
	if err != nil {
		return overviewLoadedMsg{err: fetchErr}
	}
	var cards []domain.Card
	if _, err := cs.Get(ctx, cache.KindCards, &cards); err != nil {
		cards = nil
	}
	var recent []domain.Transaction
	if _, err := cs.Get(ctx, cache.KindTransactions, &recent); err != nil {
		recent = nil
	}
	return overviewLoadedMsg{
		balance:   &bal,
		cards:     cards,
		recent:    recent,
		stale:     true,
		fetchedAt: fetchedAt,
		err:       fetchErr,
	}
}

func (m overviewModel) Update(msg tea.Msg) (overviewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewLoadedMsg:
		m.loading = false
		if msg.balance == nil {
			m.err = msg.err.Error()
			return m, overviewTickCmd(m.poll)
		}
		m.balance = msg.balance
		m.cards = msg.cards
		m.recent = msg.recent
		m.stale = msg.stale
		m.fetchedAt = msg.fetchedAt
		if msg.tier != nil {
			m.tier = msg.tier
		}
		m.err = ""
		return m, overviewTickCmd(m.poll)

	case overviewTickMsg:
		return m, m.load()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m overviewModel) View() string {
	if m.loading && m.balance == nil {
		return " " + dimStyle.Render("loading dashboard...")
	}
	if m.err != "" && m.balance == nil {
		return " " + dangerStyle.Render("error: "+m.err)
	}

	var sb strings.Builder

	if m.stale {
		sb.WriteString(" " + staleStyle.Render(
			fmt.Sprintf("offline — showing data from %s", formatTime(m.fetchedAt))) + "\n\n")
	}

	// Balance block
	sb.WriteString(" " + sectionHeaderStyle.Render("Balance") + "\n")
	sb.WriteString("   " + balanceStyle.Render(formatMoney(m.balance.Available, m.balance.Currency)) +
		" " + dimStyle.Render("available"))
	if m.balance.Pending > 0 {
		sb.WriteString("   " + warnStyle.Render(formatMoney(m.balance.Pending, m.balance.Currency)) +
			" " + dimStyle.Render("pending"))
	}
	sb.WriteString("\n")
	if m.tier != nil {
		tierLine := fmt.Sprintf("%s tier — card fee %s, deposit fee %.1f%%",
			m.tier.Name, formatMoney(m.tier.CardIssuanceFee, "USD"), m.tier.DepositFeeRate*100)
		sb.WriteString("   " + dimStyle.Render(tierLine) + "\n")
	}
	sb.WriteString("\n")

	// Cards block
	active, frozen := 0, 0
	for _, c := range m.cards {
		switch c.Status {
		case domain.CardActive:
			active++
		case domain.CardFrozen:
			frozen++
		}
	}
	sb.WriteString(" " + sectionHeaderStyle.Render("Cards") + "\n")
	cardLine := fmt.Sprintf("%d active", active)
	if frozen > 0 {
		cardLine += fmt.Sprintf(", %d frozen", frozen)
	}
	sb.WriteString("   " + normalStyle.Render(cardLine) + "  " + metaStyle.Render("(press 2)") + "\n\n")

	// Recent activity block
	sb.WriteString(" " + sectionHeaderStyle.Render("Recent activity") + "\n")
	if len(m.recent) == 0 {
		sb.WriteString("   " + dimStyle.Render("no transactions yet") + "\n")
	}
	maxRows := m.height - 12
	if maxRows < 3 {
		maxRows = 3
	}
	for i, tx := range m.recent {
		if i >= maxRows {
			break
		}
		sb.WriteString("   " + transactionRow(tx, m.width-4) + "\n")
	}

	return sb.String()
}

// transactionRow renders one transaction as a single line: time, merchant,
// status, signed amount.
func transactionRow(tx domain.Transaction, width int) string {
	timeStr := metaStyle.Render(fmt.Sprintf("%8s", formatTime(tx.CreatedAt)))

	merchant := tx.MerchantName
	if merchant == "" {
		merchant = tx.Type
	}
	nameWidth := width - 32
	if nameWidth < 12 {
		nameWidth = 12
	}
	name := normalStyle.Render(fmt.Sprintf("%-*s", nameWidth, truncStr(merchant, nameWidth)))

	amount := formatMoney(tx.Amount, tx.Currency)
	var amountStr string
	if tx.Type == domain.TxRefund {
		amountStr = creditStyle.Render("+" + amount)
	} else {
		amountStr = debitStyle.Render("-" + amount)
	}

	status := statusStyle(tx.Status).Render(tx.Status)
	if tx.Status == domain.TxStatusDeclined && tx.DeclineReason != "" {
		status += " " + dimStyle.Render("("+truncStr(tx.DeclineReason, 24)+")")
	}

	return timeStr + "  " + name + " " + amountStr + "  " + status
}
