package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/velocards/velocards-cli/pkg/client"
	"github.com/velocards/velocards-cli/pkg/domain"
)

type transactionsLoadedMsg struct {
	txs []domain.Transaction
	err error
}

// statusFilters is the cycle order for the s key; "" means all.
var statusFilters = []string{"", domain.TxStatusCompleted, domain.TxStatusPending, domain.TxStatusDeclined}

type activityModel struct {
	client *client.Client

	txs     []domain.Transaction
	cursor  int
	filter  string
	offset  int
	loading bool
	err     error
	width   int
	height  int
}

func newActivityModel(c *client.Client) activityModel {
	return activityModel{client: c, loading: true}
}

func (m activityModel) Init() tea.Cmd {
	return m.load()
}

func (m activityModel) load() tea.Cmd {
	c := m.client
	filter, offset := m.filter, m.offset
	return func() tea.Msg {
		txs, err := c.ListTransactions(context.Background(), client.TransactionFilter{
			Status: filter,
			Limit:  pageSize,
			Offset: offset,
		})
		return transactionsLoadedMsg{txs: txs, err: err}
	}
}

func (m activityModel) Update(msg tea.Msg) (activityModel, tea.Cmd) {
	switch msg := msg.(type) {
	case transactionsLoadedMsg:
		m.loading = false
		m.txs = msg.txs
		m.err = msg.err
		if m.cursor >= len(m.txs) {
			m.cursor = 0
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.txs)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "s":
			// Cycle status filter: all -> completed -> pending -> declined
			for i, f := range statusFilters {
				if f == m.filter {
					m.filter = statusFilters[(i+1)%len(statusFilters)]
					break
				}
			}
			m.cursor = 0
			m.offset = 0
			m.loading = true
			return m, m.load()
		case "l", "right":
			if len(m.txs) == pageSize {
				m.offset += pageSize
				m.cursor = 0
				m.loading = true
				return m, m.load()
			}
		case "h", "left":
			if m.offset > 0 {
				m.offset -= pageSize
				if m.offset < 0 {
					m.offset = 0
				}
				m.cursor = 0
				m.loading = true
				return m, m.load()
			}
		case "r":
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

func (m activityModel) View() string {
	if m.loading && len(m.txs) == 0 {
		return " " + dimStyle.Render("loading activity...")
	}
	if m.err != nil {
		return " " + dangerStyle.Render("error: "+client.Message(m.err))
	}

	var sb strings.Builder

	filterLabel := m.filter
	if filterLabel == "" {
		filterLabel = "all"
	}
	header := sectionHeaderStyle.Render("Activity") + "  " + metaStyle.Render("filter: ") + searchStyle.Render(filterLabel)
	if m.offset > 0 {
		header += "  " + metaStyle.Render(fmt.Sprintf("page %d", m.offset/pageSize+1))
	}
	sb.WriteString(" " + header + "\n\n")

	if len(m.txs) == 0 {
		sb.WriteString(" " + dimStyle.Render("nothing here") + "\n")
		return sb.String()
	}

	maxRows := m.height - 4
	if maxRows < 5 {
		maxRows = 5
	}
	for i, tx := range m.txs {
		if i >= maxRows {
			break
		}
		row := transactionRow(tx, m.width-4)
		if i == m.cursor {
			sb.WriteString(selectedRowBg.Render(" > "+row) + "\n")
		} else {
			sb.WriteString("   " + row + "\n")
		}
	}
	return sb.String()
}
