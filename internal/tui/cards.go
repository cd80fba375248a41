package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/velocards/velocards-cli/pkg/client"
	"github.com/velocards/velocards-cli/pkg/domain"
)

type cardsLoadedMsg struct {
	cards []domain.Card
	err   error
}

// cardDetailsMsg carries the revealed PAN/CVV for the detail view. The
// payload lives only in model state and is dropped when the view closes.
type cardDetailsMsg struct {
	details *domain.CardDetails
	err     error
}

type cardActionMsg struct {
	card *domain.Card
	verb string // "frozen", "unfrozen", "terminated", "issued"
	err  error
}

type copyResultMsg struct{ err error }

// issueField indexes the card issue form inputs.
type issueField int

const (
	fieldNickname issueField = iota
	fieldLimit
	fieldCount
)

type cardsModel struct {
	client *client.Client

	cards   []domain.Card
	cursor  int
	loading bool
	err     error

	// detail view state
	detail    bool
	details   *domain.CardDetails
	revealing bool

	// terminate confirmation
	confirmTerminate bool

	// issue form state
	issuing    bool
	field      issueField
	nickname   string
	limitInput string

	statusMsg string
	width     int
	height    int
}

func newCardsModel(c *client.Client) cardsModel {
	return cardsModel{client: c, loading: true}
}

func (m cardsModel) Init() tea.Cmd {
	return m.load()
}

func (m cardsModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		cards, err := c.ListCards(context.Background())
		return cardsLoadedMsg{cards: cards, err: err}
	}
}

func (m cardsModel) selected() *domain.Card {
	if m.cursor < 0 || m.cursor >= len(m.cards) {
		return nil
	}
	return &m.cards[m.cursor]
}

func (m cardsModel) Update(msg tea.Msg) (cardsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case cardsLoadedMsg:
		m.loading = false
		m.cards = msg.cards
		m.err = msg.err
		if m.cursor >= len(m.cards) {
			m.cursor = 0
		}
		return m, nil

	case cardDetailsMsg:
		m.revealing = false
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("reveal failed: %v", client.Message(msg.err))
			return m, nil
		}
		m.details = msg.details
		return m, nil

	case cardActionMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("%s failed: %v", msg.verb, client.Message(msg.err))
			return m, nil
		}
		m.statusMsg = "card " + msg.verb
		if msg.verb == "issued" {
			m.issuing = false
			m.nickname = ""
			m.limitInput = ""
		}
		return m, m.load()

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.statusMsg = "copied!"
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		if m.issuing {
			return m.updateIssueForm(msg)
		}
		if m.detail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m cardsModel) updateList(msg tea.KeyMsg) (cardsModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.cards)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if m.selected() != nil {
			m.detail = true
			m.details = nil
		}
	case "f":
		if card := m.selected(); card != nil {
			return m, m.toggleFreeze(*card)
		}
	case "n":
		m.issuing = true
		m.field = fieldNickname
	case "r":
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

func (m cardsModel) updateDetail(msg tea.KeyMsg) (cardsModel, tea.Cmd) {
	card := m.selected()
	if card == nil {
		m.detail = false
		return m, nil
	}

	if m.confirmTerminate {
		switch msg.String() {
		case "y":
			m.confirmTerminate = false
			m.detail = false
			id := card.ID.String()
			c := m.client
			return m, func() tea.Msg {
				err := c.TerminateCard(context.Background(), id)
				return cardActionMsg{verb: "terminated", err: err}
			}
		default:
			m.confirmTerminate = false
		}
		return m, nil
	}

	switch msg.String() {
	case "esc", "q":
		m.detail = false
		m.details = nil // drop revealed PAN as soon as the view closes
	case "v":
		if m.details == nil && !m.revealing {
			m.revealing = true
			id := card.ID.String()
			c := m.client
			return m, func() tea.Msg {
				details, err := c.GetCardDetails(context.Background(), id)
				return cardDetailsMsg{details: details, err: err}
			}
		}
		m.details = nil
	case "c":
		if m.details != nil {
			pan := m.details.Pan
			return m, func() tea.Msg {
				return copyResultMsg{err: clipboard.WriteAll(pan)}
			}
		}
		m.statusMsg = "reveal first (v) to copy the number"
	case "f":
		return m, m.toggleFreeze(*card)
	case "x":
		if card.Status != domain.CardTerminated {
			m.confirmTerminate = true
		}
	}
	return m, nil
}

func (m cardsModel) toggleFreeze(card domain.Card) tea.Cmd {
	c := m.client
	id := card.ID.String()
	if card.Status == domain.CardFrozen {
		return func() tea.Msg {
			updated, err := c.UnfreezeCard(context.Background(), id)
			return cardActionMsg{card: updated, verb: "unfrozen", err: err}
		}
	}
	if card.Status != domain.CardActive {
		return nil
	}
	return func() tea.Msg {
		updated, err := c.FreezeCard(context.Background(), id)
		return cardActionMsg{card: updated, verb: "frozen", err: err}
	}
}

func (m cardsModel) updateIssueForm(msg tea.KeyMsg) (cardsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.issuing = false
	case "tab", "enter":
		if msg.String() == "enter" && m.field == fieldCount-1 {
			return m.submitIssue()
		}
		m.field = (m.field + 1) % fieldCount
	case "shift+tab":
		m.field = (m.field + fieldCount - 1) % fieldCount
	case "ctrl+s":
		return m.submitIssue()
	default:
		switch m.field {
		case fieldNickname:
			m.nickname = editRune(m.nickname, msg.String())
		case fieldLimit:
			// digits and a single decimal point only
			k := msg.String()
			if k == "backspace" || (len(k) == 1 && (k[0] >= '0' && k[0] <= '9' || k == "." && !strings.Contains(m.limitInput, "."))) {
				m.limitInput = editRune(m.limitInput, k)
			}
		}
	}
	return m, nil
}

func (m cardsModel) submitIssue() (cardsModel, tea.Cmd) {
	limit, err := strconv.ParseFloat(m.limitInput, 64)
	if err != nil || limit <= 0 {
		m.statusMsg = "enter a spend limit greater than zero"
		return m, nil
	}
	req := client.CreateCardRequest{
		Nickname:   strings.TrimSpace(m.nickname),
		Currency:   "USD",
		SpendLimit: limit,
	}
	c := m.client
	return m, func() tea.Msg {
		card, err := c.CreateCard(context.Background(), req)
		return cardActionMsg{card: card, verb: "issued", err: err}
	}
}

func (m cardsModel) View() string {
	if m.issuing {
		return m.issueFormView()
	}
	if m.detail {
		return m.detailView()
	}
	return m.listView()
}

func (m cardsModel) listView() string {
	if m.loading && len(m.cards) == 0 {
		return " " + dimStyle.Render("loading cards...")
	}
	if m.err != nil {
		return " " + dangerStyle.Render("error: "+client.Message(m.err))
	}
	if len(m.cards) == 0 {
		return " " + dimStyle.Render("no cards yet — press n to issue one")
	}

	var sb strings.Builder
	for i, card := range m.cards {
		name := card.Nickname
		if name == "" {
			name = strings.ToUpper(card.Brand) + " card"
		}

		line := fmt.Sprintf("%-24s %s  %s %s  %s",
			truncStr(name, 24),
			metaStyle.Render("•••• "+card.Last4()),
			normalStyle.Render(formatMoney(card.Remaining(), card.Currency)),
			dimStyle.Render("of "+formatMoney(card.SpendLimit, card.Currency)),
			statusStyle(card.Status).Render(card.Status),
		)

		if i == m.cursor {
			sb.WriteString(selectedRowBg.Render(" > "+line) + "\n")
		} else {
			sb.WriteString("   " + line + "\n")
		}
	}
	if m.statusMsg != "" {
		sb.WriteString("\n " + accentStyle.Render(m.statusMsg) + "\n")
	}
	return sb.String()
}

func (m cardsModel) detailView() string {
	card := m.selected()
	if card == nil {
		return ""
	}

	var sb strings.Builder
	name := card.Nickname
	if name == "" {
		name = strings.ToUpper(card.Brand) + " card"
	}
	sb.WriteString(" " + selectedStyle.Render(name) + "  " + statusStyle(card.Status).Render(card.Status) + "\n\n")

	if m.details != nil {
		sb.WriteString("   " + dimStyle.Render("number ") + panStyle.Render(m.details.Pan) + "\n")
		sb.WriteString("   " + dimStyle.Render("cvv    ") + panStyle.Render(m.details.CVV) + "\n")
		sb.WriteString("   " + dimStyle.Render("expiry ") + normalStyle.Render(formatExpiry(m.details.ExpiryMonth, m.details.ExpiryYear)) + "\n")
		if m.details.CardholderName != "" {
			sb.WriteString("   " + dimStyle.Render("name   ") + normalStyle.Render(m.details.CardholderName) + "\n")
		}
	} else if m.revealing {
		sb.WriteString("   " + dimStyle.Render("revealing...") + "\n")
	} else {
		sb.WriteString("   " + dimStyle.Render("number ") + normalStyle.Render(card.MaskedPan) + "\n")
		sb.WriteString("   " + dimStyle.Render("expiry ") + normalStyle.Render(formatExpiry(card.ExpiryMonth, card.ExpiryYear)) + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString("   " + dimStyle.Render("limit  ") + normalStyle.Render(formatMoney(card.SpendLimit, card.Currency)) + "\n")
	sb.WriteString("   " + dimStyle.Render("spent  ") + normalStyle.Render(formatMoney(card.SpentAmount, card.Currency)) + "\n")
	sb.WriteString("   " + dimStyle.Render("left   ") + creditStyle.Render(formatMoney(card.Remaining(), card.Currency)) + "\n")
	sb.WriteString("   " + dimStyle.Render("opened ") + metaStyle.Render(formatTime(card.CreatedAt)) + "\n")

	if m.confirmTerminate {
		sb.WriteString("\n " + dangerStyle.Render("terminate this card permanently? (y/n)") + "\n")
	}
	if m.statusMsg != "" {
		sb.WriteString("\n " + accentStyle.Render(m.statusMsg) + "\n")
	}
	return sb.String()
}

func (m cardsModel) issueFormView() string {
	var sb strings.Builder
	sb.WriteString(" " + selectedStyle.Render("Issue a new card") + "\n\n")

	nickLabel := "   nickname     "
	limitLabel := "   spend limit  "
	if m.field == fieldNickname {
		nickLabel = " " + accentStyle.Render(">") + " nickname     "
	}
	if m.field == fieldLimit {
		limitLabel = " " + accentStyle.Render(">") + " spend limit  "
	}

	nick := m.nickname
	if nick == "" && m.field != fieldNickname {
		nick = inputPlaceholderStyle.Render("optional")
	}
	limit := m.limitInput
	if limit == "" && m.field != fieldLimit {
		limit = inputPlaceholderStyle.Render("e.g. 500")
	}

	sb.WriteString(dimStyle.Render(nickLabel) + normalStyle.Render(nick) + cursorMark(m.field == fieldNickname) + "\n")
	sb.WriteString(dimStyle.Render(limitLabel) + "$" + normalStyle.Render(limit) + cursorMark(m.field == fieldLimit) + "\n")
	sb.WriteString("\n " + dimStyle.Render("issuance fee depends on your tier and is charged on creation") + "\n")

	if m.statusMsg != "" {
		sb.WriteString("\n " + dangerStyle.Render(m.statusMsg) + "\n")
	}
	return sb.String()
}

func cursorMark(active bool) string {
	if active {
		return accentStyle.Render("▏")
	}
	return ""
}
