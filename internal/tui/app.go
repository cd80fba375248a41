package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/velocards/velocards-cli/internal/browser"
	"github.com/velocards/velocards-cli/internal/cache"
	"github.com/velocards/velocards-cli/pkg/client"
	"github.com/velocards/velocards-cli/pkg/session"
)

type view int

const (
	viewOverview view = iota
	viewCards
	viewActivity
	viewDeposits
	viewInvoices
	viewAccount
)

// SessionExpiredMsg is sent into the program (via Program.Send) when a
// token refresh fails mid-session. The app drops to a sign-in notice and
// quits; the shell prints the re-login hint.
type SessionExpiredMsg struct{}

// App is the root Bubbletea model.
type App struct {
	client  *client.Client
	session *session.Store

	view     view
	overview overviewModel
	cards    cardsModel
	activity activityModel
	deposits depositsModel
	invoices invoicesModel
	account  accountModel

	helpOpen   bool
	helpCursor int
	expired    bool
	width      int
	height     int
	frame      int // logo shimmer animation frame
}

// Options carries the app's wiring.
type Options struct {
	Client      *client.Client
	Session     *session.Store
	Cache       *cache.Store
	Poll        time.Duration
	DownloadDir string
}

// NewApp creates the dashboard TUI.
func NewApp(opts Options) App {
	poll := opts.Poll
	if poll <= 0 {
		poll = 30 * time.Second
	}
	return App{
		client:   opts.Client,
		session:  opts.Session,
		overview: newOverviewModel(opts.Client, opts.Cache, poll),
		cards:    newCardsModel(opts.Client),
		activity: newActivityModel(opts.Client),
		deposits: newDepositsModel(opts.Client, opts.Cache),
		invoices: newInvoicesModel(opts.Client, opts.Cache, opts.DownloadDir),
		account:  newAccountModel(opts.Client, opts.Session),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.overview.Init(), shimmerTickCmd())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + help(1) = 4 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 4}
		a.overview, _ = a.overview.Update(bodyMsg)
		a.cards, _ = a.cards.Update(bodyMsg)
		a.activity, _ = a.activity.Update(bodyMsg)
		a.deposits, _ = a.deposits.Update(bodyMsg)
		a.invoices, _ = a.invoices.Update(bodyMsg)
		a.account, _ = a.account.Update(bodyMsg)

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case SessionExpiredMsg:
		a.expired = true
		return a, tea.Quit

	case tea.KeyMsg:
		if a.helpOpen {
			switch msg.String() {
			case "?", "esc":
				a.helpOpen = false
			case "q", "ctrl+c":
				return a, tea.Quit
			case "j", "down":
				if a.helpCursor < len(helpItems)-1 {
					a.helpCursor++
				}
			case "k", "up":
				if a.helpCursor > 0 {
					a.helpCursor--
				}
			case "enter":
				item := helpItems[a.helpCursor]
				if item.url != "" {
					browser.Open(item.url) //nolint:errcheck // best-effort browser open
				}
			}
			return a, nil
		}

		// Global keys (only when not typing into a form)
		if !a.isEditing() {
			switch msg.String() {
			case "?":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				return a.switchTo(viewOverview, a.overview.Init())
			case "2":
				return a.switchTo(viewCards, a.cards.Init())
			case "3":
				return a.switchTo(viewActivity, a.activity.Init())
			case "4":
				return a.switchTo(viewDeposits, a.deposits.Init())
			case "5":
				return a.switchTo(viewInvoices, a.invoices.Init())
			case "6":
				return a.switchTo(viewAccount, a.account.Init())
			}
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewOverview:
		a.overview, cmd = a.overview.Update(msg)
	case viewCards:
		a.cards, cmd = a.cards.Update(msg)
	case viewActivity:
		a.activity, cmd = a.activity.Update(msg)
	case viewDeposits:
		a.deposits, cmd = a.deposits.Update(msg)
	case viewInvoices:
		a.invoices, cmd = a.invoices.Update(msg)
	case viewAccount:
		a.account, cmd = a.account.Update(msg)
	}
	return a, cmd
}

func (a App) switchTo(v view, init tea.Cmd) (tea.Model, tea.Cmd) {
	if a.view == v {
		return a, nil
	}
	a.view = v
	return a, init
}

func (a App) isEditing() bool {
	switch a.view {
	case viewCards:
		return a.cards.issuing
	case viewAccount:
		return a.account.tfaStage != tfaIdle
	}
	return false
}

func (a App) View() string {
	if a.expired {
		return "\n " + noticeStyle.Render("session expired — run: velocards login") + "\n"
	}

	// Header: centered shimmer logo + signed-in identity
	logo := renderShimmerLogo(a.frame)
	logoWidth := lipgloss.Width(logo)
	logoPad := (a.width - logoWidth) / 2
	if logoPad < 0 {
		logoPad = 0
	}
	header := strings.Repeat(" ", logoPad) + logo

	identity := ""
	if st := a.session.Current(); st.User != nil {
		parts := []string{st.User.Email}
		if st.User.TierLevel > 0 {
			parts = append(parts, fmt.Sprintf("tier %d", st.User.TierLevel))
		}
		identity = metaStyle.Render(strings.Join(parts, " · "))
	}
	if identity != "" {
		idWidth := lipgloss.Width(identity)
		idPad := (a.width - idWidth) / 2
		if idPad < 0 {
			idPad = 0
		}
		header += "\n" + strings.Repeat(" ", idPad) + identity
	} else {
		header += "\n"
	}

	// Tab bar: 6 equal-width columns spread across the terminal
	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Overview", viewOverview},
		{"2", "Cards", viewCards},
		{"3", "Activity", viewActivity},
		{"4", "Deposits", viewDeposits},
		{"5", "Invoices", viewInvoices},
		{"6", "Account", viewAccount},
	}

	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := (colWidth - labelWidth) / 2
		if leftPad < 0 {
			leftPad = 0
		}
		rightPad := colWidth - labelWidth - leftPad
		if rightPad < 0 {
			rightPad = 0
		}
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	// Body + per-view help line
	var body, help string
	tabsHelp := helpEntry("1-6", "tabs")
	switch a.view {
	case viewOverview:
		body = a.overview.View()
		help = " " + tabsHelp + "  " + helpEntry("?", "help") + "  " + helpEntry("q", "quit")
	case viewCards:
		body = a.cards.View()
		switch {
		case a.cards.issuing:
			help = " " + helpEntry("tab", "next field") + "  " + helpEntry("ctrl+s", "issue") + "  " + helpEntry("esc", "cancel")
		case a.cards.detail:
			help = " " + helpEntry("v", "reveal") + "  " + helpEntry("c", "copy") + "  " + helpEntry("f", "freeze") + "  " + helpEntry("x", "terminate") + "  " + helpEntry("esc", "back")
		default:
			help = " " + tabsHelp + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("f", "freeze") + "  " + helpEntry("n", "new card") + "  " + helpEntry("q", "quit")
		}
	case viewActivity:
		body = a.activity.View()
		help = " " + tabsHelp + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("s", "filter") + "  " + helpEntry("h/l", "page") + "  " + helpEntry("q", "quit")
	case viewDeposits:
		body = a.deposits.View()
		if a.deposits.address != nil {
			help = " " + helpEntry("c", "copy address") + "  " + helpEntry("esc", "back")
		} else {
			help = " " + tabsHelp + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("n", "new address") + "  " + helpEntry("q", "quit")
		}
	case viewInvoices:
		body = a.invoices.View()
		help = " " + tabsHelp + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "download") + "  " + helpEntry("q", "quit")
	case viewAccount:
		body = a.account.View()
		if a.account.tfaStage != tfaIdle {
			help = " " + helpEntry("enter", "confirm") + "  " + helpEntry("esc", "cancel")
		} else {
			help = " " + tabsHelp + "  " + helpEntry("v", "verify identity") + "  " + helpEntry("t", "2fa") + "  " + helpEntry("q", "quit")
		}
	}

	if a.helpOpen {
		body = helpView(a.helpCursor)
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("esc", "close")
	}

	// Chrome takes header(2) + tabs(1) + help(1) = 4 lines
	body = strings.TrimRight(truncateToHeight(body, a.height-4), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, tabBar.String(), body, help)
}
