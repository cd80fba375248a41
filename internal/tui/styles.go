package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/velocards/velocards-cli/pkg/domain"
)

// Shimmer animation for the VELOCARDS logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "V E L O C A R D S" as a flowing wave of
// violet light, deep indigo (#2a2450) to bright lavender (#a78bfa).
func renderShimmerLogo(frame int) string {
	const text = "VELOCARDS"
	n := len(text)

	var out string
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		// Deep:   (42, 36, 80)   #2a2450
		// Bright: (167, 139, 250) #a78bfa
		r := clampByte(42 + b*(167-42))
		g := clampByte(36 + b*(139-36))
		bl := clampByte(80 + b*(250-80))

		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(color))
		out += s.Render(string(text[i]))

		if i < n-1 {
			out += "  "
		}
	}

	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base palette
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Accent / action styles
	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a78bfa"))

	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a78bfa")).
			Bold(true)

	// Money
	creditStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	debitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec"))

	balanceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	// States
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ade80"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f59e0b"))

	dangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#b45555"))

	frozenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#22d3ee"))

	// Sensitive card data (revealed PAN/CVV)
	panStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fbbf24")).
			Bold(true)

	// Notices
	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f59e0b")).
			Bold(true)

	staleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f0944a")).
			Italic(true)

	// Selected row background
	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a78bfa")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))
)

// statusStyle maps any card, transaction, deposit, or invoice state onto
// a display style.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case domain.CardActive, domain.TxStatusCompleted, domain.DepositCredited, domain.InvoicePaid:
		return okStyle
	case domain.CardFrozen:
		return frozenStyle
	case domain.TxStatusPending, domain.DepositConfirming, domain.InvoiceOpen:
		return warnStyle
	case domain.CardTerminated, domain.TxStatusDeclined, domain.DepositFailed, domain.InvoiceOverdue:
		return dangerStyle
	case domain.TxStatusReversed, domain.InvoiceVoid:
		return dimStyle
	default:
		return dimStyle
	}
}

// kycStyle maps a KYC state onto a display style.
func kycStyle(status string) lipgloss.Style {
	switch status {
	case domain.KYCApproved:
		return okStyle
	case domain.KYCPending:
		return warnStyle
	case domain.KYCRejected:
		return dangerStyle
	default:
		return dimStyle
	}
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	desc  string
	url   string
}

var helpItems = []helpItem{
	{"Support", "velocards.com/support", "https://velocards.com/support"},
	{"Terms of Service", "velocards.com/terms", "https://velocards.com/terms"},
	{"Privacy Policy", "velocards.com/privacy", "https://velocards.com/privacy"},
	{"Website", "velocards.com", "https://velocards.com"},
}

// helpView renders the interactive help overlay with a cursor.
func helpView(cursor int) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a78bfa")).
		Bold(true).
		Render("V E L O C A R D S")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Virtual cards, funded by crypto.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	cursorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a78bfa"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	commands := []struct{ cmd, desc string }{
		{"velocards", "Open the dashboard (interactive TUI)"},
		{"velocards login", "Sign in with email and password"},
		{"velocards register", "Create an account"},
		{"velocards logout", "Clear your session"},
		{"velocards --version", "Show version"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n  %s\n\n", title, tagline)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
	for i, item := range helpItems {
		label := cmdStyle.Render(fmt.Sprintf("%-22s", item.label))
		prefix := "    "
		if i == cursor {
			label = cursorStyle.Render(fmt.Sprintf("%-22s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(item.desc))
	}
	return b.String()
}
