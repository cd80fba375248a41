package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/velocards/velocards-cli/internal/browser"
	"github.com/velocards/velocards-cli/pkg/client"
	"github.com/velocards/velocards-cli/pkg/domain"
	"github.com/velocards/velocards-cli/pkg/session"
)

type accountLoadedMsg struct {
	kyc  *domain.KYCInfo
	tier *domain.TierInfo
	err  error
}

type kycStartedMsg struct {
	info *domain.KYCInfo
	err  error
}

type twoFactorSetupMsg struct {
	setup *domain.TwoFactorSetup
	err   error
}

type twoFactorResultMsg struct {
	verb string // "enabled", "disabled"
	err  error
}

// twoFactorStage tracks the in-progress 2FA change.
type twoFactorStage int

const (
	tfaIdle twoFactorStage = iota
	tfaShowSecret // enrollment secret on screen, waiting for first code
	tfaDisabling  // waiting for a code to confirm disable
)

type accountModel struct {
	client  *client.Client
	session *session.Store

	kycInfo *domain.KYCInfo
	tier    *domain.TierInfo
	loading bool
	err     error

	tfaStage  twoFactorStage
	tfaSetup  *domain.TwoFactorSetup
	codeInput string

	statusMsg string
	width     int
	height    int
}

func newAccountModel(c *client.Client, s *session.Store) accountModel {
	return accountModel{client: c, session: s, loading: true}
}

func (m accountModel) Init() tea.Cmd {
	return m.load()
}

func (m accountModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		kyc, err := c.GetKYCStatus(context.Background())
		if err != nil {
			return accountLoadedMsg{err: err}
		}
		tier, err := c.GetTier(context.Background())
		if err != nil {
			return accountLoadedMsg{kyc: kyc, err: err}
		}
		return accountLoadedMsg{kyc: kyc, tier: tier}
	}
}

func (m accountModel) Update(msg tea.Msg) (accountModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountLoadedMsg:
		m.loading = false
		m.kycInfo = msg.kyc
		m.tier = msg.tier
		m.err = msg.err
		return m, nil

	case kycStartedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("verification start failed: %v", client.Message(msg.err))
			return m, nil
		}
		if msg.info.VerificationURL != "" {
			browser.Open(msg.info.VerificationURL) //nolint:errcheck // best-effort browser open
			m.statusMsg = "verification opened in your browser"
		}
		m.kycInfo = msg.info
		return m, nil

	case twoFactorSetupMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("2fa setup failed: %v", client.Message(msg.err))
			m.tfaStage = tfaIdle
			return m, nil
		}
		m.tfaSetup = msg.setup
		m.tfaStage = tfaShowSecret
		m.codeInput = ""
		return m, nil

	case twoFactorResultMsg:
		m.tfaStage = tfaIdle
		m.tfaSetup = nil
		m.codeInput = ""
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("2fa %s failed: %v", msg.verb, client.Message(msg.err))
			return m, nil
		}
		m.statusMsg = "two-factor " + msg.verb
		// The profile's twoFactorEnabled flag changed server-side.
		s := m.session
		return m, func() tea.Msg {
			s.CheckAuth(context.Background())
			return nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		if m.tfaStage != tfaIdle {
			return m.updateCodeEntry(msg)
		}
		return m.updateMain(msg)
	}
	return m, nil
}

func (m accountModel) updateMain(msg tea.KeyMsg) (accountModel, tea.Cmd) {
	user := m.session.Current().User
	switch msg.String() {
	case "v":
		// Start (or resume) identity verification
		if m.kycInfo != nil && m.kycInfo.Status == domain.KYCApproved {
			return m, nil
		}
		c := m.client
		return m, func() tea.Msg {
			info, err := c.StartKYC(context.Background())
			return kycStartedMsg{info: info, err: err}
		}
	case "t":
		if user == nil {
			return m, nil
		}
		if user.TwoFactorEnabled {
			m.tfaStage = tfaDisabling
			m.codeInput = ""
			return m, nil
		}
		c := m.client
		return m, func() tea.Msg {
			setup, err := c.EnableTwoFactor(context.Background())
			return twoFactorSetupMsg{setup: setup, err: err}
		}
	case "r":
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

func (m accountModel) updateCodeEntry(msg tea.KeyMsg) (accountModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.tfaStage = tfaIdle
		m.tfaSetup = nil
		m.codeInput = ""
	case "enter":
		if len(m.codeInput) != 6 {
			m.statusMsg = "enter the 6-digit code"
			return m, nil
		}
		code := m.codeInput
		c := m.client
		if m.tfaStage == tfaDisabling {
			return m, func() tea.Msg {
				return twoFactorResultMsg{verb: "disabled", err: c.DisableTwoFactor(context.Background(), code)}
			}
		}
		return m, func() tea.Msg {
			return twoFactorResultMsg{verb: "enabled", err: c.VerifyTwoFactor(context.Background(), code)}
		}
	default:
		k := msg.String()
		if k == "backspace" || (len(k) == 1 && k[0] >= '0' && k[0] <= '9' && len(m.codeInput) < 6) {
			m.codeInput = editRune(m.codeInput, k)
		}
	}
	return m, nil
}

func (m accountModel) View() string {
	if m.tfaStage != tfaIdle {
		return m.codeEntryView()
	}

	st := m.session.Current()
	var sb strings.Builder

	// Profile block
	sb.WriteString(" " + sectionHeaderStyle.Render("Profile") + "\n")
	if st.User != nil {
		u := st.User
		sb.WriteString("   " + selectedStyle.Render(u.DisplayName()) + "  " + dimStyle.Render(u.Email) + "\n")
		tfa := dangerStyle.Render("off")
		if u.TwoFactorEnabled {
			tfa = okStyle.Render("on")
		}
		sb.WriteString("   " + dimStyle.Render("two-factor ") + tfa + "  " + metaStyle.Render("(t to toggle)") + "\n")
		sb.WriteString("   " + dimStyle.Render("member since ") + metaStyle.Render(u.CreatedAt.Format("Jan 2006")) + "\n")
	} else {
		sb.WriteString("   " + dimStyle.Render("not signed in") + "\n")
	}
	sb.WriteString("\n")

	// Verification block
	sb.WriteString(" " + sectionHeaderStyle.Render("Identity verification") + "\n")
	if m.loading && m.kycInfo == nil {
		sb.WriteString("   " + dimStyle.Render("loading...") + "\n")
	} else if m.kycInfo != nil {
		sb.WriteString("   " + kycStyle(m.kycInfo.Status).Render(strings.ReplaceAll(m.kycInfo.Status, "_", " ")))
		switch m.kycInfo.Status {
		case domain.KYCNotStarted:
			sb.WriteString("  " + metaStyle.Render("(v to start)"))
		case domain.KYCRejected:
			if m.kycInfo.RejectionReason != "" {
				sb.WriteString("  " + dimStyle.Render(m.kycInfo.RejectionReason))
			}
			sb.WriteString("  " + metaStyle.Render("(v to retry)"))
		}
		sb.WriteString("\n")
	} else if m.err != nil {
		sb.WriteString("   " + dangerStyle.Render("error: "+client.Message(m.err)) + "\n")
	}
	sb.WriteString("\n")

	// Tier block
	sb.WriteString(" " + sectionHeaderStyle.Render("Tier") + "\n")
	if m.tier != nil {
		sb.WriteString("   " + selectedStyle.Render(m.tier.Name) + "\n")
		sb.WriteString("   " + dimStyle.Render("card issuance  ") + normalStyle.Render(formatMoney(m.tier.CardIssuanceFee, "USD")) + "\n")
		sb.WriteString("   " + dimStyle.Render("deposit fee    ") + normalStyle.Render(fmt.Sprintf("%.1f%%", m.tier.DepositFeeRate*100)) + "\n")
		if m.tier.MonthlyFee > 0 {
			sb.WriteString("   " + dimStyle.Render("monthly fee    ") + normalStyle.Render(formatMoney(m.tier.MonthlyFee, "USD")) + "\n")
		}
		if m.tier.NextLevelAt > 0 {
			remaining := m.tier.NextLevelAt - m.tier.LifetimeDeposit
			if remaining > 0 {
				sb.WriteString("   " + dimStyle.Render(fmt.Sprintf("deposit %s more to reach the next tier", formatMoney(remaining, "USD"))) + "\n")
			}
		}
	} else {
		sb.WriteString("   " + dimStyle.Render("unavailable") + "\n")
	}

	if m.statusMsg != "" {
		sb.WriteString("\n " + accentStyle.Render(m.statusMsg) + "\n")
	}
	return sb.String()
}

func (m accountModel) codeEntryView() string {
	var sb strings.Builder
	if m.tfaStage == tfaShowSecret && m.tfaSetup != nil {
		sb.WriteString(" " + selectedStyle.Render("Enable two-factor authentication") + "\n\n")
		sb.WriteString("   " + dimStyle.Render("add this secret to your authenticator app:") + "\n")
		sb.WriteString("   " + panStyle.Render(m.tfaSetup.Secret) + "\n\n")
	} else {
		sb.WriteString(" " + selectedStyle.Render("Disable two-factor authentication") + "\n\n")
	}
	sb.WriteString("   " + dimStyle.Render("code ") + inputPromptStyle.Render("> ") + normalStyle.Render(m.codeInput) + accentStyle.Render("▏") + "\n")
	if m.statusMsg != "" {
		sb.WriteString("\n " + dangerStyle.Render(m.statusMsg) + "\n")
	}
	return sb.String()
}
