package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/velocards/velocards-cli/pkg/session"
	"github.com/velocards/velocards-cli/pkg/tokenstore"
)

func newTestApp() App {
	a := NewApp(Options{
		Session: session.New(nil, tokenstore.NewMemStore()),
	})
	a.width = 80
	a.height = 30
	return a
}

func TestAppTabSwitching(t *testing.T) {
	tests := []struct {
		key      string
		wantView view
	}{
		{"2", viewCards},
		{"3", viewActivity},
		{"4", viewDeposits},
		{"5", viewInvoices},
		{"6", viewAccount},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			app := newTestApp()
			model, _ := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(tc.key)})
			a := model.(App)
			if a.view != tc.wantView {
				t.Errorf("after key %q: expected view=%d, got %d", tc.key, tc.wantView, a.view)
			}
		})
	}
}

func TestAppGlobalQuitOnQ(t *testing.T) {
	a := newTestApp()
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command on 'q', got nil")
	}
}

func TestAppSessionExpiredQuits(t *testing.T) {
	a := newTestApp()
	model, cmd := a.Update(SessionExpiredMsg{})
	a = model.(App)
	if !a.expired {
		t.Error("expected expired=true after SessionExpiredMsg")
	}
	if cmd == nil {
		t.Fatal("expected quit command after SessionExpiredMsg, got nil")
	}
	if !strings.Contains(a.View(), "session expired") {
		t.Errorf("expected expiry notice in view, got:\n%s", a.View())
	}
}

func TestAppViewRendersTabBar(t *testing.T) {
	a := newTestApp()
	model, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	a = model.(App)

	view := a.View()
	for _, tab := range []string{"Overview", "Cards", "Activity", "Deposits", "Invoices", "Account"} {
		if !strings.Contains(view, tab) {
			t.Errorf("expected %q tab in app view, got:\n%s", tab, view)
		}
	}
}

func TestAppIsEditingCardIssueForm(t *testing.T) {
	a := newTestApp()
	a.view = viewCards
	a.cards.issuing = true
	if !a.isEditing() {
		t.Error("expected isEditing=true while issuing a card")
	}

	a.cards.issuing = false
	if a.isEditing() {
		t.Error("expected isEditing=false in card list")
	}
}

func TestAppIsEditingTwoFactorCode(t *testing.T) {
	a := newTestApp()
	a.view = viewAccount
	a.account.tfaStage = tfaShowSecret
	if !a.isEditing() {
		t.Error("expected isEditing=true during 2fa code entry")
	}
}

func TestAppDigitGoesToFormWhileEditing(t *testing.T) {
	a := newTestApp()
	a.view = viewAccount
	a.account.tfaStage = tfaDisabling

	// "2" while entering a code must feed the code input, not switch tabs.
	model, _ := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	a = model.(App)
	if a.view != viewAccount {
		t.Errorf("expected to stay on account view, got %d", a.view)
	}
	if a.account.codeInput != "2" {
		t.Errorf("expected codeInput=%q, got %q", "2", a.account.codeInput)
	}
}

func TestAppHelpOverlay(t *testing.T) {
	a := newTestApp()

	model, _ := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	a = model.(App)
	if !a.helpOpen {
		t.Fatal("expected help overlay open after '?'")
	}
	if !strings.Contains(a.View(), "Support") {
		t.Error("expected support link in help overlay")
	}

	model, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	a = model.(App)
	if a.helpOpen {
		t.Error("expected help overlay closed after esc")
	}
}

func TestAppShimmerFrameIncrements(t *testing.T) {
	a := newTestApp()
	initial := a.frame

	model, _ := a.Update(shimmerTickMsg{})
	a = model.(App)

	if a.frame != initial+1 {
		t.Errorf("expected frame=%d after shimmerTickMsg, got %d", initial+1, a.frame)
	}
}
