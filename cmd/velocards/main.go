package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/velocards/velocards-cli/internal/browser"
	"github.com/velocards/velocards-cli/internal/cache"
	"github.com/velocards/velocards-cli/internal/config"
	"github.com/velocards/velocards-cli/internal/logging"
	"github.com/velocards/velocards-cli/internal/tui"
	"github.com/velocards/velocards-cli/pkg/client"
	"github.com/velocards/velocards-cli/pkg/session"
	"github.com/velocards/velocards-cli/pkg/tokenstore"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// cacheFileName is the offline snapshot database inside the data dir.
const cacheFileName = "cache.db"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cmd, rest := splitCommand(os.Args[1:])

	switch cmd {
	case "version":
		fmt.Println("velocards " + version)
		return nil
	case "help":
		printHelp()
		return nil
	case "terms", "privacy", "support":
		return openSite(cmd)
	}

	cfg, err := config.Load(rest)
	if err != nil {
		return err
	}

	log, closeLog, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	tokens := tokenstore.NewFileStore(cfg.DataDir)
	c := client.New(cfg.APIBaseURL, tokens, client.WithLogger(log))
	sess := session.New(c, tokens, session.WithLogger(log))
	sess.OnVerificationRequired(func(verifyURL string) {
		// The session store hands back a page path; the web dashboard
		// serves the page, not the API host.
		abs := verifyPageURL(cfg.WebBaseURL, verifyURL)
		color.Yellow("Your email is not verified yet.")
		if err := browser.Open(abs); err != nil {
			fmt.Printf("Verify it here:\n  %s\n", abs)
		}
	})

	switch cmd {
	case "login":
		return runLogin(c, sess, cfg)
	case "register":
		return runRegister(sess)
	case "logout":
		sess.Logout(context.Background())
		if err := clearSnapshots(cfg.DataDir); err != nil {
			log.Warn(context.Background(), "clearing cached snapshots", "err", err)
		}
		color.Green("Logged out.")
		return nil
	case "":
		// fall through to the dashboard
	default:
		printHelp()
		return fmt.Errorf("unknown command %q", cmd)
	}

	sess.CheckAuth(context.Background())
	if !sess.Current().Authenticated {
		fmt.Println("Not signed in. Run: velocards login")
		return nil
	}
	return runDashboard(c, sess, cfg)
}

// splitCommand separates a leading subcommand from the flag arguments.
// Flags may follow the subcommand: `velocards login -api http://...`.
func splitCommand(args []string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		// --version and --help keep working without a bare subcommand.
		for _, a := range args {
			switch a {
			case "--version", "-v":
				return "version", nil
			case "--help", "-h":
				return "help", nil
			}
		}
		return "", args
	}
	return args[0], args[1:]
}

// buildLogger writes structured logs to a file in the data dir when
// debug is on, and discards everything otherwise. TUI programs own the
// terminal, so logs never go to stderr.
func buildLogger(cfg *config.Config) (logging.Logger, func(), error) {
	if !cfg.Debug {
		return logging.Nop(), func() {}, nil
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(cfg.DataDir, "velocards.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return logging.NewSlogLogger(slog.New(handler)), func() { f.Close() }, nil //nolint:errcheck
}

func runLogin(c *client.Client, sess *session.Store, cfg *config.Config) error {
	reader := bufio.NewReader(os.Stdin)

	email, err := promptLine(reader, "Email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := promptPassword("Password", os.Stdout)
	if err != nil {
		return err
	}

	ctx := context.Background()
	err = sess.Login(ctx, email, password)
	if errors.Is(err, session.ErrTwoFactorRequired) {
		code, codeErr := promptLine(reader, "Two-factor code", os.Stdout)
		if codeErr != nil {
			return codeErr
		}
		err = sess.CompleteTwoFactor(ctx, code)
	}
	if err != nil {
		color.Red("Sign-in failed: %v", err)
		return nil
	}

	st := sess.Current()
	if !st.Authenticated {
		// Unverified email: the verification hook already spoke.
		return nil
	}
	color.Green("Signed in as %s", st.User.Email)
	fmt.Println()
	return runDashboard(c, sess, cfg)
}

func runRegister(sess *session.Store) error {
	reader := bufio.NewReader(os.Stdin)

	req := client.RegisterRequest{}
	var err error
	if req.Email, err = promptLine(reader, "Email", os.Stdout); err != nil {
		return err
	}
	if req.FirstName, err = promptLine(reader, "First name", os.Stdout); err != nil {
		return err
	}
	if req.LastName, err = promptLine(reader, "Last name", os.Stdout); err != nil {
		return err
	}
	if req.Password, err = promptPassword("Password", os.Stdout); err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password", os.Stdout)
	if err != nil {
		return err
	}
	if confirm != req.Password {
		color.Red("Passwords do not match.")
		return nil
	}

	if err := sess.Register(context.Background(), req); err != nil {
		color.Red("Registration failed: %v", err)
		return nil
	}
	color.Green("Account created. Verify your email, then run: velocards login")
	return nil
}

// runDashboard wires the offline cache and launches the TUI.
func runDashboard(c *client.Client, sess *session.Store, cfg *config.Config) error {
	var snapshots *cache.Store
	if err := os.MkdirAll(cfg.DataDir, 0o700); err == nil {
		if cs, err := cache.Open(filepath.Join(cfg.DataDir, cacheFileName)); err == nil {
			snapshots = cs
			defer cs.Close() //nolint:errcheck
		}
	}
	// A nil cache just disables the offline fallback.

	app := tui.NewApp(tui.Options{
		Client:      c,
		Session:     sess,
		Cache:       snapshots,
		Poll:        cfg.PollInterval,
		DownloadDir: filepath.Join(cfg.DataDir, "invoices"),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	c.SetSessionExpiredHook(func() {
		p.Send(tui.SessionExpiredMsg{})
	})
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// verifyPageURL resolves the session store's relative verification path
// against the web dashboard base URL.
func verifyPageURL(webBase, path string) string {
	return strings.TrimSuffix(webBase, "/") + path
}

// clearSnapshots wipes the offline cache so no account data survives a
// sign-out. A cache that was never created is not an error.
func clearSnapshots(dataDir string) error {
	path := filepath.Join(dataDir, cacheFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	cs, err := cache.Open(path)
	if err != nil {
		return err
	}
	defer cs.Close() //nolint:errcheck
	return cs.Clear(context.Background())
}

func openSite(page string) error {
	url := "https://velocards.com/" + page
	if err := browser.Open(url); err != nil {
		fmt.Println(url)
	}
	return nil
}

func printHelp() {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a78bfa")).
		Bold(true).
		Render("V E L O C A R D S")

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	fmt.Println()
	fmt.Println("  " + title)
	fmt.Println("  " + dim.Render("virtual cards, from your terminal"))
	fmt.Println()
	fmt.Println("  usage: velocards [command] [flags]")
	fmt.Println()
	fmt.Println("  commands:")
	fmt.Println("    (none)     open the dashboard")
	fmt.Println("    login      sign in and open the dashboard")
	fmt.Println("    register   create an account")
	fmt.Println("    logout     sign out and clear local state")
	fmt.Println("    support    open the help center")
	fmt.Println("    terms      open the terms of service")
	fmt.Println("    privacy    open the privacy policy")
	fmt.Println("    version    print the version")
	fmt.Println()
	fmt.Println("  flags:")
	fmt.Println("    -api URL        API base URL       (env VELOCARDS_API_URL)")
	fmt.Println("    -web URL        web dashboard URL  (env VELOCARDS_WEB_URL)")
	fmt.Println("    -data-dir DIR   state directory    (env VELOCARDS_DATA_DIR)")
	fmt.Println("    -config FILE    config file        (env VELOCARDS_CONFIG)")
	fmt.Println("    -poll DURATION  dashboard refresh interval")
	fmt.Println("    -debug          log to DATA_DIR/velocards.log")
	fmt.Println()
}
