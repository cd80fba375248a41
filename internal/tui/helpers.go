package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// pageSize is the default page length for list endpoints.
const pageSize = 50

// formatTime renders a relative timestamp for list displays.
func formatTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// formatMoney renders an amount with its currency, e.g. "$125.00" or
// "0.00215 BTC". Fiat gets two decimals and a symbol where one exists;
// crypto keeps full precision with the code suffixed.
func formatMoney(amount float64, currency string) string {
	switch strings.ToUpper(currency) {
	case "USD", "":
		return fmt.Sprintf("$%.2f", amount)
	case "EUR":
		return fmt.Sprintf("€%.2f", amount)
	case "GBP":
		return fmt.Sprintf("£%.2f", amount)
	case "BTC", "ETH", "LTC":
		return fmt.Sprintf("%.8g %s", amount, strings.ToUpper(currency))
	default:
		return fmt.Sprintf("%.2f %s", amount, strings.ToUpper(currency))
	}
}

// formatExpiry renders a card expiry as MM/YY.
func formatExpiry(month, year int) string {
	return fmt.Sprintf("%02d/%02d", month, year%100)
}

// editRune applies a single key press to a text value being edited:
// printable runes append, backspace deletes, everything else is ignored.
func editRune(s, key string) string {
	switch key {
	case "backspace":
		if len(s) > 0 {
			runes := []rune(s)
			return string(runes[:len(runes)-1])
		}
		return s
	case "space":
		return s + " "
	default:
		if utf8.RuneCountInString(key) == 1 {
			return s + key
		}
		return s
	}
}

// truncateToHeight caps a multi-line string at n lines.
func truncateToHeight(s string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}
