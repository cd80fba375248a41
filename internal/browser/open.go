// Package browser hands URLs (and downloaded files) to the user's
// default browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Open launches the platform's URL opener for url. The opener is started
// and not waited on; failures to launch are returned, failures inside the
// browser are not observable.
func Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("browser: no opener for %s", runtime.GOOS)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("browser: open %s: %w", url, err)
	}
	return nil
}
