package server

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openers maps GOOS to the command that hands a URL to the desktop.
var openers = map[string][]string{
	"windows": {"cmd", "/c", "start"},
	"darwin":  {"open"},
}

// OpenBrowser opens url in the default browser without waiting for it.
func OpenBrowser(url string) error {
	args, ok := openers[runtime.GOOS]
	if !ok {
		args = []string{"xdg-open"}
	}
	cmd := exec.Command(args[0], append(args[1:], url)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("opening %s: %w", url, err)
	}
	go cmd.Wait()
	return nil
}
