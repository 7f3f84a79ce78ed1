package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

// browserCommands maps GOOS to the command that hands a URL to the default browser.
var browserCommands = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"freebsd": {"xdg-open"},
	"openbsd": {"xdg-open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

var (
	getRuntime   = func() string { return runtime.GOOS }
	startCommand = func(name string, args ...string) error { return exec.Command(name, args...).Start() }
)

// OpenBrowser opens url in the system browser without waiting for it to exit.
// Used by the auth flow; callers print the URL when this fails.
func OpenBrowser(url string) error {
	rt := getRuntime()
	command, ok := browserCommands[rt]
	if !ok {
		return fmt.Errorf("%w: cannot open a browser on %s", ErrNotImplemented, rt)
	}

	args := append(command[1:len(command):len(command)], url)
	if err := startCommand(command[0], args...); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
