package app

import (
	"fmt"
	"os/exec"
	"runtime"
)

// startCommand is replaced in tests.
var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// OpenBrowser opens url with the platform's default handler.
func OpenBrowser(url string) error {
	name, args := browserCommand(runtime.GOOS, url)
	if err := startCommand(name, args...); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}

func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}
