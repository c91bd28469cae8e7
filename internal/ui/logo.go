package ui

import (
	"os/exec"
	"strings"
)

const logoText = "imageposter"

// figlet is replaced in tests.
var figlet = func(text string) (string, error) {
	out, err := exec.Command("figlet", "-f", "small", text).Output()
	return string(out), err
}

// createLogo renders the banner with figlet when available.
func createLogo() string {
	out, err := figlet(logoText)
	if err != nil || strings.TrimSpace(out) == "" {
		return strings.ToUpper(logoText)
	}
	return strings.TrimRight(out, "\n")
}
