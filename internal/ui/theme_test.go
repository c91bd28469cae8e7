package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestThemeLookups(t *testing.T) {
	if got := GetTheme("Kanagawa").Name; got != "Kanagawa" {
		t.Fatalf("GetTheme(Kanagawa) = %q", got)
	}
	if got := GetTheme("missing").Name; got != "Nightfox" {
		t.Fatalf("GetTheme fallback = %q, want Nightfox", got)
	}

	if got := NextTheme("Nightfox"); got != "Kanagawa" {
		t.Fatalf("NextTheme(Nightfox) = %q", got)
	}
	if got := NextTheme("Slate"); got != "Nightfox" {
		t.Fatalf("NextTheme should wrap, got %q", got)
	}
	if got := NextTheme("unknown"); got != "Nightfox" {
		t.Fatalf("NextTheme(unknown) = %q", got)
	}
}

func TestThemeNames_ReturnsCopy(t *testing.T) {
	names := ThemeNames()
	names[0] = "changed"
	if ThemeNames()[0] != "Nightfox" {
		t.Fatal("ThemeNames exposed internal slice")
	}
}

func TestStatusStyle(t *testing.T) {
	th := GetTheme("Nightfox")
	styles := th.Styles()

	got := styles.StatusStyle("failed").GetBackground()
	if got != lipgloss.Color(th.StatusColors["failed"]) {
		t.Fatalf("StatusStyle(failed) background = %v", got)
	}
	got = styles.StatusStyle("unknown").GetBackground()
	if got != lipgloss.Color(th.Muted) {
		t.Fatalf("StatusStyle(unknown) background = %v, want muted", got)
	}
}

func TestEveryThemeColorsEveryStatus(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, status := range []string{"pending", "uploading", "uploaded", "failed"} {
			if th.StatusColors[status] == "" {
				t.Errorf("%s: no color for %s", name, status)
			}
		}
	}
}

func TestCreateLogo_Fallback(t *testing.T) {
	orig := figlet
	t.Cleanup(func() { figlet = orig })

	figlet = func(string) (string, error) { return "  \n", nil }
	if got := createLogo(); got != "IMAGEPOSTER" {
		t.Fatalf("createLogo = %q, want IMAGEPOSTER", got)
	}

	figlet = func(string) (string, error) { return "art\n\n", nil }
	if got := createLogo(); got != "art" {
		t.Fatalf("createLogo = %q, want art", got)
	}
}
