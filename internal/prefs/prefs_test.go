package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
	if p.Watermark || p.HitOnLogin || !p.Session.Empty() {
		t.Fatalf("unexpected non-default prefs: %+v", p)
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	prefsDir := filepath.Join(home, ".config", "imageposter")
	if err := os.MkdirAll(prefsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	body := `theme = "Slate"
watermark = true
title_find = '\.\w+$'
title_replace = ""
hit_on_login = true

[session]
username = "alice"
user_id = 42

[session.cookies]
osnova-remember = "tok"
pushVisitsCount = "1"
`
	prefsFile := filepath.Join(prefsDir, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != "Slate" || !p.Watermark || !p.HitOnLogin {
		t.Fatalf("unexpected prefs: %+v", p)
	}
	if p.TitleFind != `\.\w+$` {
		t.Fatalf("TitleFind = %q", p.TitleFind)
	}
	if p.Session.Username != "alice" || p.Session.UserID != 42 {
		t.Fatalf("Session = %+v", p.Session)
	}
	if p.Session.Cookies["osnova-remember"] != "tok" || len(p.Session.Cookies) != 2 {
		t.Fatalf("Cookies = %v", p.Session.Cookies)
	}
}

func TestSave_RoundTripsSession(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "subdir", "prefs.toml")

	p := Prefs{
		Theme:     "Kanagawa",
		Watermark: true,
		Session: Session{
			Username: "bob",
			UserID:   7,
			Cookies:  map[string]string{"osnova-remember": "secret"},
		},
	}
	if err := Save(prefsFile, p); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	info, err := os.Stat(prefsFile)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Theme != "Kanagawa" || !loaded.Watermark {
		t.Fatalf("loaded = %+v", loaded)
	}
	if loaded.Session.Cookies["osnova-remember"] != "secret" || loaded.Session.UserID != 7 {
		t.Fatalf("Session = %+v", loaded.Session)
	}
}

func TestClearSession_KeepsPreferences(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
	if err := Save(prefsFile, Prefs{
		Theme:     "Slate",
		TitleFind: "x",
		Session:   Session{Username: "a", UserID: 1, Cookies: map[string]string{"k": "v"}},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := ClearSession(prefsFile); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !p.Session.Empty() || p.Session.Username != "" {
		t.Fatalf("session not cleared: %+v", p.Session)
	}
	if p.Theme != "Slate" || p.TitleFind != "x" {
		t.Fatalf("preferences lost: %+v", p)
	}
}

func TestUpdate_CreatesFile(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
	p, err := Update(prefsFile, func(p *Prefs) { p.Theme = "Slate" })
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.Theme != "Slate" {
		t.Fatalf("Theme = %q", p.Theme)
	}
	loaded, _ := Load(prefsFile)
	if loaded.Theme != "Slate" {
		t.Fatalf("loaded Theme = %q", loaded.Theme)
	}
}

func TestLoad_EmptyThemeFallsBackToDefault(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("theme = \"\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}

func TestLoad_InvalidTOMLFallsBackToDefault(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("not valid toml {{{\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}
