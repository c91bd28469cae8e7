// Package prefs persists imageposter user preferences and the saved dtf.ru
// session. Everything lives in ~/.config/imageposter/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/imageposter/internal/config"
)

// Prefs holds user preferences and the last session.
type Prefs struct {
	Theme        string  `toml:"theme"`
	Watermark    bool    `toml:"watermark"`
	TitleFind    string  `toml:"title_find"`
	TitleReplace string  `toml:"title_replace"`
	HitOnLogin   bool    `toml:"hit_on_login"`
	Session      Session `toml:"session"`
}

// Session is what is needed to resume a login without a password.
type Session struct {
	Username string            `toml:"username"`
	UserID   int64             `toml:"user_id"`
	Cookies  map[string]string `toml:"cookies"`
}

// Empty reports whether no session was saved.
func (s Session) Empty() bool {
	return s.UserID == 0 && len(s.Cookies) == 0
}

const (
	defaultPrefsPath = "~/.config/imageposter/prefs.toml"
	defaultTheme     = "Nightfox"
)

// Default returns the preferences used on first launch.
func Default() Prefs {
	return Prefs{Theme: defaultTheme}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from path. A missing, unreadable or malformed file
// yields the defaults so the UI can always start.
func Load(path string) (Prefs, error) {
	prefs := Default()
	resolved, err := resolvePath(path)
	if err != nil {
		return prefs, nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return prefs, nil
	}
	if err := toml.Unmarshal(data, &prefs); err != nil {
		return Default(), nil
	}
	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	return prefs, nil
}

// Save replaces the file at path with p. The file holds a session token, so
// it is written owner-only through a temp file in the same directory.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp.Name(), resolved); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

// Update loads the current file, applies fn and saves the result.
func Update(path string, fn func(*Prefs)) (Prefs, error) {
	p, _ := Load(path)
	fn(&p)
	if err := Save(path, p); err != nil {
		return p, err
	}
	return p, nil
}

// ClearSession forgets the saved login and keeps the other preferences.
func ClearSession(path string) error {
	_, err := Update(path, func(p *Prefs) { p.Session = Session{} })
	return err
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPrefsPath
	}
	return config.ExpandPath(path)
}
