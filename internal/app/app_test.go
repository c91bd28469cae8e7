package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/imageposter/internal/dtf"
	"github.com/five82/imageposter/internal/prefs"
)

func writeConfig(t *testing.T, baseURL string) (configPath, logPath string) {
	t.Helper()
	dir := t.TempDir()
	logPath = filepath.Join(dir, "logs", "imageposter.log")
	configPath = filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("base_url = %q\nlog_path = %q\nlog_level = \"debug\"\nrequests_per_second = 0\nhit_max_attempts = 2\n", baseURL, logPath)
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath, logPath
}

func TestRun_HeadlessPublish(t *testing.T) {
	clearCredentialEnv(t)
	if err := os.Unsetenv(envToken); err != nil {
		t.Fatal(err)
	}
	fake := newFakeDTF(t)
	configPath, logPath := writeConfig(t, fake.server.URL)
	prefsPath := testPrefsPath(t)

	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), Options{
		ConfigPath: configPath,
		PrefsPath:  prefsPath,
		EnvFile:    writeEnv(t, envToken+"="+fakeToken+"\n"),
		Headless:   true,
		Source:     writeImages(t, "a.png"),
		Title:      "Walk",
		NoBrowser:  true,
		Stdout:     &stdout,
		Stderr:     &stderr,
	})
	if err != nil {
		t.Fatalf("Run: %v\n%s", err, stderr.String())
	}
	if got := strings.TrimSpace(stdout.String()); got != fakeDraftURL {
		t.Fatalf("stdout = %q", got)
	}

	logData, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(logData), "draft ready") {
		t.Fatalf("log missing draft line:\n%s", logData)
	}
	if p, _ := prefs.Load(prefsPath); p.Session.Cookies[dtf.TokenCookie] != fakeToken {
		t.Fatalf("session not saved: %+v", p.Session)
	}
}

func TestRun_Logout(t *testing.T) {
	configPath, _ := writeConfig(t, "https://dtf.ru")
	prefsPath := testPrefsPath(t)
	saved := prefs.Default()
	saved.Session = prefs.Session{UserID: 1, Cookies: map[string]string{dtf.TokenCookie: "x"}}
	if err := prefs.Save(prefsPath, saved); err != nil {
		t.Fatalf("save prefs: %v", err)
	}

	var stdout bytes.Buffer
	err := Run(context.Background(), Options{
		ConfigPath: configPath,
		PrefsPath:  prefsPath,
		EnvFile:    writeEnv(t, ""),
		Logout:     true,
		Stdout:     &stdout,
		Stderr:     &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "Logged out" {
		t.Fatalf("stdout = %q", stdout.String())
	}
	if p, _ := prefs.Load(prefsPath); !p.Session.Empty() {
		t.Fatalf("session kept: %+v", p.Session)
	}
}

func TestRun_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("hit_max_attempts = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := Run(context.Background(), Options{ConfigPath: path, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("err = %v", err)
	}
}

func writeEnv(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	return path
}

func TestLoadEnv(t *testing.T) {
	const key = "IMAGEPOSTER_LOADENV_TEST"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	if err := loadEnv(writeEnv(t, key+"=from-file\n")); err != nil {
		t.Fatalf("loadEnv: %v", err)
	}
	if got := os.Getenv(key); got != "from-file" {
		t.Fatalf("%s = %q", key, got)
	}
}

func TestLoadEnv_ExistingVariableWins(t *testing.T) {
	const key = "IMAGEPOSTER_LOADENV_KEEP"
	t.Setenv(key, "from-env")
	if err := loadEnv(writeEnv(t, key+"=from-file\n")); err != nil {
		t.Fatalf("loadEnv: %v", err)
	}
	if got := os.Getenv(key); got != "from-env" {
		t.Fatalf("%s = %q, want from-env", key, got)
	}
}

func TestLoadEnv_MissingFiles(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := loadEnv(""); err != nil {
		t.Fatalf("missing default .env should be ignored: %v", err)
	}
	if err := loadEnv(filepath.Join(t.TempDir(), "nope.env")); err == nil {
		t.Fatal("missing explicit env file should fail")
	}
}
