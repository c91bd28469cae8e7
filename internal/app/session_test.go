package app

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/five82/imageposter/internal/dtf"
	"github.com/five82/imageposter/internal/prefs"
)

func testPrefsPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "prefs.toml")
}

func TestService_LoginPersistsSession(t *testing.T) {
	fake := newFakeDTF(t)
	path := testPrefsPath(t)
	svc, _ := newTestService(t, fake, path)

	account, err := svc.Login(context.Background(), "me@example.com", fakePassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if account.ID != 42 || account.Name != "tester" {
		t.Fatalf("account = %+v", account)
	}

	p, err := prefs.Load(path)
	if err != nil {
		t.Fatalf("load prefs: %v", err)
	}
	if p.Session.UserID != 42 || p.Session.Username != "tester" {
		t.Fatalf("session = %+v", p.Session)
	}
	if p.Session.Cookies[dtf.TokenCookie] != fakeToken {
		t.Fatalf("token cookie not saved: %v", p.Session.Cookies)
	}
	if p.Session.Cookies["adblock-state"] != "1" {
		t.Fatalf("tracking cookies not saved: %v", p.Session.Cookies)
	}
}

func TestService_LoginRejected(t *testing.T) {
	fake := newFakeDTF(t)
	path := testPrefsPath(t)
	svc, _ := newTestService(t, fake, path)

	_, err := svc.Login(context.Background(), "me@example.com", "wrong")
	if !errors.Is(err, dtf.ErrInvalidResponse) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
	if e, _ := dtf.AsError(err); e == nil || e.Message != "Неверный логин или пароль" {
		t.Fatalf("server message lost: %v", err)
	}
	if p, _ := prefs.Load(path); !p.Session.Empty() {
		t.Fatalf("session saved after failed login: %+v", p.Session)
	}
}

func TestService_RestoreResumesSavedSession(t *testing.T) {
	fake := newFakeDTF(t)
	path := testPrefsPath(t)
	first, _ := newTestService(t, fake, path)
	if _, err := first.Login(context.Background(), "me@example.com", fakePassword); err != nil {
		t.Fatalf("Login: %v", err)
	}

	second, _ := newTestService(t, fake, path)
	account, ok, err := second.Restore(context.Background())
	if err != nil || !ok {
		t.Fatalf("Restore = %v, %v", ok, err)
	}
	if account.ID != 42 {
		t.Fatalf("account = %+v", account)
	}
	if got, ok := second.Account(); !ok || got.ID != 42 {
		t.Fatalf("Account() = %+v, %v", got, ok)
	}
}

func TestService_RestoreWithoutSavedSession(t *testing.T) {
	fake := newFakeDTF(t)
	svc, _ := newTestService(t, fake, testPrefsPath(t))

	_, ok, err := svc.Restore(context.Background())
	if err != nil || ok {
		t.Fatalf("Restore = %v, %v, want false, nil", ok, err)
	}
	if _, _, _, checks := fake.snapshot(); checks != 0 {
		t.Fatalf("account check sent without a token")
	}
}

func TestService_RestoreRejectedTokenClearsSession(t *testing.T) {
	fake := newFakeDTF(t)
	path := testPrefsPath(t)
	saved := prefs.Default()
	saved.Theme = "Slate"
	saved.Session = prefs.Session{Username: "old", UserID: 7, Cookies: map[string]string{dtf.TokenCookie: "stale"}}
	if err := prefs.Save(path, saved); err != nil {
		t.Fatalf("save prefs: %v", err)
	}

	svc, _ := newTestService(t, fake, path)
	_, ok, err := svc.Restore(context.Background())
	if err != nil || ok {
		t.Fatalf("Restore = %v, %v, want false, nil", ok, err)
	}

	p, _ := prefs.Load(path)
	if !p.Session.Empty() {
		t.Fatalf("rejected session kept: %+v", p.Session)
	}
	if p.Theme != "Slate" {
		t.Fatalf("theme lost: %q", p.Theme)
	}
}

func TestService_RestoreNetworkFailureKeepsSession(t *testing.T) {
	fake := newFakeDTF(t)
	path := testPrefsPath(t)
	saved := prefs.Default()
	saved.Session = prefs.Session{UserID: 7, Cookies: map[string]string{dtf.TokenCookie: fakeToken}}
	if err := prefs.Save(path, saved); err != nil {
		t.Fatalf("save prefs: %v", err)
	}

	svc, _ := newTestService(t, fake, path)
	fake.server.Close()

	_, ok, err := svc.Restore(context.Background())
	if ok || !errors.Is(err, dtf.ErrTransport) {
		t.Fatalf("Restore = %v, %v, want transport error", ok, err)
	}
	if p, _ := prefs.Load(path); p.Session.Cookies[dtf.TokenCookie] != fakeToken {
		t.Fatal("session dropped on a network failure")
	}
}

func TestService_HitOnLogin(t *testing.T) {
	fake := newFakeDTF(t)
	path := testPrefsPath(t)
	p := prefs.Default()
	p.HitOnLogin = true
	if err := prefs.Save(path, p); err != nil {
		t.Fatalf("save prefs: %v", err)
	}

	svc, _ := newTestService(t, fake, path)
	if _, err := svc.LoginWithToken(context.Background(), fakeToken); err != nil {
		t.Fatalf("LoginWithToken: %v", err)
	}
	if _, _, hits, _ := fake.snapshot(); hits != 1 {
		t.Fatalf("hits = %d, want 1", hits)
	}
}

func TestService_PublishEndToEnd(t *testing.T) {
	fake := newFakeDTF(t)
	fake.rejected["b.png"] = true
	path := testPrefsPath(t)
	svc, _ := newTestService(t, fake, path)
	if _, err := svc.LoginWithToken(context.Background(), fakeToken); err != nil {
		t.Fatalf("LoginWithToken: %v", err)
	}

	dir := writeImages(t, "a.png", "b.png", "notes.txt")
	url, err := svc.Publish(context.Background(), PublishRequest{Source: dir, Title: "Walk", Watermark: true})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if url != fakeDraftURL {
		t.Fatalf("url = %q", url)
	}

	uploads, saved, _, _ := fake.snapshot()
	if len(uploads) != 2 || uploads[0] != "a.png" || uploads[1] != "b.png" {
		t.Fatalf("uploads = %v", uploads)
	}

	var entry struct {
		Title  string `json:"title"`
		UserID int64  `json:"user_id"`
		Entry  struct {
			Blocks []struct {
				Type string `json:"type"`
			} `json:"blocks"`
		} `json:"entry"`
	}
	if err := json.Unmarshal([]byte(saved["entry"]), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry.Title != "Walk" || entry.UserID != 42 {
		t.Fatalf("entry title=%q user=%d", entry.Title, entry.UserID)
	}
	if n := len(entry.Entry.Blocks); n != 4 {
		t.Fatalf("blocks = %d, want one media block plus the watermark", n)
	}
	if entry.Entry.Blocks[0].Type != "media" {
		t.Fatalf("first block = %q", entry.Entry.Blocks[0].Type)
	}

	if p, _ := prefs.Load(path); !p.Watermark {
		t.Fatal("watermark choice not remembered")
	}
	uploaded, failed := svc.Store().Snapshot().Counts()
	if uploaded != 1 || failed != 1 {
		t.Fatalf("counts = %d/%d", uploaded, failed)
	}
}

func TestService_PublishRequiresLogin(t *testing.T) {
	svc, _ := newTestService(t, newFakeDTF(t), testPrefsPath(t))
	_, err := svc.Publish(context.Background(), PublishRequest{Source: writeImages(t, "a.png")})
	if !errors.Is(err, dtf.ErrInvalidCredentials) {
		t.Fatalf("err = %v", err)
	}
}

func TestService_LogoutKeepsPreferences(t *testing.T) {
	fake := newFakeDTF(t)
	path := testPrefsPath(t)
	if _, err := prefs.Update(path, func(p *prefs.Prefs) { p.Theme = "Kanagawa" }); err != nil {
		t.Fatalf("update prefs: %v", err)
	}
	svc, _ := newTestService(t, fake, path)
	if _, err := svc.LoginWithToken(context.Background(), fakeToken); err != nil {
		t.Fatalf("LoginWithToken: %v", err)
	}

	if err := svc.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := svc.Account(); ok {
		t.Fatal("still logged in")
	}
	p, _ := prefs.Load(path)
	if !p.Session.Empty() || p.Theme != "Kanagawa" {
		t.Fatalf("prefs after logout = %+v", p)
	}
}

func TestWithoutToken(t *testing.T) {
	got := withoutToken(map[string]string{dtf.TokenCookie: "x", "adblock-state": "1"})
	if len(got) != 1 || got["adblock-state"] != "1" {
		t.Fatalf("withoutToken = %v", got)
	}
}
