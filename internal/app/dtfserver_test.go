package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/five82/imageposter/internal/dtf"
	"github.com/five82/imageposter/internal/logging"
	"github.com/five82/imageposter/internal/state"
)

const (
	fakeToken    = "remember-me"
	fakePassword = "hunter2"
	fakeDraftURL = "https://dtf.ru/u/42-tester/draft"
)

// fakeDTF serves the handful of dtf.ru endpoints the client talks to.
type fakeDTF struct {
	server *httptest.Server

	mu       sync.Mutex
	rejected map[string]bool // upload filenames answered with an error
	uploads  []string
	saved    map[string]string
	hits     int
	checks   int
}

func newFakeDTF(t *testing.T) *fakeDTF {
	t.Helper()
	f := &fakeDTF{rejected: map[string]bool{}}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeDTF) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.URL.Path == "/auth/simple/login":
		_ = r.ParseForm()
		if r.PostForm.Get("values[password]") != fakePassword {
			reply(w, http.StatusOK, map[string]any{"rc": 400, "rm": "Неверный логин или пароль"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: dtf.TokenCookie, Value: fakeToken, Path: "/"})
		reply(w, http.StatusOK, map[string]any{"rc": 200})

	case r.URL.Path == "/auth/check":
		f.checks++
		if ck, err := r.Cookie(dtf.TokenCookie); err != nil || ck.Value != fakeToken {
			reply(w, http.StatusForbidden, map[string]any{"rc": 403, "rm": "Forbidden"})
			return
		}
		reply(w, http.StatusOK, map[string]any{"rc": 200, "data": map[string]any{"id": "42", "name": "tester"}})

	case r.URL.Path == "/writing":
		reply(w, http.StatusOK, map[string]any{"module.auth": map[string]any{"user_id": 42}})

	case r.URL.Path == "/andropov/upload":
		_, header, err := r.FormFile("file_0")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.uploads = append(f.uploads, header.Filename)
		if f.rejected[header.Filename] {
			reply(w, http.StatusOK, map[string]any{"result": []any{
				map[string]any{"type": "error", "data": map[string]any{"message": "Файл слишком большой"}},
			}})
			return
		}
		reply(w, http.StatusOK, map[string]any{"result": []any{
			map[string]any{
				"type":   "image",
				"render": "<div></div>",
				"data": map[string]any{
					"uuid":   "0f8fad5b-d9cb-469f-a165-70867728950e",
					"width":  2,
					"height": 2,
					"size":   68,
					"type":   "png",
					"color":  "ffffff",
				},
			},
		}})

	case r.URL.Path == "/writing/save":
		_ = r.ParseForm()
		f.saved = map[string]string{}
		for k := range r.PostForm {
			f.saved[k] = r.PostForm.Get(k)
		}
		reply(w, http.StatusOK, map[string]any{"rc": 200, "data": map[string]any{"entry": map[string]any{"url": fakeDraftURL}}})

	case strings.HasPrefix(r.URL.Path, "/hit/"):
		f.hits++
		reply(w, http.StatusOK, map[string]any{"rc": 200})

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeDTF) snapshot() (uploads []string, saved map[string]string, hits, checks int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...), f.saved, f.hits, f.checks
}

func reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// newTestService returns a Service talking to f that keeps prefs at prefsPath
// and records opened URLs instead of starting a browser.
func newTestService(t *testing.T, f *fakeDTF, prefsPath string) (*Service, *[]string) {
	t.Helper()
	client, err := dtf.NewClient(
		dtf.WithBaseURL(f.server.URL),
		dtf.WithRateLimit(0, 0),
		dtf.WithLogger(logging.Discard()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	svc := NewService(client, &state.Store{}, prefsPath, logging.Discard())
	var opened []string
	svc.open = func(url string) error {
		opened = append(opened, url)
		return nil
	}
	return svc, &opened
}

// writeImages creates small files under a fresh directory and returns it.
func writeImages(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("\x89PNG fake"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}
