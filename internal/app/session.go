package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/imageposter/internal/dtf"
	"github.com/five82/imageposter/internal/files"
	"github.com/five82/imageposter/internal/prefs"
	"github.com/five82/imageposter/internal/state"
)

// hitTimeout bounds the post-login warm-up.
const hitTimeout = 30 * time.Second

// Service binds one dtf session to the prefs file. Both shells drive it.
type Service struct {
	client    *dtf.Client
	store     *state.Store
	prefsPath string
	logger    *slog.Logger
	open      func(string) error
}

// NewService wires a client to the prefs file at prefsPath.
func NewService(client *dtf.Client, store *state.Store, prefsPath string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if store == nil {
		store = &state.Store{}
	}
	return &Service{
		client:    client,
		store:     store,
		prefsPath: prefsPath,
		logger:    logger,
		open:      OpenBrowser,
	}
}

// Store exposes the progress of the running publish job.
func (s *Service) Store() *state.Store { return s.store }

// Prefs returns the current preferences file contents.
func (s *Service) Prefs() prefs.Prefs {
	p, _ := prefs.Load(s.prefsPath)
	return p
}

// Restore resumes the saved session, if any. A rejected token clears the
// saved session; a network failure keeps it for the next launch.
func (s *Service) Restore(ctx context.Context) (dtf.Account, bool, error) {
	saved := s.Prefs().Session
	token := saved.Cookies[dtf.TokenCookie]
	if token == "" {
		return dtf.Account{}, false, nil
	}

	s.client.LoadCookies(withoutToken(saved.Cookies))
	account, err := s.client.LoginWithToken(ctx, token)
	if err != nil {
		if errors.Is(err, dtf.ErrInvalidCredentials) {
			s.logger.Warn("saved session rejected", "username", saved.Username)
			if cerr := prefs.ClearSession(s.prefsPath); cerr != nil {
				s.logger.Warn("clear saved session", "error", cerr)
			}
			return dtf.Account{}, false, nil
		}
		return dtf.Account{}, false, fmt.Errorf("restore session: %w", err)
	}
	s.afterLogin(ctx, account)
	return account, true, nil
}

// Login authenticates with email and password.
func (s *Service) Login(ctx context.Context, email, password string) (dtf.Account, error) {
	account, err := s.client.LoginWithCredentials(ctx, email, password)
	if err != nil {
		return dtf.Account{}, err
	}
	s.afterLogin(ctx, account)
	return account, nil
}

// LoginWithToken authenticates with a pasted osnova-remember value.
func (s *Service) LoginWithToken(ctx context.Context, token string) (dtf.Account, error) {
	account, err := s.client.LoginWithToken(ctx, token)
	if err != nil {
		return dtf.Account{}, err
	}
	s.afterLogin(ctx, account)
	return account, nil
}

func (s *Service) afterLogin(ctx context.Context, account dtf.Account) {
	s.logger.Info("logged in", "user", account.Name, "user_id", account.ID)
	if err := s.persist(account); err != nil {
		s.logger.Warn("save session", "error", err)
	}
	if !s.Prefs().HitOnLogin {
		return
	}
	hitCtx, cancel := context.WithTimeout(ctx, hitTimeout)
	defer cancel()
	if id, err := s.client.HitRandomPost(hitCtx); err != nil {
		s.logger.Warn("post hit failed", "error", err)
	} else {
		s.logger.Debug("post hit", "id", id)
	}
}

func (s *Service) persist(account dtf.Account) error {
	cookies := s.client.SaveCookies()
	_, err := prefs.Update(s.prefsPath, func(p *prefs.Prefs) {
		p.Session = prefs.Session{Username: account.Name, UserID: account.ID, Cookies: cookies}
	})
	return err
}

// Account returns the logged-in identity.
func (s *Service) Account() (dtf.Account, bool) { return s.client.Account() }

// Logout ends the session and forgets it on disk.
func (s *Service) Logout() error {
	s.client.Logout()
	s.store.Reset()
	if err := prefs.ClearSession(s.prefsPath); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.Info("logged out")
	return nil
}

// PublishRequest is what the user asked to post.
type PublishRequest struct {
	Source    string // directory or ", " separated file list
	Title     string
	Watermark bool
}

// Publish loads the files named by req and posts them as one draft.
func (s *Service) Publish(ctx context.Context, req PublishRequest) (string, error) {
	account, ok := s.client.Account()
	if !ok {
		return "", fmt.Errorf("publish: %w", dtf.ErrInvalidCredentials)
	}

	p, err := prefs.Update(s.prefsPath, func(p *prefs.Prefs) { p.Watermark = req.Watermark })
	if err != nil {
		s.logger.Warn("save watermark preference", "error", err)
	}
	titler, err := files.NewTitler(p.TitleFind, p.TitleReplace)
	if err != nil {
		return "", err
	}
	tasks, err := files.Load(req.Source, titler)
	if err != nil {
		return "", fmt.Errorf("load files: %w", err)
	}
	s.logger.Info("publishing", "title", req.Title, "files", len(tasks), "watermark", req.Watermark)

	pub := &Publisher{Site: s.client, Store: s.store, Logger: s.logger}
	return pub.Publish(ctx, Job{
		Title:     req.Title,
		AccountID: account.ID,
		Watermark: req.Watermark,
		Tasks:     tasks,
	})
}

// Open shows url in the browser.
func (s *Service) Open(url string) error {
	return s.open(url)
}

func withoutToken(cookies map[string]string) map[string]string {
	out := make(map[string]string, len(cookies))
	for k, v := range cookies {
		if k != dtf.TokenCookie {
			out[k] = v
		}
	}
	return out
}
