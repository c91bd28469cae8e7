package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/five82/imageposter/internal/config"
	"github.com/five82/imageposter/internal/dtf"
	"github.com/five82/imageposter/internal/logging"
	"github.com/five82/imageposter/internal/state"
	"github.com/five82/imageposter/internal/ui"
)

// Options configure one imageposter run.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/imageposter/prefs.toml
	EnvFile    string // empty uses ./.env when present

	Headless  bool
	Source    string // directory or ", " separated files
	Title     string
	Email     string
	Token     string
	Watermark *bool // nil keeps the saved preference
	NoBrowser bool
	Logout    bool

	Stdout io.Writer
	Stderr io.Writer
}

// Run boots imageposter until the work is done or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := loadEnv(opts.EnvFile); err != nil {
		return err
	}

	var echo io.Writer
	if opts.Headless {
		echo = stderr
	}
	logger, closeLog, err := logging.Open(cfg.LogPath, cfg.LogLevel, echo)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closeLog() }()

	client, err := newClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("init dtf client: %w", err)
	}

	store := &state.Store{}
	svc := NewService(client, store, opts.PrefsPath, logger)

	if opts.Logout {
		if err := svc.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Logged out")
		return nil
	}
	if opts.Headless {
		return runHeadless(ctx, svc, opts, stdout, stderr)
	}

	userPrefs := svc.Prefs()
	watermark := userPrefs.Watermark
	if opts.Watermark != nil {
		watermark = *opts.Watermark
	}
	return ui.Run(ui.Options{
		Context:   ctx,
		Backend:   tuiBackend{svc},
		Store:     store,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		LogPath:   cfg.LogPath,
		Source:    opts.Source,
		Title:     opts.Title,
		Email:     opts.Email,
		Watermark: watermark,
		NoBrowser: opts.NoBrowser,
	})
}

func newClient(cfg config.Config, logger *slog.Logger) (*dtf.Client, error) {
	hit := dtf.DefaultHitPolicy()
	hit.MaxAttempts = cfg.HitMaxAttempts
	return dtf.NewClient(
		dtf.WithBaseURL(cfg.BaseURL),
		dtf.WithJSVersion(cfg.JSVersion),
		dtf.WithTimeout(cfg.RequestTimeout),
		dtf.WithRateLimit(cfg.RequestsPerSecond, 5),
		dtf.WithHitPolicy(hit),
		dtf.WithLogger(logger),
	)
}

// loadEnv reads a .env file into the environment. Variables already set win.
func loadEnv(path string) error {
	var err error
	if path == "" {
		err = godotenv.Load()
	} else {
		err = godotenv.Load(path)
	}
	if err != nil && !(path == "" && errors.Is(err, os.ErrNotExist)) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// tuiBackend adapts Service to the calls the TUI makes.
type tuiBackend struct{ svc *Service }

func (b tuiBackend) Restore(ctx context.Context) (dtf.Account, bool, error) {
	return b.svc.Restore(ctx)
}

func (b tuiBackend) Login(ctx context.Context, email, password string) (dtf.Account, error) {
	return b.svc.Login(ctx, email, password)
}

func (b tuiBackend) LoginWithToken(ctx context.Context, token string) (dtf.Account, error) {
	return b.svc.LoginWithToken(ctx, token)
}

func (b tuiBackend) Publish(ctx context.Context, source, title string, watermark bool) (string, error) {
	return b.svc.Publish(ctx, PublishRequest{Source: source, Title: title, Watermark: watermark})
}

func (b tuiBackend) Logout() error { return b.svc.Logout() }

func (b tuiBackend) Open(url string) error { return b.svc.Open(url) }

var _ ui.Backend = tuiBackend{}
