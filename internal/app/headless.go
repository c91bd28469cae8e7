package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/five82/imageposter/internal/dtf"
)

// Environment variables read in headless mode, optionally from .env.
const (
	envEmail    = "IMAGEPOSTER_EMAIL"
	envPassword = "IMAGEPOSTER_PASSWORD"
	envToken    = "IMAGEPOSTER_TOKEN"
)

// ErrNoCredentials is returned when headless mode has no way to log in.
var ErrNoCredentials = errors.New("no credentials: pass -email or -token, or set " + envEmail)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func runHeadless(ctx context.Context, svc *Service, opts Options, stdout, stderr io.Writer) error {
	account, err := headlessLogin(ctx, svc, opts, stderr)
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "Logged in as %s (id %d)\n", account.Name, account.ID)

	if strings.TrimSpace(opts.Source) == "" {
		return fmt.Errorf("nothing to publish: pass -dir or -files")
	}
	watermark := svc.Prefs().Watermark
	if opts.Watermark != nil {
		watermark = *opts.Watermark
	}

	url, err := svc.Publish(ctx, PublishRequest{Source: opts.Source, Title: opts.Title, Watermark: watermark})
	snap := svc.Store().Snapshot()
	for _, it := range snap.Items {
		if it.Err != nil {
			fmt.Fprintf(stderr, "failed: %s: %v\n", it.Path, it.Err)
		}
	}
	if err != nil {
		return err
	}
	uploaded, failed := snap.Counts()
	fmt.Fprintf(stderr, "Uploaded %d of %d files\n", uploaded, uploaded+failed)
	fmt.Fprintln(stdout, url)

	if !opts.NoBrowser {
		if err := svc.Open(url); err != nil {
			fmt.Fprintf(stderr, "warning: %v\n", err)
		}
	}
	return nil
}

func headlessLogin(ctx context.Context, svc *Service, opts Options, stderr io.Writer) (dtf.Account, error) {
	if token := firstNonEmpty(opts.Token, os.Getenv(envToken)); token != "" {
		return svc.LoginWithToken(ctx, token)
	}
	if opts.Email == "" && os.Getenv(envEmail) == "" {
		account, ok, err := svc.Restore(ctx)
		if err != nil {
			return dtf.Account{}, err
		}
		if ok {
			return account, nil
		}
		return dtf.Account{}, ErrNoCredentials
	}

	email := firstNonEmpty(opts.Email, os.Getenv(envEmail))
	password := os.Getenv(envPassword)
	if password == "" {
		fmt.Fprintf(stderr, "Password for %s: ", email)
		pw, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(stderr)
		if err != nil {
			return dtf.Account{}, fmt.Errorf("read password: %w", err)
		}
		password = string(pw)
	}
	return svc.Login(ctx, email, password)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
