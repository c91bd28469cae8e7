package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/five82/imageposter/internal/draft"
	"github.com/five82/imageposter/internal/dtf"
	"github.com/five82/imageposter/internal/files"
	"github.com/five82/imageposter/internal/state"
)

var (
	// ErrNothingUploaded is returned when every file failed to upload.
	ErrNothingUploaded = errors.New("no file was uploaded")
	// ErrNoDraftURL is returned when the save succeeded without a draft link.
	ErrNoDraftURL = errors.New("server did not return a draft url")
)

// Site is the part of dtf.Client the publish pipeline drives.
type Site interface {
	CreateDraftShell(ctx context.Context) (dtf.DraftHandle, error)
	UploadFile(ctx context.Context, path, mimeType string) (draft.Asset, error)
	SaveDraft(ctx context.Context, title string, accountID int64, watermark bool, uploads []draft.Upload) (dtf.DraftResult, error)
}

var _ Site = (*dtf.Client)(nil)

// Job is one draft to publish.
type Job struct {
	Title     string
	AccountID int64
	Watermark bool
	Tasks     []files.Task
}

// Publisher runs jobs one file at a time and reports into Store.
type Publisher struct {
	Site   Site
	Store  *state.Store
	Logger *slog.Logger
}

// Publish opens a draft, uploads every task in order and saves the draft with
// whatever uploaded. A failed upload is recorded and the rest continue. It
// returns the draft URL.
func (p *Publisher) Publish(ctx context.Context, job Job) (string, error) {
	store := p.Store
	if store == nil {
		store = &state.Store{}
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	items := make([]state.Item, len(job.Tasks))
	for i, t := range job.Tasks {
		items[i] = state.Item{Path: t.Path, Title: t.Title}
	}
	store.Begin(items)

	url, err := p.run(ctx, store, logger, job)
	store.Finish(url, err)
	if err != nil {
		logger.Error("publish failed", "title", job.Title, "error", err)
		return "", err
	}
	logger.Info("draft ready", "title", job.Title, "url", url)
	return url, nil
}

func (p *Publisher) run(ctx context.Context, store *state.Store, logger *slog.Logger, job Job) (string, error) {
	if len(job.Tasks) == 0 {
		return "", files.ErrNoFiles
	}
	if _, err := p.Site.CreateDraftShell(ctx); err != nil {
		return "", fmt.Errorf("create draft: %w", err)
	}

	tasks := make([]files.Task, len(job.Tasks))
	copy(tasks, job.Tasks)
	uploaded := 0
	for i := range tasks {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		store.StartItem(i)
		asset, err := p.Site.UploadFile(ctx, tasks[i].Path, tasks[i].MIMEType)
		tasks[i].Done = true
		if err != nil {
			if ctx.Err() != nil {
				store.FinishItem(i, "", err)
				return "", ctx.Err()
			}
			tasks[i].Err = err
			logger.Warn("upload failed", "path", tasks[i].Path, "error", err)
			store.FinishItem(i, "", err)
			continue
		}
		tasks[i].Asset = asset
		uploaded++
		store.FinishItem(i, asset.Data.UUID, nil)
	}
	if uploaded == 0 {
		return "", ErrNothingUploaded
	}

	uploads := make([]draft.Upload, len(tasks))
	for i, t := range tasks {
		uploads[i] = t.Upload()
	}
	store.SetPhase(state.PhaseSaving)
	result, err := p.Site.SaveDraft(ctx, job.Title, job.AccountID, job.Watermark, uploads)
	if err != nil {
		return "", fmt.Errorf("save draft: %w", err)
	}
	if result.URL == "" {
		return "", ErrNoDraftURL
	}
	return result.URL, nil
}
