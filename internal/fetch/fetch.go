// Package fetch downloads interview recordings from object storage into the
// per-item work directory.
package fetch

import (
	"context"
	"log/slog"
	"os"

	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/logging"
	"github.com/Leewodls/ko-analysis/internal/queue"
	"github.com/Leewodls/ko-analysis/internal/services"
	"github.com/Leewodls/ko-analysis/internal/services/s3"
	"github.com/Leewodls/ko-analysis/internal/stage"
)

const progressStageFetching = "Fetching"

// Downloader retrieves one object into a local directory.
type Downloader interface {
	Download(ctx context.Context, objectKey, destDir string) (string, error)
}

// Fetcher integrates recording download with the workflow manager.
type Fetcher struct {
	cfg    *config.Config
	store  *queue.Store
	client Downloader
	logger *slog.Logger
}

// NewFetcher constructs the fetch stage.
func NewFetcher(cfg *config.Config, store *queue.Store, client Downloader, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		cfg:    cfg,
		store:  store,
		client: client,
		logger: logging.NewComponentLogger(logger, "fetch"),
	}
}

// SetLogger allows the workflow manager to route stage logs.
func (f *Fetcher) SetLogger(logger *slog.Logger) {
	if f == nil {
		return
	}
	f.logger = logging.NewComponentLogger(logger, "fetch")
}

// Prepare primes queue progress fields before executing the stage.
func (f *Fetcher) Prepare(ctx context.Context, item *queue.Item) error {
	if f == nil || f.cfg == nil || f.store == nil {
		return services.Wrap(services.ErrConfiguration, "fetch", "prepare", "fetch stage is not configured", nil)
	}
	item.InitProgress(progressStageFetching, "Downloading recording")
	return f.store.UpdateProgress(ctx, item)
}

// Execute downloads the item's recording and records the local source path.
func (f *Fetcher) Execute(ctx context.Context, item *queue.Item) error {
	if f == nil || f.cfg == nil || f.store == nil {
		return services.Wrap(services.ErrConfiguration, "fetch", "execute", "fetch stage is not configured", nil)
	}
	if item == nil {
		return services.Wrap(services.ErrValidation, "fetch", "execute", "queue item is nil", nil)
	}
	if f.client == nil {
		return services.Wrap(services.ErrConfiguration, "fetch", "execute", "s3 client unavailable", nil)
	}
	if item.ObjectKey == "" {
		return services.Wrap(services.ErrValidation, "fetch", "execute", "item has no object key", nil)
	}

	logger := logging.WithContext(ctx, f.logger)

	// Identity can be missing when the request carried only an object key.
	if item.UserID == "" || item.QuestionNum <= 0 {
		if userID, questionNum, ok := s3.ExtractUserInfo(item.ObjectKey); ok {
			item.UserID = userID
			item.QuestionNum = questionNum
			logger.Debug("derived interview identity from object key",
				logging.String(logging.FieldUserID, userID),
				logging.Int(logging.FieldQuestion, questionNum))
		}
	}

	workDir := item.WorkRoot(f.cfg.Paths.WorkDir)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "fetch", "execute", "create work directory", err)
	}

	local, err := f.client.Download(ctx, item.ObjectKey, workDir)
	if err != nil {
		return err
	}

	item.SourceFile = local
	item.AudioURL = s3.FormatURL(item.ObjectKey, f.cfg.S3.Bucket)
	item.SetProgressComplete(progressStageFetching, "Recording downloaded")
	if err := f.store.UpdateProgress(ctx, item); err != nil {
		return services.Wrap(services.ErrTransient, "fetch", "persist progress", "failed to persist fetch progress", err)
	}

	logger.Info("recording fetched", logging.String("source_file", local))
	return nil
}

// HealthCheck reports readiness for the fetch stage.
func (f *Fetcher) HealthCheck(ctx context.Context) stage.Health {
	const name = "fetch"
	if f == nil || f.cfg == nil || f.store == nil {
		return stage.Unhealthy(name, "stage not configured")
	}
	if f.client == nil {
		return stage.Unhealthy(name, "s3 client unavailable")
	}
	return stage.Healthy(name)
}
