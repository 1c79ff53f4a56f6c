package fetch

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/logging"
	"github.com/Leewodls/ko-analysis/internal/queue"
	"github.com/Leewodls/ko-analysis/internal/services"
	"github.com/Leewodls/ko-analysis/internal/testsupport"
)

type fakeDownloader struct {
	objectKey string
	destDir   string
	err       error
}

func (f *fakeDownloader) Download(ctx context.Context, objectKey, destDir string) (string, error) {
	f.objectKey = objectKey
	f.destDir = destDir
	if f.err != nil {
		return "", f.err
	}
	local := filepath.Join(destDir, path.Base(objectKey))
	if err := os.WriteFile(local, []byte("audio"), 0o644); err != nil {
		return "", err
	}
	return local, nil
}

func TestFetcherDownloadsRecording(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewAnalysis(t, store, "interview_audio/user42/3/answer.webm", "user42", 3)

	downloader := &fakeDownloader{}
	fetcher := NewFetcher(cfg, store, downloader, logging.NewNop())

	if err := fetcher.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := fetcher.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if downloader.objectKey != item.ObjectKey {
		t.Errorf("downloaded key = %q, want %q", downloader.objectKey, item.ObjectKey)
	}
	if item.SourceFile == "" {
		t.Fatal("expected source file to be set")
	}
	if _, err := os.Stat(item.SourceFile); err != nil {
		t.Errorf("source file missing: %v", err)
	}
	wantURL := "s3://test-bucket/interview_audio/user42/3/answer.webm"
	if item.AudioURL != wantURL {
		t.Errorf("audio url = %q, want %q", item.AudioURL, wantURL)
	}
	if item.ProgressPercent != 100 {
		t.Errorf("progress percent = %v, want 100", item.ProgressPercent)
	}
}

func TestFetcherDerivesIdentityFromObjectKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewAnalysis(t, store, "interview_audio/77/5/answer.webm", "", 0)

	fetcher := NewFetcher(cfg, store, &fakeDownloader{}, logging.NewNop())
	if err := fetcher.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if item.UserID != "77" {
		t.Errorf("user id = %q, want 77", item.UserID)
	}
	if item.QuestionNum != 5 {
		t.Errorf("question num = %d, want 5", item.QuestionNum)
	}
}

func TestFetcherPropagatesDownloadErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewAnalysis(t, store, "interview_audio/user1/1/answer.webm", "user1", 1)

	wantErr := services.Wrap(services.ErrNotFound, "s3", "download", "object not found", nil)
	fetcher := NewFetcher(cfg, store, &fakeDownloader{err: wantErr}, logging.NewNop())

	err := fetcher.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if item.SourceFile != "" {
		t.Errorf("source file set despite failure: %q", item.SourceFile)
	}
}

func TestFetcherValidatesItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	fetcher := NewFetcher(cfg, store, &fakeDownloader{}, logging.NewNop())

	err := fetcher.Execute(context.Background(), &queue.Item{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing object key, got %v", err)
	}
}

func TestFetcherHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	tests := []struct {
		name      string
		fetcher   *Fetcher
		wantReady bool
	}{
		{name: "nil fetcher", fetcher: nil, wantReady: false},
		{name: "nil config", fetcher: &Fetcher{store: store}, wantReady: false},
		{name: "nil client", fetcher: &Fetcher{cfg: &config.Config{}, store: store}, wantReady: false},
		{name: "configured", fetcher: NewFetcher(cfg, store, &fakeDownloader{}, logging.NewNop()), wantReady: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			health := tt.fetcher.HealthCheck(context.Background())
			if health.Ready != tt.wantReady {
				t.Errorf("HealthCheck().Ready = %v, want %v (detail: %s)", health.Ready, tt.wantReady, health.Detail)
			}
		})
	}
}
