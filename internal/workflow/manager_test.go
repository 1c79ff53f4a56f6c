package workflow

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Leewodls/ko-analysis/internal/logging"
	"github.com/Leewodls/ko-analysis/internal/queue"
	"github.com/Leewodls/ko-analysis/internal/services"
	"github.com/Leewodls/ko-analysis/internal/stage"
	"github.com/Leewodls/ko-analysis/internal/testsupport"
)

type fakeHandler struct {
	name    string
	execute func(ctx context.Context, item *queue.Item) error
}

func (f *fakeHandler) Prepare(ctx context.Context, item *queue.Item) error { return nil }

func (f *fakeHandler) Execute(ctx context.Context, item *queue.Item) error {
	if f.execute != nil {
		return f.execute(ctx, item)
	}
	return nil
}

func (f *fakeHandler) HealthCheck(ctx context.Context) stage.Health { return stage.Healthy(f.name) }

func passthroughStages() StageSet {
	return StageSet{
		Fetcher:     &fakeHandler{name: "fetch"},
		Converter:   &fakeHandler{name: "convert"},
		Analyzer:    &fakeHandler{name: "acoustic"},
		Transcriber: &fakeHandler{name: "transcribe"},
		Evaluator:   &fakeHandler{name: "evaluate"},
		Persister:   &fakeHandler{name: "persist"},
	}
}

func processUntilSettled(t *testing.T, m *Manager, store *queue.Store, id int64) *queue.Item {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < len(m.pipeline); i++ {
		item, err := store.NextForStatuses(ctx, m.statusOrder...)
		if err != nil {
			t.Fatalf("NextForStatuses: %v", err)
		}
		if item == nil {
			break
		}
		if err := m.processItem(ctx, item); err != nil {
			break
		}
	}
	settled, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return settled
}

func TestManagerRunsItemThroughAllStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewAnalysis(t, store, "interview_audio/user1/2/answer.webm", "user1", 2)

	workDir := item.WorkRoot(cfg.Paths.WorkDir)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatalf("mkdir work dir: %v", err)
	}

	var visited []string
	set := passthroughStages()
	for _, handler := range []*fakeHandler{
		set.Fetcher.(*fakeHandler), set.Converter.(*fakeHandler), set.Analyzer.(*fakeHandler),
		set.Transcriber.(*fakeHandler), set.Evaluator.(*fakeHandler), set.Persister.(*fakeHandler),
	} {
		h := handler
		h.execute = func(ctx context.Context, item *queue.Item) error {
			visited = append(visited, h.name)
			return nil
		}
	}

	manager := NewManager(cfg, store, logging.NewNop())
	manager.ConfigureStages(set)

	settled := processUntilSettled(t, manager, store, item.ID)
	if settled.Status != queue.StatusCompleted {
		t.Fatalf("status = %s, want completed (error: %s)", settled.Status, settled.ErrorMessage)
	}
	want := []string{"fetch", "convert", "acoustic", "transcribe", "evaluate", "persist"}
	if len(visited) != len(want) {
		t.Fatalf("visited stages = %v, want %v", visited, want)
	}
	for i, name := range want {
		if visited[i] != name {
			t.Errorf("stage %d = %s, want %s", i, visited[i], name)
		}
	}
	if _, err := os.Stat(workDir); !os.IsNotExist(err) {
		t.Errorf("work dir still present after completion: %v", err)
	}
}

func TestManagerRoutesValidationFailuresToReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewAnalysis(t, store, "interview_audio/user1/2/answer.webm", "user1", 2)

	workDir := item.WorkRoot(cfg.Paths.WorkDir)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatalf("mkdir work dir: %v", err)
	}

	set := passthroughStages()
	set.Analyzer.(*fakeHandler).execute = func(ctx context.Context, item *queue.Item) error {
		return services.Wrap(services.ErrValidation, "acoustic", "execute", "decode wav", nil)
	}

	manager := NewManager(cfg, store, logging.NewNop())
	manager.ConfigureStages(set)

	settled := processUntilSettled(t, manager, store, item.ID)
	if settled.Status != queue.StatusReview {
		t.Fatalf("status = %s, want review", settled.Status)
	}
	if !settled.NeedsReview {
		t.Error("expected needs review flag")
	}
	if settled.ReviewReason == "" {
		t.Error("expected review reason to be recorded")
	}
	// Review items keep their scratch files for inspection.
	if _, err := os.Stat(workDir); err != nil {
		t.Errorf("work dir removed for review item: %v", err)
	}
}

func TestManagerMarksTransientFailuresFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewAnalysis(t, store, "interview_audio/user1/2/answer.webm", "user1", 2)

	workDir := item.WorkRoot(cfg.Paths.WorkDir)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatalf("mkdir work dir: %v", err)
	}

	set := passthroughStages()
	set.Fetcher.(*fakeHandler).execute = func(ctx context.Context, item *queue.Item) error {
		return services.Wrap(services.ErrTransient, "s3", "download", "connection reset", nil)
	}

	manager := NewManager(cfg, store, logging.NewNop())
	manager.ConfigureStages(set)

	settled := processUntilSettled(t, manager, store, item.ID)
	if settled.Status != queue.StatusFailed {
		t.Fatalf("status = %s, want failed", settled.Status)
	}
	if settled.ErrorMessage == "" {
		t.Error("expected error message to be recorded")
	}
	if _, err := os.Stat(workDir); !os.IsNotExist(err) {
		t.Errorf("work dir still present after failure: %v", err)
	}
}

func TestManagerStartRequiresStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	manager := NewManager(cfg, store, logging.NewNop())
	if err := manager.Start(context.Background()); err == nil {
		manager.Stop()
		t.Fatal("expected error starting manager without stages")
	}
}

func TestManagerStartAndStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	store := testsupport.MustOpenStore(t, cfg)

	manager := NewManager(cfg, store, logging.NewNop())
	manager.ConfigureStages(passthroughStages())

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !manager.Running() {
		t.Error("expected manager to report running")
	}
	if err := manager.Start(context.Background()); err == nil {
		t.Error("expected second Start to fail")
	}

	done := make(chan struct{})
	go func() {
		manager.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
	if manager.Running() {
		t.Error("expected manager to report stopped")
	}
}

func TestStageHealthReportsMissingHandlers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	set := passthroughStages()
	set.Persister = nil
	manager := NewManager(cfg, store, logging.NewNop())
	manager.ConfigureStages(set)

	health := manager.StageHealth(context.Background())
	if len(health) != 6 {
		t.Fatalf("health entries = %d, want 6", len(health))
	}
	for _, entry := range health[:5] {
		if !entry.Ready {
			t.Errorf("stage %s unexpectedly unhealthy: %s", entry.Name, entry.Detail)
		}
	}
	if health[5].Ready {
		t.Error("expected missing persist handler to be unhealthy")
	}
}

func TestManagerFailureWithNilError(t *testing.T) {
	if got := failureMessage("fetch", nil); got != "fetch failed without error detail" {
		t.Errorf("failureMessage = %q", got)
	}
	if got := failureMessage("fetch", errors.New("boom")); got != "boom" {
		t.Errorf("failureMessage = %q", got)
	}
}
