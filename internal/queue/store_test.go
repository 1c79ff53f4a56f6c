package queue_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Leewodls/ko-analysis/internal/queue"
	"github.com/Leewodls/ko-analysis/internal/testsupport"
)

func TestOpenAppliesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item, err := store.NewAnalysis(ctx, "interview_audio/42/3/answer.webm", "42", 3, "female")
	if err != nil {
		t.Fatalf("NewAnalysis failed: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected item ID to be assigned")
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending status, got %s", item.Status)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.UserID != "42" || fetched.QuestionNum != 3 {
		t.Fatalf("unexpected fetched item: %#v", fetched)
	}

	found, err := store.FindByObjectKey(ctx, "interview_audio/42/3/answer.webm")
	if err != nil {
		t.Fatalf("FindByObjectKey failed: %v", err)
	}
	if found == nil || found.ID != item.ID {
		t.Fatalf("expected to find inserted item, got %#v", found)
	}
}

func TestNewAnalysisRequiresObjectKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.NewAnalysis(context.Background(), "  ", "42", 1, "male"); err == nil {
		t.Fatal("expected error when object key missing")
	}
}

func TestNewLocalFileStartsFetched(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	item, err := store.NewLocalFile(context.Background(), "/tmp/answer.webm", "7", 2, "male")
	if err != nil {
		t.Fatalf("NewLocalFile failed: %v", err)
	}
	if item.Status != queue.StatusFetched {
		t.Fatalf("expected fetched status, got %s", item.Status)
	}
	if item.SourceFile != "/tmp/answer.webm" {
		t.Fatalf("expected source file recorded, got %q", item.SourceFile)
	}
}

func TestUpdateRoundTripsScores(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.NewAnalysis(t, store, "interview_audio/9/1/a.webm", "9", 1)

	item.Status = queue.StatusAnalyzed
	item.WAVFile = "/tmp/a.wav"
	item.Transcript = "안녕하세요"
	item.VoiceScoreJSON = `{"total_score":30}`
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusAnalyzed {
		t.Fatalf("expected analyzed status, got %s", fetched.Status)
	}
	if fetched.Transcript != "안녕하세요" {
		t.Fatalf("unexpected transcript: %q", fetched.Transcript)
	}
	if fetched.VoiceScoreJSON != `{"total_score":30}` {
		t.Fatalf("unexpected voice score json: %q", fetched.VoiceScoreJSON)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	cases := []struct {
		name          string
		initialStatus queue.Status
		expected      queue.Status
	}{
		{"fetching", queue.StatusFetching, queue.StatusPending},
		{"converting", queue.StatusConverting, queue.StatusFetched},
		{"analyzing", queue.StatusAnalyzing, queue.StatusConverted},
		{"transcribing", queue.StatusTranscribing, queue.StatusAnalyzed},
		{"evaluating", queue.StatusEvaluating, queue.StatusTranscribed},
		{"persisting", queue.StatusPersisting, queue.StatusEvaluated},
	}
	var ids []int64
	for i, tc := range cases {
		item := testsupport.NewAnalysis(t, store, fmt.Sprintf("interview_audio/1/%d/a.webm", i+1), "1", i+1)
		item.Status = tc.initialStatus
		item.ProgressStage = tc.name
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		ids = append(ids, item.ID)
	}

	count, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing failed: %v", err)
	}
	if int(count) != len(cases) {
		t.Fatalf("expected %d items reset, got %d", len(cases), count)
	}

	for idx, tc := range cases {
		updated, err := store.GetByID(ctx, ids[idx])
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if updated.Status != tc.expected {
			t.Fatalf("%s: expected status %s, got %s", tc.name, tc.expected, updated.Status)
		}
		if updated.LastHeartbeat != nil {
			t.Fatalf("%s: expected heartbeat cleared", tc.name)
		}
	}
}

func TestReclaimStaleProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	stale := testsupport.NewAnalysis(t, store, "interview_audio/2/1/a.webm", "2", 1)
	stale.Status = queue.StatusAnalyzing
	old := time.Now().UTC().Add(-time.Hour)
	stale.LastHeartbeat = &old
	if err := store.Update(ctx, stale); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fresh := testsupport.NewAnalysis(t, store, "interview_audio/2/2/a.webm", "2", 2)
	fresh.Status = queue.StatusAnalyzing
	now := time.Now().UTC()
	fresh.LastHeartbeat = &now
	if err := store.Update(ctx, fresh); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	count, err := store.ReclaimStaleProcessing(ctx, time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("ReclaimStaleProcessing failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 reclaimed item, got %d", count)
	}

	reclaimed, err := store.GetByID(ctx, stale.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if reclaimed.Status != queue.StatusConverted {
		t.Fatalf("expected converted status after reclaim, got %s", reclaimed.Status)
	}

	untouched, err := store.GetByID(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if untouched.Status != queue.StatusAnalyzing {
		t.Fatalf("expected fresh item untouched, got %s", untouched.Status)
	}
}

func TestRetryFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.NewAnalysis(t, store, "interview_audio/3/1/a.webm", "3", 1)
	item.SetFailed("transcription crashed")
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	count, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 retried item, got %d", count)
	}

	updated, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.Status != queue.StatusPending {
		t.Fatalf("expected pending after retry, got %s", updated.Status)
	}
	if updated.ErrorMessage != "" {
		t.Fatalf("expected error cleared, got %q", updated.ErrorMessage)
	}
}

func TestNextForStatusesOrdering(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := testsupport.NewAnalysis(t, store, "interview_audio/4/1/a.webm", "4", 1)
	testsupport.NewAnalysis(t, store, "interview_audio/4/2/a.webm", "4", 2)

	next, err := store.NextForStatuses(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses failed: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest pending item, got %#v", next)
	}

	none, err := store.NextForStatuses(ctx, queue.StatusCompleted)
	if err != nil {
		t.Fatalf("NextForStatuses failed: %v", err)
	}
	if none != nil {
		t.Fatalf("expected no completed items, got %#v", none)
	}
}

func TestHealthCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.NewAnalysis(t, store, "interview_audio/5/1/a.webm", "5", 1)
	failed := testsupport.NewAnalysis(t, store, "interview_audio/5/2/a.webm", "5", 2)
	failed.SetFailed("boom")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	review := testsupport.NewAnalysis(t, store, "interview_audio/5/3/a.webm", "5", 3)
	review.Status = queue.StatusReview
	if err := store.Update(ctx, review); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 3 || health.Pending != 1 || health.Failed != 1 || health.Review != 1 {
		t.Fatalf("unexpected health summary: %#v", health)
	}

	dbHealth, err := store.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !dbHealth.DatabaseExists || !dbHealth.TableExists || !dbHealth.IntegrityCheck {
		t.Fatalf("unexpected database health: %#v", dbHealth)
	}
	if len(dbHealth.MissingColumns) != 0 {
		t.Fatalf("expected no missing columns, got %v", dbHealth.MissingColumns)
	}
	if dbHealth.TotalItems != 3 {
		t.Fatalf("expected 3 items, got %d", dbHealth.TotalItems)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := queue.ParseStatus(" Analyzing "); !ok || status != queue.StatusAnalyzing {
		t.Fatalf("expected analyzing, got %q ok=%v", status, ok)
	}
	if _, ok := queue.ParseStatus("unknown"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
}
