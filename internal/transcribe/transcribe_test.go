package transcribe

import (
	"context"
	"errors"
	"testing"

	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/logging"
	"github.com/Leewodls/ko-analysis/internal/services"
	"github.com/Leewodls/ko-analysis/internal/services/whisper"
	"github.com/Leewodls/ko-analysis/internal/testsupport"
)

type fakeSpeech2Text struct {
	source    string
	outputDir string
	result    whisper.Result
	err       error
}

func (f *fakeSpeech2Text) Transcribe(ctx context.Context, source, outputDir string) (whisper.Result, error) {
	f.source = source
	f.outputDir = outputDir
	return f.result, f.err
}

func TestTranscriberStoresTranscript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewAnalysis(t, store, "interview_audio/user5/4/answer.webm", "user5", 4)
	item.WAVFile = "/tmp/answer.wav"

	service := &fakeSpeech2Text{result: whisper.Result{
		Text:    "안녕하세요, 저는 지원자입니다.",
		RawJSON: `{"text":"안녕하세요, 저는 지원자입니다."}`,
	}}
	transcriber := NewTranscriber(cfg, store, service, logging.NewNop())

	if err := transcriber.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := transcriber.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if service.source != item.WAVFile {
		t.Errorf("transcribed source = %q, want %q", service.source, item.WAVFile)
	}
	if service.outputDir != item.WorkRoot(cfg.Paths.WorkDir) {
		t.Errorf("output dir = %q, want %q", service.outputDir, item.WorkRoot(cfg.Paths.WorkDir))
	}
	if item.Transcript != service.result.Text {
		t.Errorf("transcript = %q, want %q", item.Transcript, service.result.Text)
	}
	if item.TranscriptJSON != service.result.RawJSON {
		t.Errorf("transcript json = %q, want %q", item.TranscriptJSON, service.result.RawJSON)
	}
	if item.ProgressPercent != 100 {
		t.Errorf("progress percent = %v, want 100", item.ProgressPercent)
	}
}

func TestTranscriberAcceptsEmptyTranscript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewAnalysis(t, store, "interview_audio/user5/4/answer.webm", "user5", 4)
	item.WAVFile = "/tmp/answer.wav"

	transcriber := NewTranscriber(cfg, store, &fakeSpeech2Text{}, logging.NewNop())
	if err := transcriber.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute with empty transcript: %v", err)
	}
	if item.Transcript != "" {
		t.Errorf("transcript = %q, want empty", item.Transcript)
	}
	if item.ProgressPercent != 100 {
		t.Errorf("progress percent = %v, want 100", item.ProgressPercent)
	}
}

func TestTranscriberPropagatesToolErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewAnalysis(t, store, "interview_audio/user5/4/answer.webm", "user5", 4)
	item.WAVFile = "/tmp/answer.wav"

	wantErr := services.Wrap(services.ErrExternalTool, "whisper", "transcribe", "whisper failed", nil)
	transcriber := NewTranscriber(cfg, store, &fakeSpeech2Text{err: wantErr}, logging.NewNop())

	err := transcriber.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestTranscriberRequiresWAVFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewAnalysis(t, store, "interview_audio/user5/4/answer.webm", "user5", 4)

	transcriber := NewTranscriber(cfg, store, &fakeSpeech2Text{}, logging.NewNop())
	err := transcriber.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTranscriberHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	tests := []struct {
		name        string
		transcriber *Transcriber
		wantReady   bool
	}{
		{name: "nil transcriber", transcriber: nil, wantReady: false},
		{name: "nil service", transcriber: &Transcriber{cfg: &config.Config{}, store: store}, wantReady: false},
		{name: "configured", transcriber: NewTranscriber(cfg, store, &fakeSpeech2Text{}, logging.NewNop()), wantReady: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			health := tt.transcriber.HealthCheck(context.Background())
			if health.Ready != tt.wantReady {
				t.Errorf("HealthCheck().Ready = %v, want %v (detail: %s)", health.Ready, tt.wantReady, health.Detail)
			}
		})
	}
}
