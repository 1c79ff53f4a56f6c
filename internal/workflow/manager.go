package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/logging"
	"github.com/Leewodls/ko-analysis/internal/queue"
	"github.com/Leewodls/ko-analysis/internal/stage"
)

// StageSet bundles the concrete pipeline handlers the manager orchestrates.
type StageSet struct {
	Fetcher     stage.Handler
	Converter   stage.Handler
	Analyzer    stage.Handler
	Transcriber stage.Handler
	Evaluator   stage.Handler
	Persister   stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// loggerAware is implemented by handlers that accept a routed logger.
type loggerAware interface {
	SetLogger(*slog.Logger)
}

// Manager coordinates queue processing using the configured stage handlers.
type Manager struct {
	cfg           *config.Config
	store         *queue.Store
	logger        *slog.Logger
	pollInterval  time.Duration
	retryInterval time.Duration

	heartbeat *HeartbeatMonitor

	pipeline     []pipelineStage
	stageByStart map[queue.Status]pipelineStage
	statusOrder  []queue.Status

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	lastItem *queue.Item
}

// NewManager constructs a workflow manager. ConfigureStages must be called
// before Start.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:           cfg,
		store:         store,
		logger:        logging.NewComponentLogger(logger, "workflow"),
		pollInterval:  time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		retryInterval: time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
}

// ConfigureStages registers the pipeline handlers in processing order.
func (m *Manager) ConfigureStages(set StageSet) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pipeline = []pipelineStage{
		{name: "fetch", handler: set.Fetcher, startStatus: queue.StatusPending, processingStatus: queue.StatusFetching, doneStatus: queue.StatusFetched},
		{name: "convert", handler: set.Converter, startStatus: queue.StatusFetched, processingStatus: queue.StatusConverting, doneStatus: queue.StatusConverted},
		{name: "acoustic", handler: set.Analyzer, startStatus: queue.StatusConverted, processingStatus: queue.StatusAnalyzing, doneStatus: queue.StatusAnalyzed},
		{name: "transcribe", handler: set.Transcriber, startStatus: queue.StatusAnalyzed, processingStatus: queue.StatusTranscribing, doneStatus: queue.StatusTranscribed},
		{name: "evaluate", handler: set.Evaluator, startStatus: queue.StatusTranscribed, processingStatus: queue.StatusEvaluating, doneStatus: queue.StatusEvaluated},
		{name: "persist", handler: set.Persister, startStatus: queue.StatusEvaluated, processingStatus: queue.StatusPersisting, doneStatus: queue.StatusCompleted},
	}
	m.stageByStart = make(map[queue.Status]pipelineStage, len(m.pipeline))
	m.statusOrder = make([]queue.Status, 0, len(m.pipeline))
	for _, stg := range m.pipeline {
		m.stageByStart[stg.startStatus] = stg
		m.statusOrder = append(m.statusOrder, stg.startStatus)
	}
}

// Start begins background queue processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.statusOrder) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for in-flight work.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether background processing is active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := m.heartbeat.ReclaimStaleItems(ctx, m.logger); err != nil {
			m.logger.Warn("reclaim stale processing failed; stuck items may remain",
				logging.Error(err),
				logging.String(logging.FieldEventType, "heartbeat_reclaim_failed"),
				logging.String(logging.FieldErrorHint, "check queue database access"),
			)
		}

		item, err := m.store.NextForStatuses(ctx, m.statusOrder...)
		if err != nil {
			m.handleNextItemError(ctx, err)
			continue
		}
		if item == nil {
			m.waitForItemOrShutdown(ctx)
			continue
		}

		if err := m.processItem(ctx, item); err != nil && errors.Is(err, context.Canceled) {
			return
		}
	}
}

func (m *Manager) handleNextItemError(ctx context.Context, err error) {
	m.setLastError(err)
	m.logger.Error("failed to fetch next queue item",
		logging.Error(err),
		logging.String(logging.FieldEventType, "queue_fetch_failed"),
		logging.String(logging.FieldErrorHint, "check queue database access"),
	)
	select {
	case <-ctx.Done():
	case <-time.After(m.retryInterval):
	}
}

func (m *Manager) waitForItemOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(m.pollInterval):
	}
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

// LastError returns the most recent processing error, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) setLastItem(item *queue.Item) {
	m.mu.Lock()
	copied := *item
	m.lastItem = &copied
	m.mu.Unlock()
}

// LastItem returns a copy of the most recently processed item, if any.
func (m *Manager) LastItem() *queue.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastItem == nil {
		return nil
	}
	copied := *m.lastItem
	return &copied
}
