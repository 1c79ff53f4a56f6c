package workflow

import (
	"context"

	"github.com/Leewodls/ko-analysis/internal/stage"
)

// StageHealth reports the readiness of every configured pipeline stage in
// processing order.
func (m *Manager) StageHealth(ctx context.Context) []stage.Health {
	m.mu.RLock()
	pipeline := m.pipeline
	m.mu.RUnlock()

	results := make([]stage.Health, 0, len(pipeline))
	for _, stg := range pipeline {
		if stg.handler == nil {
			results = append(results, stage.Unhealthy(stg.name, "handler not configured"))
			continue
		}
		results = append(results, stg.handler.HealthCheck(ctx))
	}
	return results
}
