package app

import (
	"context"
	"fmt"
	"time"

	"genstub/internal/shared/observability"
)

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

// Check reports degraded when the last run had failing units.
func (s *HealthService) Check(ctx context.Context) observability.HealthStatus {
	status := observability.HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if s.app.Config().Cache.Enabled {
		if s.app.stubCache() != nil {
			status.Components["cache"] = "ok"
		} else {
			status.Status = "degraded"
			status.Components["cache"] = "missing but enabled in config"
		}
	} else {
		status.Components["cache"] = "disabled"
	}

	last, ok := s.app.LastRun()
	switch {
	case !ok:
		status.Components["last_run"] = "none"
	case last.Failed > 0:
		status.Status = "degraded"
		status.Components["last_run"] = fmt.Sprintf("%d of %d units failed", last.Failed, last.Units())
	default:
		status.Components["last_run"] = fmt.Sprintf("ok (%d units)", last.Units())
	}
	return status
}
