package services

import (
	"context"
	"log/slog"
	"time"

	"albumsvc/pkg/contracts"
	apiv1 "albumsvc/pkg/contracts/api/v1"
)

// Health statuses
const (
	StatusOK       = "ok"
	StatusAlive    = "alive"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusUp       = "up"
	StatusDown     = "down"
)

// readinessTimeout bounds each dependency probe
const readinessTimeout = 2 * time.Second

// Pinger is a dependency that can report whether it is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionCounter reports the number of open WebSocket sessions
type SessionCounter interface {
	ActiveSessions() int64
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	database  Pinger
	sessions  SessionCounter
	startTime time.Time
	logger    *slog.Logger
}

// NewHealthService creates a new health service. sessions may be nil.
func NewHealthService(version string, database Pinger, sessions SessionCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthService{
		version:   version,
		database:  database,
		sessions:  sessions,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) *apiv1.HealthResponse {
	return &apiv1.HealthResponse{
		Status:  StatusOK,
		Version: hs.version,
		Uptime:  hs.uptime(),
	}
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) *apiv1.HealthResponse {
	return &apiv1.HealthResponse{
		Status: StatusAlive,
		Uptime: hs.uptime(),
	}
}

// ReadinessCheck probes the database. The response is not_ready when any
// probe fails.
func (hs *HealthService) ReadinessCheck(ctx context.Context) *apiv1.HealthResponse {
	resp := &apiv1.HealthResponse{
		Status:  StatusReady,
		Version: hs.version,
		Checks:  make(map[string]apiv1.CheckResult),
	}

	resp.Checks["database"] = hs.checkDatabase(ctx)
	if hs.sessions != nil {
		resp.Checks["websocket"] = apiv1.CheckResult{Status: StatusUp}
	}

	for name, check := range resp.Checks {
		if check.Status != StatusUp {
			resp.Status = StatusNotReady
			hs.logger.WarnContext(ctx, "Readiness check failed",
				slog.String("check", name),
				slog.String("error", check.Error))
		}
	}

	return resp
}

func (hs *HealthService) checkDatabase(ctx context.Context) apiv1.CheckResult {
	if hs.database == nil {
		return apiv1.CheckResult{Status: StatusDown, Error: ErrNoDatabase.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	if err := hs.database.Ping(ctx); err != nil {
		return apiv1.CheckResult{Status: StatusDown, Error: err.Error()}
	}
	return apiv1.CheckResult{Status: StatusUp}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()

	result := map[string]interface{}{
		"version":     info.Version,
		"api_version": info.APIVersion,
		"go_version":  info.GoVersion,
		"os":          info.OS,
		"arch":        info.Architecture,
		"uptime":      time.Since(hs.startTime).Seconds(),
		"start_time":  hs.startTime.Format(time.RFC3339),
	}

	// Include build info if available
	if info.BuildTime != "unknown" {
		result["build_time"] = info.BuildTime
	}
	if info.GitCommit != "unknown" {
		result["git_commit"] = info.GitCommit
	}
	if hs.sessions != nil {
		result["websocket_sessions"] = hs.sessions.ActiveSessions()
	}

	return result
}

func (hs *HealthService) uptime() string {
	return time.Since(hs.startTime).Round(time.Second).String()
}
