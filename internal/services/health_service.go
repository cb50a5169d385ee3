package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// Health states.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Uptime    string                   `json:"uptime"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	ledgers   LedgerReader
	fresh     FreshnessReader
	startTime time.Time
	logger    *slog.Logger
}

// NewHealthService creates a HealthService.
func NewHealthService(version string, ledgers LedgerReader, fresh FreshnessReader, logger *slog.Logger) *HealthService {
	return &HealthService{
		version:   version,
		ledgers:   ledgers,
		fresh:     fresh,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// LivenessCheck reports that the process is serving.
func (s *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC(),
		Version:   s.version,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
	}
}

// HealthCheck checks the ledger directory and the freshness store.
func (s *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	h := s.LivenessCheck(ctx)
	h.Runtime = map[string]interface{}{
		"go_version": runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
	}
	h.Services = make(map[string]ServiceHealth)

	entities, err := s.ledgers.Entities()
	if err != nil {
		h.Services["ledger"] = ServiceHealth{Status: StatusUnhealthy, Message: err.Error()}
	} else {
		h.Services["ledger"] = ServiceHealth{Status: StatusHealthy}
	}

	if len(entities) > 0 {
		if _, err := s.fresh.Records(ctx, entities[0]); err != nil {
			h.Services["freshness"] = ServiceHealth{Status: StatusUnhealthy, Message: err.Error()}
		} else {
			h.Services["freshness"] = ServiceHealth{Status: StatusHealthy}
		}
	}

	for name, svc := range h.Services {
		if svc.Status != StatusHealthy {
			h.Status = StatusDegraded
			s.logger.WarnContext(ctx, "health check degraded",
				slog.String("service", name),
				slog.String("message", svc.Message))
		}
	}
	return h
}
