package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"pipeledger/internal/config"
	"pipeledger/internal/infrastructure"
)

func TestHealthService(t *testing.T) {
	store, fresh := newFixture(t)
	svc := NewHealthService(config.AppVersion, store, fresh, infrastructure.DiscardLogger())

	live := svc.LivenessCheck(context.Background())
	assert.Equal(t, StatusHealthy, live.Status)
	assert.Equal(t, config.AppVersion, live.Version)

	h := svc.HealthCheck(context.Background())
	assert.Equal(t, StatusHealthy, h.Status)
	assert.Equal(t, StatusHealthy, h.Services["ledger"].Status)
	assert.Equal(t, StatusHealthy, h.Services["freshness"].Status)
}
