package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"dtokit/src/core/ports"
	"dtokit/src/infra/logger"
	"dtokit/src/infra/repo"
)

type downRepo struct{}

func (downRepo) Health(context.Context) error { return errors.New("dial tcp: refused") }

func TestHealthService_Check(t *testing.T) {
	s := NewHealthService(logger.Discard(), map[string]ports.Repository{
		"storage": repo.NewMemoryRepository(),
	})
	status := s.Check(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, ComponentHealth{Status: "healthy"}, status.Components["storage"])

	s = NewHealthService(logger.Discard(), map[string]ports.Repository{
		"storage": repo.NewMemoryRepository(),
		"cache":   downRepo{},
	})
	status = s.Check(context.Background())
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "unhealthy", status.Components["cache"].Status)
	assert.Equal(t, "dial tcp: refused", status.Components["cache"].Message)
	assert.Equal(t, "healthy", status.Components["storage"].Status)
}
