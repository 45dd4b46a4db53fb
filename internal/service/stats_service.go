package service

import (
	"context"

	"github.com/google/uuid"

	"expenso/internal/domain"
	"expenso/internal/port"
)

// StatsService provides aggregate statistics.
type StatsService interface {
	GetStats(ctx context.Context, ownerID uuid.UUID) (*domain.Stats, error)
}

type statsService struct {
	statsRepo port.StatsRepository
}

// NewStatsService creates a new StatsService implementation.
func NewStatsService(statsRepo port.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

func (s *statsService) GetStats(ctx context.Context, ownerID uuid.UUID) (*domain.Stats, error) {
	return s.statsRepo.GetOwnerStats(ctx, ownerID)
}
