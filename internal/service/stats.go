package service

import (
	"context"
	"fmt"

	"bilet/internal/models"
	"bilet/internal/repository"
)

// StatsService is the read-only reporting surface over events, tickets and
// orders.
type StatsService struct {
	orderRepo *repository.OrderRepository
}

func NewStatsService(orderRepo *repository.OrderRepository) *StatsService {
	return &StatsService{orderRepo: orderRepo}
}

func (s *StatsService) Get(ctx context.Context) (*models.StatsResponse, error) {
	stats, err := s.orderRepo.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get totals: %w", err)
	}

	if stats.TotalEvents == 0 {
		return stats, nil
	}

	stats.Events, err = s.orderRepo.EventSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get event summaries: %w", err)
	}

	orderCount, err := s.orderRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if orderCount > 0 {
		stats.PerDay, err = s.orderRepo.PerDay(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get per-day series: %w", err)
		}
	}

	return stats, nil
}
