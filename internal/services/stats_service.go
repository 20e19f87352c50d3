package services

import (
	"context"

	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/models"
)

// StatsService computes the dashboard summary
type StatsService struct {
	gateway
	stats StatsStore
}

// NewStatsService creates a new stats service
func NewStatsService(deps Deps, stats StatsStore) *StatsService {
	return &StatsService{
		gateway: newGateway(deps),
		stats:   stats,
	}
}

// Dashboard returns member, revenue, attendance and staff counts as of today
func (s *StatsService) Dashboard(ctx context.Context, identity access.Identity) (*models.DashboardStats, error) {
	if _, err := s.authorize(identity, access.ResourceStats, access.ActionRead); err != nil {
		return nil, err
	}

	stats, err := s.stats.Dashboard(ctx, s.clock.Today(), s.clock.MonthStart())
	if err != nil {
		return nil, s.fail("compute dashboard stats", "stats", "", err)
	}
	return stats, nil
}
