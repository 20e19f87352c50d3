package database

import (
	"context"
	"time"

	"github.com/ironforge/gym-admin-backend/internal/models"
)

// StatsRepository computes dashboard aggregates
type StatsRepository struct {
	store
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db DB, queryTimeout time.Duration) *StatsRepository {
	return &StatsRepository{store: newStore(db, queryTimeout)}
}

// Dashboard returns the dashboard counters. Member states are derived against today,
// revenue sums Paid payments dated on or after monthStart.
func (r *StatsRepository) Dashboard(ctx context.Context, today, monthStart models.Date) (*models.DashboardStats, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	query := `
		SELECT
			(SELECT COUNT(*) FROM members) AS total_members,
			(SELECT COUNT(*) FROM members
			  WHERE status NOT IN ('Inactive', 'Suspended')
			    AND (next_payment_date IS NULL OR next_payment_date >= $1)) AS active_members,
			(SELECT COUNT(*) FROM members
			  WHERE status NOT IN ('Inactive', 'Suspended')
			    AND next_payment_date < $1) AS delinquent_members,
			(SELECT COALESCE(SUM(amount), 0)::float8 FROM payments
			  WHERE status = 'Paid' AND payment_date >= $2) AS monthly_revenue,
			(SELECT COUNT(*) FROM attendance WHERE date = $1 AND type = 'CheckIn') AS today_attendance,
			(SELECT COUNT(*) FROM staff_users WHERE status = 'Active') AS total_staff
	`

	var stats models.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query, today, monthStart); err != nil {
		return nil, translateError(ctx, err, "load dashboard stats")
	}
	return &stats, nil
}
