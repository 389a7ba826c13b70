package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskboard/internal/domain"
)

// StatsRepository aggregates per-employee schedule statistics.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// EmployeeOverview returns per-employee task counts by status plus open
// escalation counts. When userID is non-nil the result is restricted to that
// single employee.
func (r *StatsRepository) EmployeeOverview(ctx context.Context, userID *string) ([]domain.EmployeeStats, error) {
	query := `
		SELECT
			u.id,
			u.full_name,
			COUNT(t.id) as total_tasks,
			COUNT(CASE WHEN t.status = 'pending' THEN 1 END) as pending,
			COUNT(CASE WHEN t.status = 'in_progress' THEN 1 END) as in_progress,
			COUNT(CASE WHEN t.status = 'completed' THEN 1 END) as completed,
			COUNT(CASE WHEN t.status = 'blocked' THEN 1 END) as blocked,
			(SELECT COUNT(*) FROM escalations e
				WHERE e.escalated_by = u.id AND e.status = 'open') as open_escalations
		FROM users u
		LEFT JOIN tasks t ON t.assigned_to = u.id
		WHERE u.role = 'employee'
	`

	var args []interface{}
	if userID != nil {
		query += " AND u.id = $1"
		args = append(args, *userID)
	}

	query += " GROUP BY u.id, u.full_name ORDER BY u.full_name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query employee overview: %w", err)
	}
	defer rows.Close()

	var results []domain.EmployeeStats
	for rows.Next() {
		var row domain.EmployeeStats
		err := rows.Scan(
			&row.UserID,
			&row.FullName,
			&row.TotalTasks,
			&row.Pending,
			&row.InProgress,
			&row.Completed,
			&row.Blocked,
			&row.OpenEscalations,
		)
		if err != nil {
			return nil, fmt.Errorf("scan employee overview: %w", err)
		}
		if row.TotalTasks > 0 {
			row.CompletionRate = float64(row.Completed) / float64(row.TotalTasks) * 100
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return results, nil
}
