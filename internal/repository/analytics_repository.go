package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/safety-suggestions/internal/domain"
)

// TrendWindowDays is the trailing window covered by the submission trend.
const TrendWindowDays = 30

// AnalyticsRepository runs the read-only admin aggregations.
type AnalyticsRepository interface {
	CountByStatus(ctx context.Context) ([]domain.StatusCount, error)
	CountByDepartment(ctx context.Context) ([]domain.DepartmentCount, error)
	DailySubmissions(ctx context.Context, days int) ([]domain.DailyCount, error)
}

type analyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository builds repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) AnalyticsRepository {
	return &analyticsRepository{pool: pool}
}

func (r *analyticsRepository) CountByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	const query = `
        SELECT status, COUNT(*)
        FROM suggestions
        GROUP BY status
        ORDER BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.StatusCount{}
	for rows.Next() {
		var row domain.StatusCount
		if err := rows.Scan(&row.Status, &row.Count); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) CountByDepartment(ctx context.Context) ([]domain.DepartmentCount, error) {
	const query = `
        SELECT COALESCE(department, $1) AS department, COUNT(*)
        FROM suggestions
        GROUP BY 1
        ORDER BY 1`
	rows, err := r.pool.Query(ctx, query, domain.UnassignedDepartment)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.DepartmentCount{}
	for rows.Next() {
		var row domain.DepartmentCount
		if err := rows.Scan(&row.Department, &row.Count); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *analyticsRepository) DailySubmissions(ctx context.Context, days int) ([]domain.DailyCount, error) {
	const query = `
        SELECT DATE(created_at) AS day, COUNT(*)
        FROM suggestions
        WHERE created_at >= NOW() - make_interval(days => $1)
        GROUP BY day
        ORDER BY day ASC`
	rows, err := r.pool.Query(ctx, query, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.DailyCount{}
	for rows.Next() {
		var (
			day   time.Time
			count int64
		)
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		result = append(result, domain.DailyCount{Date: day.Format(time.DateOnly), Count: count})
	}
	return result, rows.Err()
}
