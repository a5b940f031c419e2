package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardRepository handles the aggregations behind the dashboard chart
// widgets. Each query maps 1:1 to one chart resource.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// ChartPoint is a single labelled value in a chart series.
type ChartPoint struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// CountByStatus feeds barChart1 and pieChart: workflow items per status.
func (r *DashboardRepository) CountByStatus(ctx context.Context) ([]ChartPoint, error) {
	return r.queryPoints(ctx,
		`SELECT status, COUNT(*) FROM workflow_items GROUP BY status ORDER BY status`)
}

// CountByAssignee feeds barChart2: workflow items per assignee.
func (r *DashboardRepository) CountByAssignee(ctx context.Context) ([]ChartPoint, error) {
	return r.queryPoints(ctx,
		`SELECT assignee, COUNT(*) FROM workflow_items GROUP BY assignee ORDER BY assignee`)
}

// CreatedPerDay feeds lineChart: items created per day over the last N days.
func (r *DashboardRepository) CreatedPerDay(ctx context.Context, days int) ([]ChartPoint, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT created_at::date AS day, COUNT(*)
		 FROM workflow_items
		 WHERE created_at >= NOW() - ($1 || ' days')::interval
		 GROUP BY day ORDER BY day`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []ChartPoint
	for rows.Next() {
		var day time.Time
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		points = append(points, ChartPoint{Label: day.Format("2006-01-02"), Value: count})
	}
	return points, rows.Err()
}

func (r *DashboardRepository) queryPoints(ctx context.Context, sql string) ([]ChartPoint, error) {
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []ChartPoint
	for rows.Next() {
		var p ChartPoint
		if err := rows.Scan(&p.Label, &p.Value); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
