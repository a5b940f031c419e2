package service

import (
	"context"

	"github.com/pulseboard/pulseboard-backend/internal/model"
	"github.com/pulseboard/pulseboard-backend/internal/repository"
)

// lineChartDays is the window for the created-per-day series.
const lineChartDays = 30

// DashboardData is the chart payload for the dashboard page. Widgets the
// caller cannot view are left nil and omitted from the response.
type DashboardData struct {
	BarChart1 []repository.ChartPoint `json:"barChart1,omitempty"`
	BarChart2 []repository.ChartPoint `json:"barChart2,omitempty"`
	LineChart []repository.ChartPoint `json:"lineChart,omitempty"`
	PieChart  []repository.ChartPoint `json:"pieChart,omitempty"`
}

// DashboardService assembles chart data for the dashboard page.
type DashboardService struct {
	dashboardRepo *repository.DashboardRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(dashboardRepo *repository.DashboardRepository) *DashboardService {
	return &DashboardService{dashboardRepo: dashboardRepo}
}

// Build returns the dashboard payload for one caller, querying only the
// widgets the given permission record grants view on.
func (s *DashboardService) Build(ctx context.Context, rec *model.PermissionRecord) (*DashboardData, error) {
	data := &DashboardData{}

	if model.CanView(rec, model.ResourceBarChart1) {
		points, err := s.dashboardRepo.CountByStatus(ctx)
		if err != nil {
			return nil, err
		}
		data.BarChart1 = points
	}

	if model.CanView(rec, model.ResourceBarChart2) {
		points, err := s.dashboardRepo.CountByAssignee(ctx)
		if err != nil {
			return nil, err
		}
		data.BarChart2 = points
	}

	if model.CanView(rec, model.ResourceLineChart) {
		points, err := s.dashboardRepo.CreatedPerDay(ctx, lineChartDays)
		if err != nil {
			return nil, err
		}
		data.LineChart = points
	}

	if model.CanView(rec, model.ResourcePieChart) {
		points, err := s.dashboardRepo.CountByStatus(ctx)
		if err != nil {
			return nil, err
		}
		data.PieChart = points
	}

	return data, nil
}
