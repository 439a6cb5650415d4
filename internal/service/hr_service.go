package service

import (
	"context"
	"strings"

	"github.com/locvowork/bi_dashboard/internal/analytics"
	"github.com/locvowork/bi_dashboard/internal/domain"
	"github.com/locvowork/bi_dashboard/internal/logger"
	"golang.org/x/sync/errgroup"
)

// DashboardRiskRows is how many attrition risk rows the HR dashboard shows.
const DashboardRiskRows = 10

// HRService loads the people datasets and derives the HR views.
type HRService struct {
	repo       domain.HRRepository
	engagement domain.EngagementStore
	index      domain.EmployeeIndex
}

// NewHRService creates a new HRService. engagement and index are optional.
func NewHRService(repo domain.HRRepository, engagement domain.EngagementStore, index domain.EmployeeIndex) *HRService {
	return &HRService{repo: repo, engagement: engagement, index: index}
}

// HRDashboard is the people overview payload.
type HRDashboard struct {
	Metrics      analytics.HRMetrics               `json:"metrics"`
	Diversity    []analytics.DepartmentStats       `json:"diversity"`
	Hiring       []analytics.HiringMonth           `json:"hiring"`
	Compensation analytics.CompensationSummary     `json:"compensation"`
	Performance  analytics.PerformanceSummary      `json:"performance"`
	Recruiting   analytics.RecruitingSummary       `json:"recruiting"`
	Absence      analytics.AbsenceSummary          `json:"absence"`
	TopRisk      []analytics.AttritionRiskEmployee `json:"top_risk"`
}

// load fetches the HR datasets concurrently.
func (hs *HRService) load(ctx context.Context) (domain.HRDataset, error) {
	var ds domain.HRDataset
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		ds.Employees, err = hs.repo.ListEmployees(gctx)
		return err
	})
	g.Go(func() (err error) {
		ds.Requisitions, err = hs.repo.ListRequisitions(gctx)
		return err
	})
	g.Go(func() (err error) {
		ds.Candidates, err = hs.repo.ListCandidates(gctx)
		return err
	})
	g.Go(func() (err error) {
		ds.Leave, err = hs.repo.ListLeave(gctx, 0)
		return err
	})

	if err := g.Wait(); err != nil {
		logger.ErrorErr(ctx, err, "Failed to load HR data")
		return domain.HRDataset{}, err
	}
	return ds, nil
}

// filtered loads everything and applies the session filters. The unfiltered
// employees are returned as the global benchmark population.
func (hs *HRService) filtered(ctx context.Context, s analytics.Session) (domain.HRDataset, []domain.Employee, error) {
	raw, err := hs.load(ctx)
	if err != nil {
		return domain.HRDataset{}, nil, err
	}
	return s.FilterHR(raw), raw.Employees, nil
}

// Dashboard derives every HR view for the session.
func (hs *HRService) Dashboard(ctx context.Context, s analytics.Session) (*HRDashboard, error) {
	ds, population, err := hs.filtered(ctx, s)
	if err != nil {
		return nil, err
	}
	risk := analytics.CalculateAttritionRisk(ds.Employees, s.RiskOptions(population))

	return &HRDashboard{
		Metrics:      analytics.CalculateHRMetrics(ds.Employees, s.Now),
		Diversity:    analytics.DepartmentDiversity(ds.Employees, s.Now),
		Hiring:       analytics.MonthlyHiring(ds.Employees),
		Compensation: analytics.SummarizeCompensation(ds.Employees),
		Performance:  analytics.SummarizePerformance(ds.Employees),
		Recruiting:   analytics.SummarizeRecruiting(ds.Requisitions, ds.Candidates, s.Now),
		Absence:      analytics.SummarizeAbsence(ds.Leave, ds.Employees, s.Now.Year()),
		TopRisk:      risk[:min(len(risk), DashboardRiskRows)],
	}, nil
}

// AttritionRisk scores the filtered active employees and orders the rows by
// key. The default order is highest score first.
func (hs *HRService) AttritionRisk(ctx context.Context, s analytics.Session, key analytics.RiskSortKey, order analytics.SortOrder) ([]analytics.AttritionRiskEmployee, error) {
	ds, population, err := hs.filtered(ctx, s)
	if err != nil {
		return nil, err
	}
	rows := analytics.CalculateAttritionRisk(ds.Employees, s.RiskOptions(population))
	if key == "" {
		return rows, nil
	}
	return analytics.SortRisk(rows, key, order), nil
}

// Metrics returns the headline HR KPIs.
func (hs *HRService) Metrics(ctx context.Context, s analytics.Session) (analytics.HRMetrics, error) {
	ds, _, err := hs.filtered(ctx, s)
	if err != nil {
		return analytics.HRMetrics{}, err
	}
	return analytics.CalculateHRMetrics(ds.Employees, s.Now), nil
}

// Diversity returns per-department gender and tenure statistics.
func (hs *HRService) Diversity(ctx context.Context, s analytics.Session) ([]analytics.DepartmentStats, error) {
	ds, _, err := hs.filtered(ctx, s)
	if err != nil {
		return nil, err
	}
	return analytics.DepartmentDiversity(ds.Employees, s.Now), nil
}

// Hiring returns hires per month.
func (hs *HRService) Hiring(ctx context.Context, s analytics.Session) ([]analytics.HiringMonth, error) {
	ds, _, err := hs.filtered(ctx, s)
	if err != nil {
		return nil, err
	}
	return analytics.MonthlyHiring(ds.Employees), nil
}

func (hs *HRService) Compensation(ctx context.Context, s analytics.Session) (analytics.CompensationSummary, error) {
	ds, _, err := hs.filtered(ctx, s)
	if err != nil {
		return analytics.CompensationSummary{}, err
	}
	return analytics.SummarizeCompensation(ds.Employees), nil
}

func (hs *HRService) Performance(ctx context.Context, s analytics.Session) (analytics.PerformanceSummary, error) {
	ds, _, err := hs.filtered(ctx, s)
	if err != nil {
		return analytics.PerformanceSummary{}, err
	}
	return analytics.SummarizePerformance(ds.Employees), nil
}

func (hs *HRService) Recruiting(ctx context.Context, s analytics.Session) (analytics.RecruitingSummary, error) {
	ds, _, err := hs.filtered(ctx, s)
	if err != nil {
		return analytics.RecruitingSummary{}, err
	}
	return analytics.SummarizeRecruiting(ds.Requisitions, ds.Candidates, s.Now), nil
}

// Absence summarizes leave for year. A zero year means the session year.
func (hs *HRService) Absence(ctx context.Context, s analytics.Session, year int) (analytics.AbsenceSummary, error) {
	if year <= 0 {
		year = s.Now.Year()
	}
	ds, _, err := hs.filtered(ctx, s)
	if err != nil {
		return analytics.AbsenceSummary{}, err
	}
	return analytics.SummarizeAbsence(ds.Leave, ds.Employees, year), nil
}

// Engagement returns the monthly engagement trend. Without a store the trend
// is empty.
func (hs *HRService) Engagement(ctx context.Context, department string) ([]domain.EngagementScore, error) {
	if hs.engagement == nil {
		return []domain.EngagementScore{}, nil
	}
	scores, err := hs.engagement.ListScores(ctx, department)
	if err != nil {
		return nil, err
	}
	return analytics.EngagementTrend(scores), nil
}

// SearchEmployees runs a full-text search through the index. Without an index
// it falls back to a case-insensitive match on name, alias and department.
func (hs *HRService) SearchEmployees(ctx context.Context, text string, size int) ([]domain.Employee, error) {
	if hs.index != nil {
		return hs.index.SearchEmployees(ctx, text, size)
	}

	employees, err := hs.repo.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(text)
	out := []domain.Employee{}
	for _, e := range employees {
		if len(out) == size {
			break
		}
		for _, field := range []string{e.Name, e.Alias, e.Department} {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, e)
				break
			}
		}
	}
	return analytics.SortEmployees(out, analytics.EmployeeByID, analytics.SortAsc), nil
}

// GetEmployee returns one employee or domain.ErrNotFound.
func (hs *HRService) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	return hs.repo.GetEmployee(ctx, id)
}
