package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/locvowork/bi_dashboard/internal/analytics"
	"github.com/locvowork/bi_dashboard/internal/domain"
)

// MemoryRepository serves the finance and HR datasets from memory. It backs
// fixture mode and tests.
type MemoryRepository struct {
	finance domain.FinanceDataset
	hr      domain.HRDataset

	mu         sync.RWMutex
	engagement []domain.EngagementScore
}

var (
	_ domain.FinanceRepository = (*MemoryRepository)(nil)
	_ domain.HRRepository      = (*MemoryRepository)(nil)
	_ domain.EngagementStore   = (*MemoryRepository)(nil)
)

// NewMemoryRepository wraps already loaded datasets.
func NewMemoryRepository(finance domain.FinanceDataset, hr domain.HRDataset) *MemoryRepository {
	return &MemoryRepository{finance: finance, hr: hr}
}

func (m *MemoryRepository) ListFinancial(_ context.Context, q domain.FinanceQuery) ([]domain.FinancialRecord, error) {
	var out []domain.FinancialRecord
	for _, f := range m.finance.Financial {
		if q.DateStart != "" && f.Date < q.DateStart {
			continue
		}
		if q.DateEnd != "" && f.Date > q.DateEnd {
			continue
		}
		if !analytics.InOptionalSelection(q.Countries, f.Country) ||
			!analytics.InOptionalSelection(q.Channels, f.Channel) ||
			!analytics.InOptionalSelection(q.Statuses, f.Status) {
			continue
		}
		out = append(out, f)
	}
	slices.SortStableFunc(out, func(a, b domain.FinancialRecord) int { return strings.Compare(a.Date, b.Date) })
	return out, nil
}

func (m *MemoryRepository) ListWorkingCapital(context.Context) ([]domain.WorkingCapitalRecord, error) {
	return slices.Clone(m.finance.WorkingCapital), nil
}

func (m *MemoryRepository) ListCashFlow(context.Context) ([]domain.CashFlowRecord, error) {
	return slices.Clone(m.finance.CashFlow), nil
}

func (m *MemoryRepository) ListARAP(_ context.Context, ledger string) ([]domain.ARAPRecord, error) {
	var out []domain.ARAPRecord
	for _, r := range m.finance.ARAP {
		if ledger == "" || r.Ledger == ledger {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryRepository) ListSales(_ context.Context, from, to string) ([]domain.SalesLine, error) {
	var out []domain.SalesLine
	for _, l := range m.finance.Sales {
		day := l.OrderDate.Format("2006-01-02")
		if from != "" && day < from {
			continue
		}
		if to != "" && day >= to {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *MemoryRepository) FilterOptions(context.Context) (domain.FilterOptions, error) {
	opts := domain.FilterOptions{Countries: []string{}, Channels: []string{}, Statuses: []string{}}
	for _, f := range m.finance.Financial {
		opts.Countries = appendUnique(opts.Countries, f.Country)
		opts.Channels = appendUnique(opts.Channels, f.Channel)
		opts.Statuses = appendUnique(opts.Statuses, f.Status)
	}
	slices.Sort(opts.Countries)
	slices.Sort(opts.Channels)
	slices.Sort(opts.Statuses)
	return opts, nil
}

func appendUnique(values []string, v string) []string {
	if v == "" || slices.Contains(values, v) {
		return values
	}
	return append(values, v)
}

func (m *MemoryRepository) ListEmployees(context.Context) ([]domain.Employee, error) {
	return slices.Clone(m.hr.Employees), nil
}

func (m *MemoryRepository) GetEmployee(_ context.Context, id string) (*domain.Employee, error) {
	for _, e := range m.hr.Employees {
		if e.EmployeeID == id {
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MemoryRepository) ListRequisitions(context.Context) ([]domain.Requisition, error) {
	return slices.Clone(m.hr.Requisitions), nil
}

func (m *MemoryRepository) ListCandidates(context.Context) ([]domain.Candidate, error) {
	return slices.Clone(m.hr.Candidates), nil
}

func (m *MemoryRepository) ListLeave(_ context.Context, year int) ([]domain.LeaveRecord, error) {
	if year <= 0 {
		return slices.Clone(m.hr.Leave), nil
	}
	prefix := fmt.Sprintf("%04d-", year)
	var out []domain.LeaveRecord
	for _, l := range m.hr.Leave {
		if strings.HasPrefix(l.Date, prefix) {
			out = append(out, l)
		}
	}
	return out, nil
}

// SaveScores replaces stored scores with the same month and department.
func (m *MemoryRepository) SaveScores(_ context.Context, scores []domain.EngagementScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range scores {
		i := slices.IndexFunc(m.engagement, func(e domain.EngagementScore) bool {
			return e.Month == s.Month && e.Department == s.Department
		})
		if i >= 0 {
			m.engagement[i] = s
			continue
		}
		m.engagement = append(m.engagement, s)
	}
	return nil
}

func (m *MemoryRepository) ListScores(_ context.Context, department string) ([]domain.EngagementScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.EngagementScore{}
	for _, s := range m.engagement {
		if department == "" || s.Department == department {
			out = append(out, s)
		}
	}
	return out, nil
}
