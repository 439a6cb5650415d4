package analytics

import (
	"math"
	"time"

	"github.com/locvowork/bi_dashboard/internal/domain"
)

// Tab names the dashboard view a request is rendered for.
type Tab string

const (
	TabFinanceOverview Tab = "finance-overview"
	TabWorkingCapital  Tab = "working-capital"
	TabReceivables     Tab = "receivables"
	TabPayables        Tab = "payables"
	TabHROverview      Tab = "hr-overview"
	TabAttritionRisk   Tab = "attrition-risk"
	TabCompensation    Tab = "compensation"
	TabPerformance     Tab = "performance"
	TabRecruiting      Tab = "recruiting"
	TabAbsence         Tab = "absence"
)

// Session is the filter context of one request. It is built per request and
// never shared.
type Session struct {
	Tab     Tab
	Finance FilterState
	HR      HRFilters
	Table   TableFilterOptions
	Scope   MedianScope
	// Anchor is the month finance ranges are resolved against.
	Anchor time.Time
	// Now is the clock HR ranges and tenure are measured against.
	Now time.Time
}

// FinanceQuery turns the finance filter state into a repository query. The
// date bounds are "YYYY-MM" and empty when the range is unconstrained.
func (s Session) FinanceQuery() domain.FinanceQuery {
	q := domain.FinanceQuery{
		Countries: s.Finance.Countries,
		Channels:  s.Finance.Channels,
		Statuses:  s.Finance.Statuses,
	}
	if w, ok := s.Finance.window(s.Anchor); ok {
		if w.from != math.MinInt {
			q.DateStart = FormatMonth(w.from)
		}
		if w.to != math.MaxInt {
			q.DateEnd = FormatMonth(w.to)
		}
	}
	return q
}

// FilterFinance narrows every finance dataset to the session selection.
// AR/AP rows only get the table options applied.
func (s Session) FilterFinance(ds domain.FinanceDataset) domain.FinanceDataset {
	return domain.FinanceDataset{
		Financial:      FilterFinancialData(ds.Financial, s.Finance, s.Anchor),
		WorkingCapital: FilterWorkingCapitalData(ds.WorkingCapital, s.Finance, s.Anchor),
		CashFlow:       FilterCashFlowData(ds.CashFlow, s.Finance, s.Anchor),
		ARAP:           FilterARAPData(ds.ARAP, s.Table),
		Sales:          ds.Sales,
	}
}

// FilterHR narrows the HR datasets. Requisitions follow the department
// selection; candidates and leave follow what remains.
func (s Session) FilterHR(ds domain.HRDataset) domain.HRDataset {
	employees := FilterEmployees(ds.Employees, s.HR, s.Now)
	reqs := FilterRequisitions(ds.Requisitions, s.HR)
	return domain.HRDataset{
		Employees:    employees,
		Requisitions: reqs,
		Candidates:   FilterCandidates(ds.Candidates, reqs),
		Leave:        FilterLeave(ds.Leave, employees),
	}
}

// RiskOptions configures attrition scoring with population as the global
// benchmark.
func (s Session) RiskOptions(population []domain.Employee) RiskOptions {
	return RiskOptions{Scope: s.Scope, Population: population, Now: s.Now}
}

// BridgePeriods splits sales lines around the anchor month.
func (s Session) BridgePeriods(lines []domain.SalesLine) (prev, curr []domain.SalesLine) {
	return SplitBridgePeriods(lines, s.Anchor)
}
