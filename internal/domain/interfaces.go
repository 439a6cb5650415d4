package domain

import "context"

// FinanceQuery narrows what a FinanceRepository loads. Empty slices mean no
// constraint.
type FinanceQuery struct {
	Countries []string
	Channels  []string
	Statuses  []string
	DateStart string
	DateEnd   string
}

// FinanceRepository loads the finance datasets.
type FinanceRepository interface {
	ListFinancial(ctx context.Context, q FinanceQuery) ([]FinancialRecord, error)
	ListWorkingCapital(ctx context.Context) ([]WorkingCapitalRecord, error)
	ListCashFlow(ctx context.Context) ([]CashFlowRecord, error)
	ListARAP(ctx context.Context, ledger string) ([]ARAPRecord, error)
	ListSales(ctx context.Context, from, to string) ([]SalesLine, error)
	FilterOptions(ctx context.Context) (FilterOptions, error)
}

// HRRepository loads the HR datasets.
type HRRepository interface {
	ListEmployees(ctx context.Context) ([]Employee, error)
	GetEmployee(ctx context.Context, id string) (*Employee, error)
	ListRequisitions(ctx context.Context) ([]Requisition, error)
	ListCandidates(ctx context.Context) ([]Candidate, error)
	ListLeave(ctx context.Context, year int) ([]LeaveRecord, error)
}

// EngagementStore holds monthly engagement survey results.
type EngagementStore interface {
	SaveScores(ctx context.Context, scores []EngagementScore) error
	ListScores(ctx context.Context, department string) ([]EngagementScore, error)
}

// EmployeeIndex is a full-text index over employees.
type EmployeeIndex interface {
	IndexEmployees(ctx context.Context, employees []Employee) error
	SearchEmployees(ctx context.Context, text string, size int) ([]Employee, error)
}

// FilterOptions lists the selectable facet values of the finance dashboard.
type FilterOptions struct {
	Countries []string `json:"countries"`
	Channels  []string `json:"channels"`
	Statuses  []string `json:"statuses"`
}
