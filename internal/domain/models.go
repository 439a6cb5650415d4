package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when a keyed lookup has no row.
var ErrNotFound = errors.New("not found")

// ==================== FINANCE ====================

// FinancialRecord is one month of P&L figures. Date is formatted "YYYY-MM".
type FinancialRecord struct {
	Date        string  `json:"date" db:"period" yaml:"date"`
	Revenue     float64 `json:"revenue" db:"revenue" yaml:"revenue"`
	Expenses    float64 `json:"expenses" db:"expenses" yaml:"expenses"`
	Profit      float64 `json:"profit" db:"profit" yaml:"profit"`
	GrossMargin float64 `json:"grossMargin" db:"gross_margin" yaml:"gross_margin"`
	Country     string  `json:"country,omitempty" db:"country" yaml:"country"`
	Channel     string  `json:"channel,omitempty" db:"channel" yaml:"channel"`
	Status      string  `json:"status,omitempty" db:"status" yaml:"status"`
}

// WorkingCapitalRecord is a month-end working capital snapshot. Month is a
// three letter label ("Jan".."Dec").
type WorkingCapitalRecord struct {
	Month              string  `json:"month" db:"month" yaml:"month"`
	Inventory          float64 `json:"inventory" db:"inventory" yaml:"inventory"`
	AccountsReceivable float64 `json:"accountsReceivable" db:"accounts_receivable" yaml:"accounts_receivable"`
	AccountsPayable    float64 `json:"accountsPayable" db:"accounts_payable" yaml:"accounts_payable"`
	WorkingCapital     float64 `json:"workingCapital" db:"working_capital" yaml:"working_capital"`
}

// CashFlowRecord is a month of cash movements split by activity.
type CashFlowRecord struct {
	Month       string  `json:"month" db:"month" yaml:"month"`
	Operating   float64 `json:"operating" db:"operating" yaml:"operating"`
	Investing   float64 `json:"investing" db:"investing" yaml:"investing"`
	Financing   float64 `json:"financing" db:"financing" yaml:"financing"`
	NetCashFlow float64 `json:"netCashFlow" db:"net_cash_flow" yaml:"net_cash_flow"`
}

// ARAP statuses. They are carried as recorded and are not derived from
// DaysOutstanding.
const (
	ARAPStatusCurrent  = "current"
	ARAPStatusOverdue  = "overdue"
	ARAPStatusCritical = "critical"
)

// Ledger kinds for ARAPRecord.
const (
	LedgerReceivable = "ar"
	LedgerPayable    = "ap"
)

// ARAPRecord is an open receivable or payable balance with one counterparty.
type ARAPRecord struct {
	Ledger           string  `json:"ledger" db:"ledger" yaml:"ledger"`
	CustomerSupplier string  `json:"customerSupplier" db:"counterparty" yaml:"customer_supplier"`
	Amount           float64 `json:"amount" db:"amount" yaml:"amount"`
	DaysOutstanding  int     `json:"daysOutstanding" db:"days_outstanding" yaml:"days_outstanding"`
	Status           string  `json:"status" db:"status" yaml:"status"`
	DueDate          string  `json:"dueDate" db:"due_date" yaml:"due_date"`
}

// SalesLine is an order line used for the revenue bridge.
type SalesLine struct {
	OrderDate     time.Time `json:"order_date" db:"order_date" yaml:"order_date"`
	UnitPrice     float64   `json:"unit_price" db:"unit_price" yaml:"unit_price"`
	Quantity      float64   `json:"quantity" db:"quantity" yaml:"quantity"`
	ExtendedPrice float64   `json:"extended_price" db:"extended_price" yaml:"extended_price"`
}

// WorkingCapitalBalances are the totals the working capital metrics are
// derived from.
type WorkingCapitalBalances struct {
	AccountsReceivable float64 `json:"accountsReceivable"`
	AccountsPayable    float64 `json:"accountsPayable"`
	Inventory          float64 `json:"inventory"`
	AnnualSales        float64 `json:"annualSales"`
}

// ==================== HR ====================

// Employee statuses.
const (
	EmployeeActive     = "Active"
	EmployeeTerminated = "Terminated"
)

// Employee is one row of the people dataset. Dates are "YYYY-MM-DD"; TermDate
// and LastPromotionDate are empty when absent.
type Employee struct {
	EmployeeID        string  `json:"employee_id" db:"employee_id" yaml:"employee_id" validate:"required"`
	Name              string  `json:"name,omitempty" db:"name" yaml:"name"`
	Alias             string  `json:"alias" db:"alias" yaml:"alias"`
	Gender            string  `json:"gender" db:"gender" yaml:"gender"`
	Age               int     `json:"age" db:"age" yaml:"age"`
	Department        string  `json:"department" db:"department" yaml:"department" validate:"required"`
	Location          string  `json:"location" db:"location" yaml:"location"`
	Grade             string  `json:"grade" db:"grade" yaml:"grade" validate:"required"`
	ManagerID         string  `json:"manager_id,omitempty" db:"manager_id" yaml:"manager_id"`
	HireDate          string  `json:"hire_date" db:"hire_date" yaml:"hire_date" validate:"required"`
	TermDate          string  `json:"term_date,omitempty" db:"term_date" yaml:"term_date"`
	Status            string  `json:"status" db:"status" yaml:"status" validate:"oneof=Active Terminated"`
	SalaryAED         float64 `json:"salary_aed" db:"salary_aed" yaml:"salary_aed" validate:"gt=0"`
	PerformanceRating int     `json:"performance_rating" db:"performance_rating" yaml:"performance_rating" validate:"min=1,max=5"`
	EngagementScore   float64 `json:"engagement_score" db:"engagement_score" yaml:"engagement_score" validate:"min=1,max=5"`
	OvertimeHoursM    float64 `json:"overtime_hours_m" db:"overtime_hours_m" yaml:"overtime_hours_m" validate:"min=0"`
	LastPromotionDate string  `json:"last_promotion_date,omitempty" db:"last_promotion_date" yaml:"last_promotion_date"`
}

// IsActive reports whether the employee is currently employed.
func (e Employee) IsActive() bool {
	return e.Status == EmployeeActive
}

// Requisition is an open or closed job requisition.
type Requisition struct {
	ReqID      string `json:"req_id" db:"req_id" yaml:"req_id"`
	Department string `json:"department" db:"department" yaml:"department"`
	OpenDate   string `json:"open_date" db:"open_date" yaml:"open_date"`
	Status     string `json:"status" db:"status" yaml:"status"`
}

// Candidate stages, in funnel order.
var CandidateStages = []string{"Sourced", "Screen", "Interview", "Offer", "Hired", "Rejected"}

// Candidate is a candidate attached to a requisition.
type Candidate struct {
	ReqID         string `json:"req_id" db:"req_id" yaml:"req_id"`
	CandidateID   string `json:"candidate_id" db:"candidate_id" yaml:"candidate_id"`
	Stage         string `json:"stage" db:"stage" yaml:"stage"`
	SubmittedDate string `json:"submitted_date" db:"submitted_date" yaml:"submitted_date"`
}

// LeaveRecord is one leave booking.
type LeaveRecord struct {
	EmployeeID string  `json:"employee_id" db:"employee_id" yaml:"employee_id"`
	Date       string  `json:"date" db:"leave_date" yaml:"date"`
	Type       string  `json:"type" db:"leave_type" yaml:"type"`
	Days       float64 `json:"days" db:"days" yaml:"days"`
}

// EngagementScore is the monthly engagement survey average. Stored in
// Datastore.
type EngagementScore struct {
	Month           string  `datastore:"Month" json:"month" yaml:"month"`
	Department      string  `datastore:"Department" json:"department,omitempty" yaml:"department"`
	EngagementScore float64 `datastore:"EngagementScore" json:"engagement_score" yaml:"engagement_score"`
	Responses       int     `datastore:"Responses" json:"responses" yaml:"responses"`
}

// HRDataset groups everything the HR views compute over.
type HRDataset struct {
	Employees    []Employee    `json:"employees" yaml:"employees"`
	Requisitions []Requisition `json:"requisitions" yaml:"requisitions"`
	Candidates   []Candidate   `json:"candidates" yaml:"candidates"`
	Leave        []LeaveRecord `json:"leave" yaml:"leave"`
}

// FinanceDataset groups everything the finance views compute over.
type FinanceDataset struct {
	Financial      []FinancialRecord      `json:"financial" yaml:"financial"`
	WorkingCapital []WorkingCapitalRecord `json:"working_capital" yaml:"working_capital"`
	CashFlow       []CashFlowRecord       `json:"cash_flow" yaml:"cash_flow"`
	ARAP           []ARAPRecord           `json:"arap" yaml:"arap"`
	Sales          []SalesLine            `json:"sales" yaml:"sales"`
}
