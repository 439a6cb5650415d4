package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/locvowork/bi_dashboard/internal/domain"
	"github.com/locvowork/bi_dashboard/internal/logger"
	"github.com/locvowork/bi_dashboard/internal/repository/builder"
	"github.com/locvowork/bi_dashboard/pkg/dataflow"
	"gopkg.in/yaml.v3"
)

// Fixture is the YAML document the seeder and fixture mode read.
type Fixture struct {
	Finance    domain.FinanceDataset    `yaml:"finance"`
	HR         domain.HRDataset         `yaml:"hr"`
	Engagement []domain.EngagementScore `yaml:"engagement"`
}

// LoadFixture reads and validates a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return ParseFixture(raw)
}

// ParseFixture decodes a fixture and validates every employee row.
func ParseFixture(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}

	validate := validator.New()
	for i := range f.HR.Employees {
		if err := validate.Struct(f.HR.Employees[i]); err != nil {
			return nil, fmt.Errorf("employee %d (%s): %w", i, f.HR.Employees[i].EmployeeID, err)
		}
	}
	return &f, nil
}

// DataSeeder writes a fixture into Postgres and, when configured, into
// Datastore and Elasticsearch.
type DataSeeder struct {
	db         *sql.DB
	engagement domain.EngagementStore
	index      domain.EmployeeIndex
}

// NewDataSeeder creates a seeder. engagement and index may be nil.
func NewDataSeeder(db *sql.DB, engagement domain.EngagementStore, index domain.EmployeeIndex) *DataSeeder {
	return &DataSeeder{db: db, engagement: engagement, index: index}
}

// Employees are bulk indexed in batches of indexBatchSize.
const (
	indexBatchSize = 500
	indexWorkers   = 2
	indexRetries   = 2
)

// seedTables lists the tables written by Seed, children first.
var seedTables = []string{
	"hr_leave", "hr_candidates", "hr_requisitions", "hr_employees",
	"finance_sales_lines", "finance_arap", "finance_cash_flow", "finance_working_capital", "finance_monthly",
}

// Seed upserts the fixture in a single transaction.
func (ds *DataSeeder) Seed(ctx context.Context, f *Fixture) error {
	start := time.Now()

	tx, err := ds.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, stmt := range seedStatements(f) {
		query, args, err := stmt.BuildSafe()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed statement %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.InfoLog(ctx, "Seeded %d financial rows, %d employees", len(f.Finance.Financial), len(f.HR.Employees))

	if ds.engagement != nil {
		if err := ds.engagement.SaveScores(ctx, f.Engagement); err != nil {
			return err
		}
		logger.InfoLog(ctx, "Saved %d engagement scores", len(f.Engagement))
	}
	if ds.index != nil {
		err := dataflow.ForEach(ctx, dataflow.Batch(ctx, f.HR.Employees, indexBatchSize),
			ds.index.IndexEmployees,
			dataflow.WithWorkers(indexWorkers),
			dataflow.WithRetry(indexRetries, dataflow.ConstantBackoff(time.Second)),
		)
		if err != nil {
			return fmt.Errorf("failed to index employees: %w", err)
		}
		logger.InfoLog(ctx, "Indexed %d employees", len(f.HR.Employees))
	}

	logger.InfoLog(ctx, "Seeding done in %v", time.Since(start))
	return nil
}

// seedStatements renders one multi-row upsert per non-empty dataset.
func seedStatements(f *Fixture) []*builder.SQLBuilder {
	var stmts []*builder.SQLBuilder
	add := func(n int, b *builder.SQLBuilder) {
		if n > 0 {
			stmts = append(stmts, b)
		}
	}

	fin := builder.NewSQLBuilder().
		Insert("finance_monthly", "period", "country", "channel", "status", "revenue", "expenses", "profit", "gross_margin").
		OnConflict("(period, country, channel, status) DO UPDATE SET revenue = EXCLUDED.revenue, expenses = EXCLUDED.expenses, profit = EXCLUDED.profit, gross_margin = EXCLUDED.gross_margin")
	for _, r := range f.Finance.Financial {
		fin.Values(r.Date, r.Country, r.Channel, r.Status, r.Revenue, r.Expenses, r.Profit, r.GrossMargin)
	}
	add(len(f.Finance.Financial), fin)

	wc := builder.NewSQLBuilder().
		Insert("finance_working_capital", "month", "position", "inventory", "accounts_receivable", "accounts_payable", "working_capital").
		OnConflict("(month) DO UPDATE SET position = EXCLUDED.position, inventory = EXCLUDED.inventory, accounts_receivable = EXCLUDED.accounts_receivable, accounts_payable = EXCLUDED.accounts_payable, working_capital = EXCLUDED.working_capital")
	for i, r := range f.Finance.WorkingCapital {
		wc.Values(r.Month, i, r.Inventory, r.AccountsReceivable, r.AccountsPayable, r.WorkingCapital)
	}
	add(len(f.Finance.WorkingCapital), wc)

	cf := builder.NewSQLBuilder().
		Insert("finance_cash_flow", "month", "position", "operating", "investing", "financing", "net_cash_flow").
		OnConflict("(month) DO UPDATE SET position = EXCLUDED.position, operating = EXCLUDED.operating, investing = EXCLUDED.investing, financing = EXCLUDED.financing, net_cash_flow = EXCLUDED.net_cash_flow")
	for i, r := range f.Finance.CashFlow {
		cf.Values(r.Month, i, r.Operating, r.Investing, r.Financing, r.NetCashFlow)
	}
	add(len(f.Finance.CashFlow), cf)

	arap := builder.NewSQLBuilder().
		Insert("finance_arap", "ledger", "counterparty", "amount", "days_outstanding", "status", "due_date").
		OnConflict("(ledger, counterparty, due_date) DO UPDATE SET amount = EXCLUDED.amount, days_outstanding = EXCLUDED.days_outstanding, status = EXCLUDED.status")
	for _, r := range f.Finance.ARAP {
		arap.Values(r.Ledger, r.CustomerSupplier, r.Amount, r.DaysOutstanding, r.Status, r.DueDate)
	}
	add(len(f.Finance.ARAP), arap)

	sales := builder.NewSQLBuilder().
		Insert("finance_sales_lines", "order_date", "unit_price", "quantity", "extended_price")
	for _, l := range f.Finance.Sales {
		sales.Values(l.OrderDate, l.UnitPrice, l.Quantity, l.ExtendedPrice)
	}
	add(len(f.Finance.Sales), sales)

	emps := builder.NewSQLBuilder().
		Insert("hr_employees", "employee_id", "name", "alias", "gender", "age", "department", "location", "grade",
			"manager_id", "hire_date", "term_date", "status", "salary_aed", "performance_rating",
			"engagement_score", "overtime_hours_m", "last_promotion_date").
		OnConflict("(employee_id) DO NOTHING")
	for _, e := range f.HR.Employees {
		emps.Values(e.EmployeeID, e.Name, e.Alias, e.Gender, e.Age, e.Department, e.Location, e.Grade,
			e.ManagerID, e.HireDate, e.TermDate, e.Status, e.SalaryAED, e.PerformanceRating,
			e.EngagementScore, e.OvertimeHoursM, e.LastPromotionDate)
	}
	add(len(f.HR.Employees), emps)

	reqs := builder.NewSQLBuilder().
		Insert("hr_requisitions", "req_id", "department", "open_date", "status").
		OnConflict("(req_id) DO UPDATE SET status = EXCLUDED.status")
	for _, r := range f.HR.Requisitions {
		reqs.Values(r.ReqID, r.Department, r.OpenDate, r.Status)
	}
	add(len(f.HR.Requisitions), reqs)

	cands := builder.NewSQLBuilder().
		Insert("hr_candidates", "candidate_id", "req_id", "stage", "submitted_date").
		OnConflict("(candidate_id) DO UPDATE SET stage = EXCLUDED.stage")
	for _, c := range f.HR.Candidates {
		cands.Values(c.CandidateID, c.ReqID, c.Stage, c.SubmittedDate)
	}
	add(len(f.HR.Candidates), cands)

	leave := builder.NewSQLBuilder().
		Insert("hr_leave", "employee_id", "leave_date", "leave_type", "days")
	for _, l := range f.HR.Leave {
		leave.Values(l.EmployeeID, l.Date, l.Type, l.Days)
	}
	add(len(f.HR.Leave), leave)

	return stmts
}

// ClearData empties every seeded table.
func (ds *DataSeeder) ClearData(ctx context.Context) error {
	for _, table := range seedTables {
		query, args := builder.NewSQLBuilder().Delete(table).Build()
		if _, err := ds.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	logger.InfoLog(ctx, "Cleared %d tables", len(seedTables))
	return nil
}
