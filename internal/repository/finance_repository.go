package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/locvowork/bi_dashboard/internal/domain"
	"github.com/locvowork/bi_dashboard/internal/repository/builder"
)

type financeRepository struct {
	db *sql.DB
}

// NewFinanceRepository creates a Postgres backed domain.FinanceRepository.
func NewFinanceRepository(db *sql.DB) domain.FinanceRepository {
	return &financeRepository{db: db}
}

func toArgs(vals []string) []interface{} {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

// ListFinancial loads monthly P&L rows. Facet selections and the YYYY-MM
// bounds are pushed down into the WHERE clause; rows missing a facet value
// pass that facet.
func (r *financeRepository) ListFinancial(ctx context.Context, q domain.FinanceQuery) ([]domain.FinancialRecord, error) {
	b := builder.NewSQLBuilder().
		Select("period", "revenue", "expenses", "profit", "gross_margin", "country", "channel", "status").
		From("finance_monthly")
	if q.DateStart != "" {
		b.Where("period >= ?", q.DateStart)
	}
	if q.DateEnd != "" {
		b.Where("period <= ?", q.DateEnd)
	}
	b.WhereInOrEmpty("country", toArgs(q.Countries)...).
		WhereInOrEmpty("channel", toArgs(q.Channels)...).
		WhereInOrEmpty("status", toArgs(q.Statuses)...).
		OrderBy("period ASC")

	query, args, err := b.BuildSafe()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query finance_monthly: %w", err)
	}
	defer rows.Close()

	var records []domain.FinancialRecord
	for rows.Next() {
		var f domain.FinancialRecord
		if err := rows.Scan(&f.Date, &f.Revenue, &f.Expenses, &f.Profit, &f.GrossMargin, &f.Country, &f.Channel, &f.Status); err != nil {
			return nil, err
		}
		records = append(records, f)
	}
	return records, rows.Err()
}

func (r *financeRepository) ListWorkingCapital(ctx context.Context) ([]domain.WorkingCapitalRecord, error) {
	query, args := builder.NewSQLBuilder().
		Select("month", "inventory", "accounts_receivable", "accounts_payable", "working_capital").
		From("finance_working_capital").
		OrderBy("position ASC").
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query finance_working_capital: %w", err)
	}
	defer rows.Close()

	var records []domain.WorkingCapitalRecord
	for rows.Next() {
		var w domain.WorkingCapitalRecord
		if err := rows.Scan(&w.Month, &w.Inventory, &w.AccountsReceivable, &w.AccountsPayable, &w.WorkingCapital); err != nil {
			return nil, err
		}
		records = append(records, w)
	}
	return records, rows.Err()
}

func (r *financeRepository) ListCashFlow(ctx context.Context) ([]domain.CashFlowRecord, error) {
	query, args := builder.NewSQLBuilder().
		Select("month", "operating", "investing", "financing", "net_cash_flow").
		From("finance_cash_flow").
		OrderBy("position ASC").
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query finance_cash_flow: %w", err)
	}
	defer rows.Close()

	var records []domain.CashFlowRecord
	for rows.Next() {
		var c domain.CashFlowRecord
		if err := rows.Scan(&c.Month, &c.Operating, &c.Investing, &c.Financing, &c.NetCashFlow); err != nil {
			return nil, err
		}
		records = append(records, c)
	}
	return records, rows.Err()
}

// ListARAP loads one ledger ("ar" or "ap"). An empty ledger loads both.
func (r *financeRepository) ListARAP(ctx context.Context, ledger string) ([]domain.ARAPRecord, error) {
	b := builder.NewSQLBuilder().
		Select("ledger", "counterparty", "amount", "days_outstanding", "status", "due_date").
		From("finance_arap")
	if ledger != "" {
		b.Where("ledger = ?", ledger)
	}
	query, args := b.OrderBy("days_outstanding DESC").OrderBy("counterparty ASC").Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query finance_arap: %w", err)
	}
	defer rows.Close()

	var records []domain.ARAPRecord
	for rows.Next() {
		var a domain.ARAPRecord
		if err := rows.Scan(&a.Ledger, &a.CustomerSupplier, &a.Amount, &a.DaysOutstanding, &a.Status, &a.DueDate); err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

// ListSales loads order lines with from <= order_date < to. Both bounds are
// "YYYY-MM-DD" and optional.
func (r *financeRepository) ListSales(ctx context.Context, from, to string) ([]domain.SalesLine, error) {
	b := builder.NewSQLBuilder().
		Select("order_date", "unit_price", "quantity", "extended_price").
		From("finance_sales_lines")
	if from != "" {
		b.Where("order_date >= ?", from)
	}
	if to != "" {
		b.Where("order_date < ?", to)
	}
	query, args := b.OrderBy("order_date ASC").Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query finance_sales_lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.SalesLine
	for rows.Next() {
		var l domain.SalesLine
		var orderDate time.Time
		if err := rows.Scan(&orderDate, &l.UnitPrice, &l.Quantity, &l.ExtendedPrice); err != nil {
			return nil, err
		}
		l.OrderDate = orderDate.UTC()
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// FilterOptions lists the distinct non-empty facet values.
func (r *financeRepository) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	var opts domain.FilterOptions
	for _, facet := range []struct {
		col  string
		dest *[]string
	}{
		{"country", &opts.Countries},
		{"channel", &opts.Channels},
		{"status", &opts.Statuses},
	} {
		values, err := r.distinct(ctx, facet.col)
		if err != nil {
			return domain.FilterOptions{}, err
		}
		*facet.dest = values
	}
	return opts, nil
}

func (r *financeRepository) distinct(ctx context.Context, col string) ([]string, error) {
	query, args := builder.NewSQLBuilder().
		Select(col).
		Distinct().
		From("finance_monthly").
		Where(col+" <> ?", "").
		OrderBy(col).
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query distinct %s: %w", col, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
