package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/locvowork/bi_dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, *financeRepository, *hrRepository) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, &financeRepository{db: db}, &hrRepository{db: db}
}

func TestFinanceRepository_ListFinancial(t *testing.T) {
	mock, repo, _ := newMock(t)

	mock.ExpectQuery("SELECT period, revenue, expenses, profit, gross_margin, country, channel, status FROM finance_monthly WHERE period >= $1 AND period <= $2 AND (country = '' OR country IN ($3, $4)) AND (status = '' OR status IN ($5)) ORDER BY period ASC").
		WithArgs("2024-01", "2024-09", "UAE", "KSA", "Actual").
		WillReturnRows(sqlmock.NewRows([]string{"period", "revenue", "expenses", "profit", "gross_margin", "country", "channel", "status"}).
			AddRow("2024-01", 1000.0, 700.0, 300.0, 30.0, "UAE", "Retail", "Actual").
			AddRow("2024-02", 1100.0, 800.0, 300.0, 27.3, "KSA", "Online", "Actual").
			AddRow("2024-03", 900.0, 650.0, 250.0, 27.8, "", "Online", "Actual"))

	records, err := repo.ListFinancial(context.Background(), domain.FinanceQuery{
		Countries: []string{"UAE", "KSA"},
		Statuses:  []string{"Actual"},
		DateStart: "2024-01",
		DateEnd:   "2024-09",
	})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2024-02", records[1].Date)
	assert.Empty(t, records[2].Country)
	assert.Equal(t, 27.3, records[1].GrossMargin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinanceRepository_ListFinancial_NoConstraints(t *testing.T) {
	mock, repo, _ := newMock(t)

	mock.ExpectQuery("SELECT period, revenue, expenses, profit, gross_margin, country, channel, status FROM finance_monthly ORDER BY period ASC").
		WillReturnRows(sqlmock.NewRows([]string{"period", "revenue", "expenses", "profit", "gross_margin", "country", "channel", "status"}))

	records, err := repo.ListFinancial(context.Background(), domain.FinanceQuery{})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinanceRepository_ListARAP(t *testing.T) {
	mock, repo, _ := newMock(t)

	mock.ExpectQuery("SELECT ledger, counterparty, amount, days_outstanding, status, due_date FROM finance_arap WHERE ledger = $1 ORDER BY days_outstanding DESC, counterparty ASC").
		WithArgs(domain.LedgerReceivable).
		WillReturnRows(sqlmock.NewRows([]string{"ledger", "counterparty", "amount", "days_outstanding", "status", "due_date"}).
			AddRow("ar", "Acme", 5000.0, 75, "critical", "2024-07-01"))

	records, err := repo.ListARAP(context.Background(), domain.LedgerReceivable)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme", records[0].CustomerSupplier)
	assert.Equal(t, 75, records[0].DaysOutstanding)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinanceRepository_ListSales(t *testing.T) {
	mock, repo, _ := newMock(t)
	day := time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT order_date, unit_price, quantity, extended_price FROM finance_sales_lines WHERE order_date >= $1 AND order_date < $2 ORDER BY order_date ASC").
		WithArgs("2024-08-01", "2024-10-01").
		WillReturnRows(sqlmock.NewRows([]string{"order_date", "unit_price", "quantity", "extended_price"}).
			AddRow(day, 10.0, 3.0, 30.0))

	lines, err := repo.ListSales(context.Background(), "2024-08-01", "2024-10-01")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].OrderDate.Equal(day))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinanceRepository_FilterOptions(t *testing.T) {
	mock, repo, _ := newMock(t)

	mock.ExpectQuery("SELECT DISTINCT country FROM finance_monthly WHERE country <> $1 ORDER BY country").
		WithArgs("").
		WillReturnRows(sqlmock.NewRows([]string{"country"}).AddRow("KSA").AddRow("UAE"))
	mock.ExpectQuery("SELECT DISTINCT channel FROM finance_monthly WHERE channel <> $1 ORDER BY channel").
		WithArgs("").
		WillReturnRows(sqlmock.NewRows([]string{"channel"}).AddRow("Online"))
	mock.ExpectQuery("SELECT DISTINCT status FROM finance_monthly WHERE status <> $1 ORDER BY status").
		WithArgs("").
		WillReturnRows(sqlmock.NewRows([]string{"status"}))

	opts, err := repo.FilterOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"KSA", "UAE"}, opts.Countries)
	assert.Equal(t, []string{"Online"}, opts.Channels)
	assert.Equal(t, []string{}, opts.Statuses)
	assert.NoError(t, mock.ExpectationsWereMet())
}
