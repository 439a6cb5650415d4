package repository

import (
	"context"
	"testing"
	"time"

	"github.com/locvowork/bi_dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryFixture() *MemoryRepository {
	return NewMemoryRepository(
		domain.FinanceDataset{
			Financial: []domain.FinancialRecord{
				{Date: "2024-03", Country: "UAE", Channel: "Retail", Status: "Actual", Revenue: 300},
				{Date: "2024-01", Country: "KSA", Channel: "Online", Status: "Actual", Revenue: 100},
				{Date: "2024-02", Country: "UAE", Channel: "", Status: "Budget", Revenue: 200},
			},
			ARAP: []domain.ARAPRecord{
				{Ledger: "ar", CustomerSupplier: "Acme"},
				{Ledger: "ap", CustomerSupplier: "Supplier"},
			},
			Sales: []domain.SalesLine{
				{OrderDate: time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC)},
				{OrderDate: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)},
			},
		},
		domain.HRDataset{
			Employees: []domain.Employee{{EmployeeID: "E1"}, {EmployeeID: "E2"}},
			Leave: []domain.LeaveRecord{
				{EmployeeID: "E1", Date: "2023-12-30", Days: 1},
				{EmployeeID: "E1", Date: "2024-01-02", Days: 2},
			},
		},
	)
}

func TestMemoryRepository_ListFinancial(t *testing.T) {
	repo := memoryFixture()
	ctx := context.Background()

	all, err := repo.ListFinancial(ctx, domain.FinanceQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-01", all[0].Date)

	uae, err := repo.ListFinancial(ctx, domain.FinanceQuery{Countries: []string{"UAE"}, DateEnd: "2024-02"})
	require.NoError(t, err)
	require.Len(t, uae, 1)
	assert.Equal(t, 200.0, uae[0].Revenue)

	online, err := repo.ListFinancial(ctx, domain.FinanceQuery{Channels: []string{"Online"}})
	require.NoError(t, err)
	require.Len(t, online, 2)
	assert.Equal(t, "2024-01", online[0].Date)
	assert.Equal(t, "2024-02", online[1].Date, "a row without a channel passes the channel facet")
}

func TestMemoryRepository_FilterOptions(t *testing.T) {
	opts, err := memoryFixture().FilterOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"KSA", "UAE"}, opts.Countries)
	assert.Equal(t, []string{"Online", "Retail"}, opts.Channels)
	assert.Equal(t, []string{"Actual", "Budget"}, opts.Statuses)
}

func TestMemoryRepository_Lookups(t *testing.T) {
	repo := memoryFixture()
	ctx := context.Background()

	ar, _ := repo.ListARAP(ctx, domain.LedgerReceivable)
	assert.Len(t, ar, 1)

	sales, _ := repo.ListSales(ctx, "2024-09-01", "2024-10-01")
	assert.Len(t, sales, 1)

	leave, _ := repo.ListLeave(ctx, 2024)
	assert.Len(t, leave, 1)

	_, err := repo.GetEmployee(ctx, "E9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	e, err := repo.GetEmployee(ctx, "E2")
	require.NoError(t, err)
	assert.Equal(t, "E2", e.EmployeeID)
}

func TestMemoryRepository_EngagementScores(t *testing.T) {
	repo := memoryFixture()
	ctx := context.Background()

	empty, err := repo.ListScores(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, repo.SaveScores(ctx, []domain.EngagementScore{
		{Month: "2024-06", Department: "IT", EngagementScore: 3.1, Responses: 10},
		{Month: "2024-06", Department: "HR", EngagementScore: 4.0, Responses: 5},
	}))
	require.NoError(t, repo.SaveScores(ctx, []domain.EngagementScore{
		{Month: "2024-06", Department: "IT", EngagementScore: 3.4, Responses: 12},
	}))

	all, _ := repo.ListScores(ctx, "")
	assert.Len(t, all, 2)

	it, _ := repo.ListScores(ctx, "IT")
	require.Len(t, it, 1)
	assert.Equal(t, 3.4, it[0].EngagementScore)
}
