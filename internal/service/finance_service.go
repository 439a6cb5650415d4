package service

import (
	"context"

	"github.com/locvowork/bi_dashboard/internal/analytics"
	"github.com/locvowork/bi_dashboard/internal/domain"
	"github.com/locvowork/bi_dashboard/internal/logger"
	"golang.org/x/sync/errgroup"
)

// FinanceService loads finance data and derives the dashboard views for a
// session. Derivation is synchronous; only the loads run concurrently.
type FinanceService struct {
	repo domain.FinanceRepository
}

// NewFinanceService creates a new FinanceService instance
func NewFinanceService(repo domain.FinanceRepository) *FinanceService {
	return &FinanceService{repo: repo}
}

// FinanceDashboard is the cockpit payload.
type FinanceDashboard struct {
	KPIs           []analytics.KPI                 `json:"kpis"`
	Summary        analytics.FinanceSummary        `json:"summary"`
	Monthly        []domain.FinancialRecord        `json:"monthly"`
	WorkingCapital []domain.WorkingCapitalRecord   `json:"workingCapital"`
	CashFlow       []domain.CashFlowRecord         `json:"cashFlow"`
	Aging          []analytics.AgingBucket         `json:"aging"`
	Metrics        analytics.WorkingCapitalMetrics `json:"metrics"`
	Bridge         analytics.Bridge                `json:"bridge"`
}

// load fetches every finance dataset concurrently. Facets and the date
// window are pushed down to the repository.
func (fs *FinanceService) load(ctx context.Context, s analytics.Session) (domain.FinanceDataset, error) {
	var ds domain.FinanceDataset
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		ds.Financial, err = fs.repo.ListFinancial(gctx, s.FinanceQuery())
		return err
	})
	g.Go(func() (err error) {
		ds.WorkingCapital, err = fs.repo.ListWorkingCapital(gctx)
		return err
	})
	g.Go(func() (err error) {
		ds.CashFlow, err = fs.repo.ListCashFlow(gctx)
		return err
	})
	g.Go(func() (err error) {
		ds.ARAP, err = fs.repo.ListARAP(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		ds.Sales, err = fs.repo.ListSales(gctx, "", "")
		return err
	})

	if err := g.Wait(); err != nil {
		logger.ErrorErr(ctx, err, "Failed to load finance data")
		return domain.FinanceDataset{}, err
	}
	return ds, nil
}

func ledger(records []domain.ARAPRecord, kind string) []domain.ARAPRecord {
	var out []domain.ARAPRecord
	for _, r := range records {
		if r.Ledger == kind {
			out = append(out, r)
		}
	}
	return out
}

// balances totals the open ledgers, takes inventory from the latest snapshot
// and sums every sales line as annual sales.
func balances(ds domain.FinanceDataset) domain.WorkingCapitalBalances {
	var b domain.WorkingCapitalBalances
	for _, r := range ds.ARAP {
		switch r.Ledger {
		case domain.LedgerReceivable:
			b.AccountsReceivable += r.Amount
		case domain.LedgerPayable:
			b.AccountsPayable += r.Amount
		}
	}
	if n := len(ds.WorkingCapital); n > 0 {
		b.Inventory = ds.WorkingCapital[n-1].Inventory
	}
	for _, l := range ds.Sales {
		b.AnnualSales += l.ExtendedPrice
	}
	return b
}

// Dashboard derives the full cockpit for the session.
func (fs *FinanceService) Dashboard(ctx context.Context, s analytics.Session) (*FinanceDashboard, error) {
	raw, err := fs.load(ctx, s)
	if err != nil {
		return nil, err
	}
	ds := s.FilterFinance(raw)
	receivables := ledger(raw.ARAP, domain.LedgerReceivable)
	prev, curr := s.BridgePeriods(raw.Sales)

	return &FinanceDashboard{
		KPIs:           analytics.CalculateFilteredKPIs(ds.Financial, ds.WorkingCapital, receivables),
		Summary:        analytics.SummarizeFinancials(ds.Financial),
		Monthly:        ds.Financial,
		WorkingCapital: ds.WorkingCapital,
		CashFlow:       ds.CashFlow,
		Aging:          analytics.AgingBuckets(receivables),
		Metrics:        analytics.CalculateWorkingCapitalMetrics(balances(raw)),
		Bridge:         analytics.CalculateBridge(prev, curr),
	}, nil
}

// Monthly returns the filtered monthly P&L series.
func (fs *FinanceService) Monthly(ctx context.Context, s analytics.Session) ([]domain.FinancialRecord, error) {
	records, err := fs.repo.ListFinancial(ctx, s.FinanceQuery())
	if err != nil {
		return nil, err
	}
	return analytics.FilterFinancialData(records, s.Finance, s.Anchor), nil
}

// CashFlow returns the filtered cash flow series.
func (fs *FinanceService) CashFlow(ctx context.Context, s analytics.Session) ([]domain.CashFlowRecord, error) {
	records, err := fs.repo.ListCashFlow(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.FilterCashFlowData(records, s.Finance, s.Anchor), nil
}

// WorkingCapital returns the filtered working capital series.
func (fs *FinanceService) WorkingCapital(ctx context.Context, s analytics.Session) ([]domain.WorkingCapitalRecord, error) {
	records, err := fs.repo.ListWorkingCapital(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.FilterWorkingCapitalData(records, s.Finance, s.Anchor), nil
}

// Aging buckets one ledger by days outstanding.
func (fs *FinanceService) Aging(ctx context.Context, kind string) ([]analytics.AgingBucket, error) {
	records, err := fs.repo.ListARAP(ctx, kind)
	if err != nil {
		return nil, err
	}
	return analytics.AgingBuckets(records), nil
}

// Invoices returns one ledger with the session table options applied.
func (fs *FinanceService) Invoices(ctx context.Context, s analytics.Session, kind string) ([]domain.ARAPRecord, error) {
	records, err := fs.repo.ListARAP(ctx, kind)
	if err != nil {
		return nil, err
	}
	return analytics.FilterARAPData(records, s.Table), nil
}

// WorkingCapitalMetrics derives DSO, DPO, DIO and CCC from current balances.
func (fs *FinanceService) WorkingCapitalMetrics(ctx context.Context, s analytics.Session) (analytics.WorkingCapitalMetrics, error) {
	ds, err := fs.load(ctx, s)
	if err != nil {
		return analytics.WorkingCapitalMetrics{}, err
	}
	return analytics.CalculateWorkingCapitalMetrics(balances(ds)), nil
}

// Bridge decomposes the anchor month's revenue change against the month
// before it.
func (fs *FinanceService) Bridge(ctx context.Context, s analytics.Session) (analytics.Bridge, error) {
	lines, err := fs.repo.ListSales(ctx, "", "")
	if err != nil {
		return analytics.Bridge{}, err
	}
	prev, curr := s.BridgePeriods(lines)
	return analytics.CalculateBridge(prev, curr), nil
}

// FilterOptions lists the selectable facet values.
func (fs *FinanceService) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	return fs.repo.FilterOptions(ctx)
}
