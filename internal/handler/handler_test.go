package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/bi_dashboard/internal/analytics"
	"github.com/locvowork/bi_dashboard/internal/database"
	"github.com/locvowork/bi_dashboard/internal/domain"
	"github.com/locvowork/bi_dashboard/internal/repository"
	"github.com/locvowork/bi_dashboard/internal/service"
	"github.com/locvowork/bi_dashboard/pkg/simpleexcel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type handlers struct {
	e       *echo.Echo
	finance *FinanceHandler
	hr      *HRHandler
	export  *ExportHandler
}

func setup(t *testing.T) *handlers {
	t.Helper()
	f, err := database.LoadFixture(filepath.Join("..", "..", "testdata", "fixture.yaml"))
	require.NoError(t, err)
	repo := repository.NewMemoryRepository(f.Finance, f.HR)

	sessions := SessionConfig{
		Anchor: time.Date(2024, time.September, 30, 0, 0, 0, 0, time.UTC),
		Scope:  analytics.ScopeGlobal,
		Now:    func() time.Time { return time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC) },
	}
	templates, err := LoadReportTemplates("")
	require.NoError(t, err)

	e := echo.New()
	e.Validator = NewValidator()
	financeSvc := service.NewFinanceService(repo)
	hrSvc := service.NewHRService(repo, nil, nil)
	return &handlers{
		e:       e,
		finance: NewFinanceHandler(financeSvc, sessions),
		hr:      NewHRHandler(hrSvc, sessions),
		export:  NewExportHandler(financeSvc, hrSvc, sessions, templates),
	}
}

func (h *handlers) call(t *testing.T, fn echo.HandlerFunc, target string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := h.e.NewContext(req, rec)
	if len(params) == 2 {
		c.SetParamNames(params[0])
		c.SetParamValues(params[1])
	}
	require.NoError(t, fn(c))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

func TestFinanceHandler_Dashboard(t *testing.T) {
	h := setup(t)
	rec := h.call(t, h.finance.DashboardHandler, "/api/finance/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)

	var dash service.FinanceDashboard
	env := decode(t, rec, &dash)
	assert.True(t, env.Success)
	assert.Len(t, dash.KPIs, 5)
	assert.Equal(t, 13200.0, dash.Bridge.EndValue)
}

func TestFinanceHandler_Monthly(t *testing.T) {
	h := setup(t)

	tests := []struct {
		name   string
		target string
		count  int
	}{
		{"no filters", "/api/finance/data/monthly", 15},
		{"repeated facet", "/api/finance/data/monthly?countries=KSA&countries=Oman", 3},
		{"range tag", "/api/finance/data/monthly?date_range=last3months", 6},
		{"explicit bounds", "/api/finance/data/monthly?date_start=2024-08-01&date_end=2024-09-30", 4},
		{"anchor override", "/api/finance/data/monthly?date_range=mtd&anchor=2024-07&countries=UAE", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.call(t, h.finance.MonthlyHandler, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			var records []domain.FinancialRecord
			decode(t, rec, &records)
			assert.Len(t, records, tt.count)
		})
	}
}

func TestFinanceHandler_InvalidQuery(t *testing.T) {
	h := setup(t)

	tests := []struct {
		target string
		fn     echo.HandlerFunc
	}{
		{"/api/finance/data/monthly?date_start=yesterday", h.finance.MonthlyHandler},
		{"/api/finance/data/monthly?date_end=2024-13", h.finance.MonthlyHandler},
		{"/api/finance/data/aging?ledger=gl", h.finance.AgingHandler},
	}
	for _, tt := range tests {
		rec := h.call(t, tt.fn, tt.target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tt.target)
		env := decode(t, rec, nil)
		assert.False(t, env.Success)
		assert.NotEmpty(t, env.Error)
	}
}

func TestFinanceHandler_UnknownTagsFallBack(t *testing.T) {
	h := setup(t)

	rec := h.call(t, h.finance.MonthlyHandler, "/api/finance/data/monthly?date_range=fortnight")
	require.Equal(t, http.StatusOK, rec.Code)
	var records []domain.FinancialRecord
	decode(t, rec, &records)
	assert.Len(t, records, 15)

	rec = h.call(t, h.finance.ReceivablesHandler, "/api/finance/invoices/ar")
	require.Equal(t, http.StatusOK, rec.Code)
	var base []domain.ARAPRecord
	decode(t, rec, &base)
	require.Len(t, base, 4)

	for _, target := range []string{
		"/api/finance/invoices/ar?sort_by=colour",
		"/api/finance/invoices/ar?days_outstanding=120",
		"/api/finance/invoices/ar?sort_by=colour&sort_order=asc&days_outstanding=120",
	} {
		rec = h.call(t, h.finance.ReceivablesHandler, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		var ar []domain.ARAPRecord
		decode(t, rec, &ar)
		assert.Equal(t, base, ar, target)
	}
}

func TestUnknownTags(t *testing.T) {
	inv := InvoiceTableRequest{DaysOutstanding: "120", SortBy: "amount"}
	inv.DateRange = "fortnight"
	assert.Equal(t, []unknownTag{
		{Param: "date_range", Value: "fortnight"},
		{Param: "days_outstanding", Value: "120"},
	}, inv.unknownTags())

	assert.Empty(t, InvoiceTableRequest{DaysOutstanding: "all", SortBy: "dueDate"}.unknownTags())

	risk := AttritionRiskRequest{SortBy: "salary"}
	assert.Equal(t, []unknownTag{{Param: "sort_by", Value: "salary"}}, risk.unknownTags())
	assert.Empty(t, AttritionRiskRequest{SortBy: "risk_score"}.unknownTags())
}

func TestFinanceHandler_Invoices(t *testing.T) {
	h := setup(t)

	rec := h.call(t, h.finance.ReceivablesHandler, "/api/finance/invoices/ar?sort_by=amount&sort_order=asc")
	require.Equal(t, http.StatusOK, rec.Code)
	var ar []domain.ARAPRecord
	decode(t, rec, &ar)
	require.Len(t, ar, 4)
	assert.Equal(t, "Marina Foods", ar[0].CustomerSupplier)

	rec = h.call(t, h.finance.PayablesHandler, "/api/finance/invoices/ap?status=overdue")
	require.Equal(t, http.StatusOK, rec.Code)
	var ap []domain.ARAPRecord
	decode(t, rec, &ap)
	require.Len(t, ap, 1)
	assert.Equal(t, "Horizon Freight", ap[0].CustomerSupplier)
}

func TestFinanceHandler_AgingAndMetrics(t *testing.T) {
	h := setup(t)

	rec := h.call(t, h.finance.AgingHandler, "/api/finance/data/aging")
	var buckets []analytics.AgingBucket
	decode(t, rec, &buckets)
	require.Len(t, buckets, 4)
	assert.Equal(t, 125000.0, buckets[0].Amount)

	rec = h.call(t, h.finance.AgingHandler, "/api/finance/data/aging?ledger=ap")
	decode(t, rec, &buckets)
	assert.Equal(t, 72000.0, buckets[0].Amount)

	rec = h.call(t, h.finance.WorkingCapitalMetricsHandler, "/api/finance/metrics/working-capital")
	var metrics analytics.WorkingCapitalMetrics
	decode(t, rec, &metrics)
	assert.Equal(t, 304000.0, metrics.AccountsReceivable)

	rec = h.call(t, h.finance.FilterOptionsHandler, "/api/finance/filters")
	var opts domain.FilterOptions
	decode(t, rec, &opts)
	assert.Equal(t, []string{"KSA", "UAE"}, opts.Countries)
}

func TestFinanceHandler_Series(t *testing.T) {
	h := setup(t)

	rec := h.call(t, h.finance.CashFlowHandler, "/api/finance/data/cashflow?date_range=qtd")
	var cf []domain.CashFlowRecord
	decode(t, rec, &cf)
	assert.Len(t, cf, 3)

	rec = h.call(t, h.finance.WorkingCapitalHandler, "/api/finance/data/working-capital")
	var wc []domain.WorkingCapitalRecord
	decode(t, rec, &wc)
	assert.Len(t, wc, 9)

	rec = h.call(t, h.finance.BridgeHandler, "/api/finance/data/bridge")
	var bridge analytics.Bridge
	decode(t, rec, &bridge)
	assert.Equal(t, 1200.0, bridge.PriceEffect)
}

func TestHRHandler_AttritionRisk(t *testing.T) {
	h := setup(t)

	rec := h.call(t, h.hr.AttritionRiskHandler, "/api/hr/attrition-risk")
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []analytics.AttritionRiskEmployee
	decode(t, rec, &rows)
	require.Len(t, rows, 7)
	assert.Equal(t, "E002", rows[0].EmployeeID)
	assert.Equal(t, 85, rows[0].RiskScore)

	rec = h.call(t, h.hr.AttritionRiskHandler, "/api/hr/attrition-risk?sort_by=employee_id&sort_order=asc")
	decode(t, rec, &rows)
	assert.Equal(t, "E001", rows[0].EmployeeID)

	rec = h.call(t, h.hr.AttritionRiskHandler, "/api/hr/attrition-risk?sort_by=salary")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &rows)
	require.Len(t, rows, 7)
	assert.Equal(t, "E002", rows[0].EmployeeID)

	rec = h.call(t, h.hr.AttritionRiskHandler, "/api/hr/attrition-risk?scope=everyone")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHRHandler_Views(t *testing.T) {
	h := setup(t)

	rec := h.call(t, h.hr.DashboardHandler, "/api/hr/dashboard?departments=Finance&departments=Sales&departments=IT")
	require.Equal(t, http.StatusOK, rec.Code)
	var dash service.HRDashboard
	decode(t, rec, &dash)
	assert.Equal(t, 7, dash.Metrics.Headcount)

	rec = h.call(t, h.hr.RecruitingHandler, "/api/hr/recruiting?departments=IT")
	var recruiting analytics.RecruitingSummary
	decode(t, rec, &recruiting)
	assert.Equal(t, 1, recruiting.TotalRequisitions)

	rec = h.call(t, h.hr.AbsenceHandler, "/api/hr/absence?departments=IT&year=2024")
	var absence analytics.AbsenceSummary
	decode(t, rec, &absence)
	assert.Equal(t, 2024, absence.Year)
	assert.Equal(t, 1.0, absence.TotalDays)

	rec = h.call(t, h.hr.AbsenceHandler, "/api/hr/absence?year=1066")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, fn := range []echo.HandlerFunc{h.hr.DiversityHandler, h.hr.HiringHandler, h.hr.CompensationHandler, h.hr.PerformanceHandler} {
		rec = h.call(t, fn, "/api/hr/view")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decode(t, rec, nil).Success)
	}
}

func TestHRHandler_EngagementWithoutStore(t *testing.T) {
	h := setup(t)
	rec := h.call(t, h.hr.EngagementHandler, "/api/hr/engagement?department=Finance")
	require.Equal(t, http.StatusOK, rec.Code)
	var trend []domain.EngagementScore
	decode(t, rec, &trend)
	assert.Empty(t, trend)
}

func TestHRHandler_Employees(t *testing.T) {
	h := setup(t)

	rec := h.call(t, h.hr.SearchEmployeesHandler, "/api/hr/employees/search?q=FIN")
	require.Equal(t, http.StatusOK, rec.Code)
	var found []domain.Employee
	decode(t, rec, &found)
	assert.Len(t, found, 3)

	rec = h.call(t, h.hr.SearchEmployeesHandler, "/api/hr/employees/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.call(t, h.hr.GetEmployeeHandler, "/api/hr/employees/E001", "id", "E001")
	require.Equal(t, http.StatusOK, rec.Code)
	var emp domain.Employee
	decode(t, rec, &emp)
	assert.Equal(t, "E001", emp.EmployeeID)

	rec = h.call(t, h.hr.GetEmployeeHandler, "/api/hr/employees/nope", "id", "nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func openWorkbook(t *testing.T, rec *httptest.ResponseRecorder) *excelize.File {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, simpleexcel.ContentType, rec.Header().Get(echo.HeaderContentType))
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestExportHandler_AttritionRisk(t *testing.T) {
	h := setup(t)
	rec := h.call(t, h.export.AttritionRiskExportHandler, "/export/attrition-risk")
	assert.Equal(t, `attachment; filename="attrition_risk_20240615.xlsx"`, rec.Header().Get("Content-Disposition"))

	f := openWorkbook(t, rec)
	rows, err := f.GetRows("Attrition Risk")
	require.NoError(t, err)
	assert.Equal(t, "Attrition Risk Ranking", rows[0][0])
	assert.Equal(t, "Employee ID", rows[1][0])
	assert.Equal(t, "E002", rows[2][0])
	assert.Equal(t, "85", rows[2][9])

	// 7 data rows, a blank row, then the parameter block
	assert.Equal(t, "Parameters", rows[10][0])
	assert.Equal(t, []string{"Employees scored", "7"}, rows[14])
}

func TestExportHandler_Receivables(t *testing.T) {
	h := setup(t)
	rec := h.call(t, h.export.ReceivablesExportHandler, "/export/receivables?status=overdue")

	f := openWorkbook(t, rec)
	rows, err := f.GetRows("Receivables")
	require.NoError(t, err)
	assert.Equal(t, "Receivables Aging", rows[0][0])
	assert.Equal(t, []string{"0-30 days", "125000", "1"}, rows[2])
	// aging: title, header, 4 buckets, blank; then invoices title and header
	assert.Equal(t, "Open Receivables", rows[7][0])
	assert.Len(t, rows, 11)
}

func TestLoadReportTemplates_Override(t *testing.T) {
	dir := t.TempDir()
	custom := "sheets:\n  - name: Custom\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ReportReceivables+".yaml"), []byte(custom), 0o644))

	templates, err := LoadReportTemplates(dir)
	require.NoError(t, err)
	assert.Equal(t, custom, templates[ReportReceivables])
	assert.Contains(t, templates[ReportAttritionRisk], "Attrition Risk Ranking")
}
