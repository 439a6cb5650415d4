package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/bi_dashboard/internal/analytics"
	"github.com/locvowork/bi_dashboard/internal/domain"
	"github.com/locvowork/bi_dashboard/internal/logger"
	"github.com/locvowork/bi_dashboard/internal/service"
	"github.com/locvowork/bi_dashboard/internal/service/serviceutils"
)

type FinanceHandler struct {
	svc      *service.FinanceService
	sessions SessionConfig
}

func NewFinanceHandler(svc *service.FinanceService, sessions SessionConfig) *FinanceHandler {
	return &FinanceHandler{svc: svc, sessions: sessions}
}

// bind decodes query parameters into req and validates them. Unknown filter
// or sort tags are logged and left to fall back to no filtering or sorting.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	if tc, ok := req.(tagChecker); ok {
		for _, t := range tc.unknownTags() {
			logger.WarnLog(c.Request().Context(), "Ignoring unknown %s %q", t.Param, t.Value)
		}
	}
	return nil
}

func (h *FinanceHandler) session(c echo.Context, tab analytics.Tab) (analytics.Session, error) {
	var req FinanceFilterRequest
	if err := bind(c, &req); err != nil {
		return analytics.Session{}, err
	}
	return h.sessions.financeSession(tab, req), nil
}

func (h *FinanceHandler) DashboardHandler(c echo.Context) error {
	s, err := h.session(c, analytics.TabFinanceOverview)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}

	dash, err := h.svc.Dashboard(c.Request().Context(), s)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load finance dashboard", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Finance dashboard retrieved successfully", dash)
}

func (h *FinanceHandler) MonthlyHandler(c echo.Context) error {
	s, err := h.session(c, analytics.TabFinanceOverview)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}

	records, err := h.svc.Monthly(c.Request().Context(), s)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load monthly data", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Monthly data retrieved successfully", records)
}

func (h *FinanceHandler) CashFlowHandler(c echo.Context) error {
	s, err := h.session(c, analytics.TabWorkingCapital)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}

	records, err := h.svc.CashFlow(c.Request().Context(), s)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load cash flow data", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Cash flow data retrieved successfully", records)
}

func (h *FinanceHandler) WorkingCapitalHandler(c echo.Context) error {
	s, err := h.session(c, analytics.TabWorkingCapital)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}

	records, err := h.svc.WorkingCapital(c.Request().Context(), s)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load working capital data", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Working capital data retrieved successfully", records)
}

// AgingHandler buckets the receivables ledger, or payables with ?ledger=ap.
func (h *FinanceHandler) AgingHandler(c echo.Context) error {
	var req AgingRequest
	if err := bind(c, &req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}
	if req.Ledger == "" {
		req.Ledger = domain.LedgerReceivable
	}

	buckets, err := h.svc.Aging(c.Request().Context(), req.Ledger)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load aging data", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Aging data retrieved successfully", buckets)
}

func (h *FinanceHandler) BridgeHandler(c echo.Context) error {
	s, err := h.session(c, analytics.TabFinanceOverview)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}

	bridge, err := h.svc.Bridge(c.Request().Context(), s)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load bridge data", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Bridge data retrieved successfully", bridge)
}

func (h *FinanceHandler) ReceivablesHandler(c echo.Context) error {
	return h.invoices(c, analytics.TabReceivables, domain.LedgerReceivable)
}

func (h *FinanceHandler) PayablesHandler(c echo.Context) error {
	return h.invoices(c, analytics.TabPayables, domain.LedgerPayable)
}

func (h *FinanceHandler) invoices(c echo.Context, tab analytics.Tab, kind string) error {
	var req InvoiceTableRequest
	if err := bind(c, &req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}
	s := h.sessions.financeSession(tab, req.FinanceFilterRequest)
	s.Table = req.tableOptions()

	records, err := h.svc.Invoices(c.Request().Context(), s, kind)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load invoices", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Invoices retrieved successfully", records)
}

func (h *FinanceHandler) WorkingCapitalMetricsHandler(c echo.Context) error {
	s, err := h.session(c, analytics.TabWorkingCapital)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}

	metrics, err := h.svc.WorkingCapitalMetrics(c.Request().Context(), s)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load working capital metrics", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Working capital metrics retrieved successfully", metrics)
}

func (h *FinanceHandler) FilterOptionsHandler(c echo.Context) error {
	opts, err := h.svc.FilterOptions(c.Request().Context())
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load filter options", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Filter options retrieved successfully", opts)
}
