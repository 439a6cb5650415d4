package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/bi_dashboard/internal/analytics"
	"github.com/locvowork/bi_dashboard/internal/domain"
	"github.com/locvowork/bi_dashboard/internal/service"
	"github.com/locvowork/bi_dashboard/internal/service/serviceutils"
)

const defaultSearchSize = 10

type HRHandler struct {
	svc      *service.HRService
	sessions SessionConfig
}

func NewHRHandler(svc *service.HRService, sessions SessionConfig) *HRHandler {
	return &HRHandler{svc: svc, sessions: sessions}
}

func (h *HRHandler) session(c echo.Context, tab analytics.Tab) (analytics.Session, error) {
	var req HRFilterRequest
	if err := bind(c, &req); err != nil {
		return analytics.Session{}, err
	}
	return h.sessions.hrSession(tab, req), nil
}

func (h *HRHandler) DashboardHandler(c echo.Context) error {
	s, err := h.session(c, analytics.TabHROverview)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}

	dash, err := h.svc.Dashboard(c.Request().Context(), s)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load HR dashboard", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "HR dashboard retrieved successfully", dash)
}

// AttritionRiskHandler ranks active employees by risk score. sort_by and
// sort_order reorder the table.
func (h *HRHandler) AttritionRiskHandler(c echo.Context) error {
	var req AttritionRiskRequest
	if err := bind(c, &req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}
	s := h.sessions.hrSession(analytics.TabAttritionRisk, req.HRFilterRequest)

	rows, err := h.svc.AttritionRisk(c.Request().Context(), s, analytics.RiskSortKey(req.SortBy), analytics.ParseSortOrder(req.SortOrder))
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to score attrition risk", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Attrition risk retrieved successfully", rows)
}

func (h *HRHandler) DiversityHandler(c echo.Context) error {
	s, err := h.session(c, analytics.TabHROverview)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}

	stats, err := h.svc.Diversity(c.Request().Context(), s)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load diversity data", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Diversity data retrieved successfully", stats)
}

func (h *HRHandler) HiringHandler(c echo.Context) error {
	s, err := h.session(c, analytics.TabHROverview)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}

	months, err := h.svc.Hiring(c.Request().Context(), s)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load hiring data", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Hiring data retrieved successfully", months)
}

func (h *HRHandler) CompensationHandler(c echo.Context) error {
	s, err := h.session(c, analytics.TabCompensation)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}

	summary, err := h.svc.Compensation(c.Request().Context(), s)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load compensation data", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Compensation data retrieved successfully", summary)
}

func (h *HRHandler) PerformanceHandler(c echo.Context) error {
	s, err := h.session(c, analytics.TabPerformance)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}

	summary, err := h.svc.Performance(c.Request().Context(), s)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load performance data", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Performance data retrieved successfully", summary)
}

func (h *HRHandler) RecruitingHandler(c echo.Context) error {
	s, err := h.session(c, analytics.TabRecruiting)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}

	summary, err := h.svc.Recruiting(c.Request().Context(), s)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load recruiting data", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Recruiting data retrieved successfully", summary)
}

func (h *HRHandler) AbsenceHandler(c echo.Context) error {
	var req AbsenceRequest
	if err := bind(c, &req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}
	s := h.sessions.hrSession(analytics.TabAbsence, req.HRFilterRequest)

	summary, err := h.svc.Absence(c.Request().Context(), s, req.Year)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load absence data", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Absence data retrieved successfully", summary)
}

func (h *HRHandler) EngagementHandler(c echo.Context) error {
	var req EngagementRequest
	if err := bind(c, &req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}

	trend, err := h.svc.Engagement(c.Request().Context(), req.Department)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to load engagement trend", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Engagement trend retrieved successfully", trend)
}

func (h *HRHandler) SearchEmployeesHandler(c echo.Context) error {
	var req EmployeeSearchRequest
	if err := bind(c, &req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid query parameters", err)
	}
	if req.Size == 0 {
		req.Size = defaultSearchSize
	}

	employees, err := h.svc.SearchEmployees(c.Request().Context(), req.Query, req.Size)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to search employees", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employees retrieved successfully", employees)
}

func (h *HRHandler) GetEmployeeHandler(c echo.Context) error {
	emp, err := h.svc.GetEmployee(c.Request().Context(), c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		return serviceutils.ResponseError(c, http.StatusNotFound, "Employee not found", err)
	}
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to get employee", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee retrieved successfully", emp)
}
