package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/temple_ledger/internal/core/ports/services"
	"github.com/SscSPs/temple_ledger/internal/dto"
	"github.com/SscSPs/temple_ledger/internal/middleware"
	"github.com/SscSPs/temple_ledger/internal/timeutil"
	"github.com/gin-gonic/gin"
)

type periodHandler struct {
	periodService portssvc.PeriodSvcFacade
}

func newPeriodHandler(ps portssvc.PeriodSvcFacade) *periodHandler {
	return &periodHandler{periodService: ps}
}

// registerPeriodRoutes registers financial year and period lifecycle routes.
func registerPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.PeriodSvcFacade) {
	h := newPeriodHandler(periodService)

	years := rg.Group("/years")
	{
		years.POST("", h.createFinancialYear)
		years.GET("", h.listFinancialYears)
		years.GET("/:id/periods", h.listPeriods)
	}

	periods := rg.Group("/periods")
	{
		periods.GET("", h.getPeriodForDate)
		periods.POST("/:id/open", h.openPeriod)
		periods.POST("/:id/close", h.closePeriod)
		periods.POST("/:id/lock", h.lockPeriod)
	}
}

// createFinancialYear godoc
// @Summary Create a financial year
// @Description Creates a year with contiguous monthly or quarterly periods, all OPEN
// @Tags periods
// @Accept  json
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Param   year body dto.CreateFinancialYearRequest true "Year"
// @Success 201 {object} dto.FinancialYearResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Year overlaps an existing one"
// @Failure 500 {object} map[string]string "Failed to create financial year"
// @Security BearerAuth
// @Router /temples/{templeID}/years [post]
func (h *periodHandler) createFinancialYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")

	var req dto.CreateFinancialYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateFinancialYear", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("temple_id", templeID), slog.String("actor", actor))

	year, periods, err := h.periodService.CreateFinancialYear(c.Request.Context(), templeID, req, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create financial year")
		return
	}

	logger.Info("Financial year created", slog.String("name", year.Name), slog.Int("periods", len(periods)))
	c.JSON(http.StatusCreated, dto.FinancialYearResponse{Year: *year, Periods: periods})
}

// listFinancialYears godoc
// @Summary List financial years
// @Tags periods
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Success 200 {array} domain.FinancialYear
// @Failure 500 {object} map[string]string "Failed to list financial years"
// @Security BearerAuth
// @Router /temples/{templeID}/years [get]
func (h *periodHandler) listFinancialYears(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")

	years, err := h.periodService.ListFinancialYears(c.Request.Context(), templeID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("temple_id", templeID)), err, "Failed to list financial years")
		return
	}
	c.JSON(http.StatusOK, years)
}

// listPeriods godoc
// @Summary List the periods of a financial year
// @Tags periods
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Param   id path int true "Year ID"
// @Success 200 {array} domain.FinancialPeriod
// @Failure 404 {object} map[string]string "Year not found"
// @Failure 500 {object} map[string]string "Failed to list periods"
// @Security BearerAuth
// @Router /temples/{templeID}/years/{id}/periods [get]
func (h *periodHandler) listPeriods(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")
	yearID, ok := int64Param(c, logger, "id")
	if !ok {
		return
	}

	periods, err := h.periodService.ListPeriods(c.Request.Context(), templeID, yearID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("temple_id", templeID)), err, "Failed to list periods")
		return
	}
	c.JSON(http.StatusOK, periods)
}

// getPeriodForDate godoc
// @Summary Find the period containing a date
// @Tags periods
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Param   date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} domain.FinancialPeriod
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 404 {object} map[string]string "No period covers the date"
// @Security BearerAuth
// @Router /temples/{templeID}/periods [get]
func (h *periodHandler) getPeriodForDate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")

	date, err := timeutil.ParseDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter date must be YYYY-MM-DD"})
		return
	}

	period, err := h.periodService.GetPeriodForDate(c.Request.Context(), templeID, date)
	if err != nil {
		respondWithError(c, logger.With(slog.String("temple_id", templeID)), err, "Failed to find period")
		return
	}
	c.JSON(http.StatusOK, period)
}

// openPeriod godoc
// @Summary Re-open a closed period
// @Tags periods
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Param   id path int true "Period ID"
// @Success 200 {object} domain.FinancialPeriod
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 423 {object} map[string]string "Period is locked"
// @Security BearerAuth
// @Router /temples/{templeID}/periods/{id}/open [post]
func (h *periodHandler) openPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")
	periodID, ok := int64Param(c, logger, "id")
	if !ok {
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("temple_id", templeID), slog.String("actor", actor), slog.Int64("period_id", periodID))

	period, err := h.periodService.OpenPeriod(c.Request.Context(), templeID, periodID, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to open period")
		return
	}
	logger.Info("Period opened")
	c.JSON(http.StatusOK, period)
}

// closePeriod godoc
// @Summary Close a period
// @Description Posts the closing transfer of income and expense into equity and marks the period CLOSED
// @Tags periods
// @Accept  json
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Param   id path int true "Period ID"
// @Param   close body dto.ClosePeriodRequest false "Equity account override"
// @Success 200 {object} domain.PeriodClosing
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 409 {object} map[string]string "Drafts remain in the period or it is not OPEN"
// @Failure 500 {object} map[string]string "Failed to close period"
// @Security BearerAuth
// @Router /temples/{templeID}/periods/{id}/close [post]
func (h *periodHandler) closePeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")
	periodID, ok := int64Param(c, logger, "id")
	if !ok {
		return
	}

	var req dto.ClosePeriodRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for ClosePeriod", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("temple_id", templeID), slog.String("actor", actor), slog.Int64("period_id", periodID))

	closing, err := h.periodService.ClosePeriod(c.Request.Context(), templeID, periodID, req.EquityAccountCode, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to close period")
		return
	}
	logger.Info("Period closed", slog.String("net_surplus", closing.NetSurplus.StringFixed(2)))
	c.JSON(http.StatusOK, closing)
}

// lockPeriod godoc
// @Summary Lock a closed period
// @Description A locked period never accepts postings again, not even with admin override
// @Tags periods
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Param   id path int true "Period ID"
// @Success 200 {object} domain.FinancialPeriod
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 409 {object} map[string]string "Period must be closed first"
// @Security BearerAuth
// @Router /temples/{templeID}/periods/{id}/lock [post]
func (h *periodHandler) lockPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")
	periodID, ok := int64Param(c, logger, "id")
	if !ok {
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("temple_id", templeID), slog.String("actor", actor), slog.Int64("period_id", periodID))

	period, err := h.periodService.LockPeriod(c.Request.Context(), templeID, periodID, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to lock period")
		return
	}
	logger.Info("Period locked")
	c.JSON(http.StatusOK, period)
}
