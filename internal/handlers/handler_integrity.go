package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	portssvc "github.com/SscSPs/temple_ledger/internal/core/ports/services"
	"github.com/SscSPs/temple_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type integrityHandler struct {
	integrityService portssvc.IntegritySvcFacade
}

func newIntegrityHandler(is portssvc.IntegritySvcFacade) *integrityHandler {
	return &integrityHandler{integrityService: is}
}

// registerIntegrityRoutes registers hash chain and audit log verification routes.
func registerIntegrityRoutes(rg *gin.RouterGroup, integrityService portssvc.IntegritySvcFacade) {
	h := newIntegrityHandler(integrityService)

	integrity := rg.Group("/integrity")
	{
		integrity.POST("/verify", h.verifyChain)
		integrity.GET("/status", h.lastReport)
		integrity.POST("/audit-check", h.auditCheck)
	}
}

// verifyChain godoc
// @Summary Verify the integrity chain
// @Description Recomputes every posted entry's hash. A broken chain answers 500 with the full report.
// @Tags integrity
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Success 200 {object} domain.ChainReport
// @Failure 500 {object} map[string]interface{} "Tampering detected (with report) or verification failed"
// @Security BearerAuth
// @Router /temples/{templeID}/integrity/verify [post]
func (h *integrityHandler) verifyChain(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")
	logger = logger.With(slog.String("temple_id", templeID))

	report, err := h.integrityService.VerifyChain(c.Request.Context(), templeID)
	if err != nil {
		if report != nil && errors.Is(err, apperrors.ErrTamperDetected) {
			logger.Error("Ledger tampering detected",
				slog.Int("mismatches", len(report.Mismatches)), slog.Int("cascading", len(report.Cascading)))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "report": report})
			return
		}
		respondWithError(c, logger, err, "Failed to verify integrity chain")
		return
	}

	logger.Info("Integrity chain verified", slog.Int("checked", report.Checked), slog.Int("backfilled", report.Backfilled))
	c.JSON(http.StatusOK, report)
}

// lastReport godoc
// @Summary Last chain verification report
// @Tags integrity
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Success 200 {object} domain.ChainReport
// @Failure 404 {object} map[string]string "No verification has run recently"
// @Security BearerAuth
// @Router /temples/{templeID}/integrity/status [get]
func (h *integrityHandler) lastReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")

	report, err := h.integrityService.LastReport(c.Request.Context(), templeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No recent verification report"})
			return
		}
		respondWithError(c, logger.With(slog.String("temple_id", templeID)), err, "Failed to read verification report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// auditCheck godoc
// @Summary Cross-check the audit log against the database
// @Tags integrity
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Success 200 {object} domain.AuditCheckReport
// @Failure 500 {object} map[string]string "Failed to read audit log"
// @Security BearerAuth
// @Router /temples/{templeID}/integrity/audit-check [post]
func (h *integrityHandler) auditCheck(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")
	logger = logger.With(slog.String("temple_id", templeID))

	report, err := h.integrityService.CrossCheckAuditLog(c.Request.Context(), templeID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to cross-check audit log")
		return
	}
	if len(report.Discrepancies) > 0 {
		logger.Warn("Audit log disagrees with stored entries", slog.Int("discrepancies", len(report.Discrepancies)))
	}
	c.JSON(http.StatusOK, report)
}
