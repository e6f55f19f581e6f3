package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/temple_ledger/internal/core/ports/services"
	"github.com/SscSPs/temple_ledger/internal/dto"
	"github.com/SscSPs/temple_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type reconciliationHandler struct {
	reconService portssvc.ReconciliationSvcFacade
}

func newReconciliationHandler(rs portssvc.ReconciliationSvcFacade) *reconciliationHandler {
	return &reconciliationHandler{reconService: rs}
}

// registerReconciliationRoutes registers bank statement and reconciliation routes.
func registerReconciliationRoutes(rg *gin.RouterGroup, reconService portssvc.ReconciliationSvcFacade) {
	h := newReconciliationHandler(reconService)

	rg.POST("/statements", h.importStatement)
	rg.POST("/statements/:id/reconcile", h.reconcile)
	rg.GET("/reconciliations/:id", h.getReconciliation)
	rg.GET("/outstanding-items", h.listOutstandingItems)
	rg.POST("/outstanding-items/:id/reopen", h.reopenOutstandingItem)
}

// importStatement godoc
// @Summary Import a bank statement
// @Description Stores already-parsed statement rows for a bank account. No matching happens on import.
// @Tags reconciliation
// @Accept  json
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Param   statement body dto.ImportStatementRequest true "Statement"
// @Success 201 {object} domain.BankStatement
// @Failure 400 {object} map[string]string "Invalid rows or account is not an active asset"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to import statement"
// @Security BearerAuth
// @Router /temples/{templeID}/statements [post]
func (h *reconciliationHandler) importStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")

	var req dto.ImportStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ImportStatement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("temple_id", templeID), slog.String("actor", actor), slog.String("account_code", req.AccountCode))

	stmt, err := h.reconService.ImportStatement(c.Request.Context(), templeID, req, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to import statement")
		return
	}

	logger.Info("Statement imported", slog.Int64("statement_id", stmt.StatementID), slog.Int("rows", len(req.Rows)))
	c.JSON(http.StatusCreated, stmt)
}

// reconcile godoc
// @Summary Reconcile a statement against the books
// @Description Matches statement rows to book lines, records outstanding items and computes adjusted balances
// @Tags reconciliation
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Param   id path int true "Statement ID"
// @Success 200 {object} domain.BankReconciliation
// @Failure 404 {object} map[string]string "Statement not found"
// @Failure 500 {object} map[string]string "Failed to reconcile statement"
// @Security BearerAuth
// @Router /temples/{templeID}/statements/{id}/reconcile [post]
func (h *reconciliationHandler) reconcile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")
	statementID, ok := int64Param(c, logger, "id")
	if !ok {
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("temple_id", templeID), slog.String("actor", actor), slog.Int64("statement_id", statementID))

	rec, err := h.reconService.Reconcile(c.Request.Context(), templeID, statementID, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to reconcile statement")
		return
	}

	if derr := rec.DiscrepancyErr(); derr != nil {
		logger.Warn("Statement reconciled with a difference", slog.Int("matched", rec.MatchedCount), slog.String("error", derr.Error()))
	} else {
		logger.Info("Statement reconciled", slog.String("status", string(rec.Status)), slog.Int("matched", rec.MatchedCount))
	}
	c.JSON(http.StatusOK, rec)
}

// getReconciliation godoc
// @Summary Get a reconciliation result
// @Tags reconciliation
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Param   id path int true "Reconciliation ID"
// @Success 200 {object} domain.BankReconciliation
// @Failure 404 {object} map[string]string "Reconciliation not found"
// @Security BearerAuth
// @Router /temples/{templeID}/reconciliations/{id} [get]
func (h *reconciliationHandler) getReconciliation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")
	recID, ok := int64Param(c, logger, "id")
	if !ok {
		return
	}

	rec, err := h.reconService.GetReconciliation(c.Request.Context(), templeID, recID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("temple_id", templeID)), err, "Failed to retrieve reconciliation")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// listOutstandingItems godoc
// @Summary List outstanding reconciliation items of a bank account
// @Tags reconciliation
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Param   accountCode query string true "Bank account code"
// @Param   includeCleared query bool false "Include cleared items"
// @Success 200 {array} domain.OutstandingItem
// @Failure 400 {object} map[string]string "Missing account code"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /temples/{templeID}/outstanding-items [get]
func (h *reconciliationHandler) listOutstandingItems(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")

	var params dto.ListOutstandingParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListOutstandingItems", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	items, err := h.reconService.ListOutstandingItems(c.Request.Context(), templeID, params.AccountCode, params.IncludeCleared)
	if err != nil {
		respondWithError(c, logger.With(slog.String("temple_id", templeID)), err, "Failed to list outstanding items")
		return
	}
	c.JSON(http.StatusOK, items)
}

// reopenOutstandingItem godoc
// @Summary Re-open a cleared outstanding item
// @Description Drops the match that cleared the item so the next reconciliation evaluates it again
// @Tags reconciliation
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Param   id path int true "Outstanding item ID"
// @Success 200 {object} domain.OutstandingItem
// @Failure 404 {object} map[string]string "Item not found"
// @Security BearerAuth
// @Router /temples/{templeID}/outstanding-items/{id}/reopen [post]
func (h *reconciliationHandler) reopenOutstandingItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")
	itemID, ok := int64Param(c, logger, "id")
	if !ok {
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("temple_id", templeID), slog.String("actor", actor), slog.Int64("item_id", itemID))

	item, err := h.reconService.ReopenOutstandingItem(c.Request.Context(), templeID, itemID, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to reopen outstanding item")
		return
	}
	logger.Info("Outstanding item reopened")
	c.JSON(http.StatusOK, item)
}
