package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/temple_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/temple_ledger/internal/core/ports/services"
	"github.com/SscSPs/temple_ledger/internal/dto"
	"github.com/SscSPs/temple_ledger/internal/middleware"
	"github.com/SscSPs/temple_ledger/internal/timeutil"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to journal entries and balances.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(journalService portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{
		journalService: journalService,
	}
}

// registerJournalRoutes registers routes related to journal entries.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	journal := rg.Group("/journal")
	{
		journal.POST("", h.postTransaction)
		journal.GET("", h.listEntries)
		journal.POST("/drafts", h.saveDraft)
		journal.GET("/:id", h.getEntry)
		journal.DELETE("/:id", h.discardDraft)
		journal.POST("/:id/post", h.postDraft)
		journal.POST("/:id/cancel", h.cancelEntry)
		journal.POST("/:id/reverse", h.reverseEntry)
	}
	rg.GET("/trial-balance", h.getTrialBalance)
}

// postTransaction godoc
// @Summary Post a transaction
// @Description Validates and posts a balanced entry in one step. The entry gets its number and integrity hash.
// @Tags journal
// @Accept  json
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Param   entry body dto.PostTransactionRequest true "Entry and lines"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid line or unbalanced entry"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 423 {object} map[string]string "Entry date is not in an open period"
// @Failure 500 {object} map[string]string "Failed to post transaction"
// @Security BearerAuth
// @Router /temples/{templeID}/journal [post]
func (h *journalHandler) postTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")

	var req dto.PostTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("temple_id", templeID), slog.String("actor", actor))
	logger.Info("Received request to post transaction",
		slog.String("reference_kind", req.Reference.Kind), slog.Int("line_count", len(req.Lines)))

	entry, err := h.journalService.PostTransaction(c.Request.Context(), templeID, req, actor)
	if err != nil {
		respondWithError(c, logger, err, "Failed to post transaction")
		return
	}

	logger.Info("Transaction posted successfully", slog.Int64("entry_id", entry.EntryID), slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// saveDraft godoc
// @Summary Save a draft entry
// @Description Stores an entry under construction. Lines may be unbalanced; a non-zero draftID rewrites that draft.
// @Tags journal
// @Accept  json
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Param   draft body dto.SaveDraftRequest true "Draft"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Draft not found"
// @Failure 409 {object} map[string]string "Entry is no longer a draft"
// @Failure 500 {object} map[string]string "Failed to save draft"
// @Security BearerAuth
// @Router /temples/{templeID}/journal/drafts [post]
func (h *journalHandler) saveDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")

	var req dto.SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SaveDraft", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	date, err := timeutil.ParseDate(req.EntryDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entryDate: " + err.Error()})
		return
	}
	logger = logger.With(slog.String("temple_id", templeID), slog.String("actor", actor), slog.Int64("draft_id", req.DraftID))

	b := h.journalService.BeginEntry(templeID, date, req.Narration,
		domain.Reference{Kind: req.Reference.Kind, ID: req.Reference.ID}, actor)
	b.DraftID = req.DraftID
	for _, l := range req.Lines {
		b.Lines = append(b.Lines, domain.BuilderLine{
			AccountCode:   l.AccountCode,
			Debit:         l.Debit,
			Credit:        l.Credit,
			Description:   l.Description,
			InstrumentRef: l.InstrumentRef,
		})
	}

	draft, err := h.journalService.SaveDraft(c.Request.Context(), *b)
	if err != nil {
		respondWithError(c, logger, err, "Failed to save draft")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(draft))
}

// postDraft godoc
// @Summary Post a stored draft
// @Tags journal
// @Accept  json
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Param   id path int true "Draft entry ID"
// @Param   options body dto.PostDraftRequest false "Posting options"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid line or unbalanced entry"
// @Failure 404 {object} map[string]string "Draft not found"
// @Failure 409 {object} map[string]string "Entry is not a draft"
// @Failure 423 {object} map[string]string "Entry date is not in an open period"
// @Failure 500 {object} map[string]string "Failed to post draft"
// @Security BearerAuth
// @Router /temples/{templeID}/journal/{id}/post [post]
func (h *journalHandler) postDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")
	entryID, ok := int64Param(c, logger, "id")
	if !ok {
		return
	}

	var req dto.PostDraftRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for PostDraft", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("temple_id", templeID), slog.String("actor", actor), slog.Int64("entry_id", entryID))

	entry, err := h.journalService.PostDraft(c.Request.Context(), templeID, entryID, actor, req.AdminOverride)
	if err != nil {
		respondWithError(c, logger, err, "Failed to post draft")
		return
	}

	logger.Info("Draft posted successfully", slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// discardDraft godoc
// @Summary Discard a stored draft
// @Description Only drafts can be deleted; posted entries are cancelled or reversed instead.
// @Tags journal
// @Param   templeID path string true "Temple ID"
// @Param   id path int true "Draft entry ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Draft not found"
// @Failure 409 {object} map[string]string "Entry is not a draft"
// @Failure 500 {object} map[string]string "Failed to discard draft"
// @Security BearerAuth
// @Router /temples/{templeID}/journal/{id} [delete]
func (h *journalHandler) discardDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")
	entryID, ok := int64Param(c, logger, "id")
	if !ok {
		return
	}
	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("temple_id", templeID), slog.String("actor", actor), slog.Int64("entry_id", entryID))

	if err := h.journalService.DiscardDraft(c.Request.Context(), templeID, entryID, actor); err != nil {
		respondWithError(c, logger, err, "Failed to discard draft")
		return
	}
	c.Status(http.StatusNoContent)
}

// cancelEntry godoc
// @Summary Cancel a posted entry
// @Description Moves a POSTED entry to CANCELLED. The entry keeps its number, hash and chain position.
// @Tags journal
// @Accept  json
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Param   id path int true "Entry ID"
// @Param   cancel body dto.CancelEntryRequest true "Reason"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not POSTED"
// @Failure 423 {object} map[string]string "Entry is dated in a closed period"
// @Failure 500 {object} map[string]string "Failed to cancel entry"
// @Security BearerAuth
// @Router /temples/{templeID}/journal/{id}/cancel [post]
func (h *journalHandler) cancelEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")
	entryID, ok := int64Param(c, logger, "id")
	if !ok {
		return
	}

	var req dto.CancelEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CancelEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("temple_id", templeID), slog.String("actor", actor), slog.Int64("entry_id", entryID))

	entry, err := h.journalService.Cancel(c.Request.Context(), templeID, entryID, actor, req.Reason)
	if err != nil {
		respondWithError(c, logger, err, "Failed to cancel entry")
		return
	}

	logger.Info("Entry cancelled", slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// reverseEntry godoc
// @Summary Reverse a posted entry
// @Description Posts the inverse entry and marks the original REVERSED. Returns the reversal.
// @Tags journal
// @Accept  json
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Param   id path int true "Entry ID"
// @Param   reverse body dto.ReverseEntryRequest true "Reason and optional date"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not POSTED"
// @Failure 423 {object} map[string]string "Reversal date is not in an open period"
// @Failure 500 {object} map[string]string "Failed to reverse entry"
// @Security BearerAuth
// @Router /temples/{templeID}/journal/{id}/reverse [post]
func (h *journalHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")
	entryID, ok := int64Param(c, logger, "id")
	if !ok {
		return
	}

	var req dto.ReverseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReverseEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	date, err := optionalDate(req.EntryDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entryDate: " + err.Error()})
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("temple_id", templeID), slog.String("actor", actor), slog.Int64("entry_id", entryID))

	reversal, err := h.journalService.Reverse(c.Request.Context(), templeID, entryID, date, actor, req.Reason)
	if err != nil {
		respondWithError(c, logger, err, "Failed to reverse entry")
		return
	}

	logger.Info("Entry reversed", slog.Int64("reversal_id", reversal.EntryID))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(reversal))
}

// getEntry godoc
// @Summary Get a journal entry with its lines
// @Tags journal
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Param   id path int true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 500 {object} map[string]string "Failed to retrieve entry"
// @Security BearerAuth
// @Router /temples/{templeID}/journal/{id} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")
	entryID, ok := int64Param(c, logger, "id")
	if !ok {
		return
	}
	logger = logger.With(slog.String("temple_id", templeID), slog.Int64("entry_id", entryID))

	entry, err := h.journalService.GetEntry(c.Request.Context(), templeID, entryID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Description Entry headers newest first, filtered by status and date range, paginated with nextToken
// @Tags journal
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Param   status query string false "DRAFT, POSTED, CANCELLED or REVERSED"
// @Param   from query string false "From date (YYYY-MM-DD)"
// @Param   to query string false "To date (YYYY-MM-DD)"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list entries"
// @Security BearerAuth
// @Router /temples/{templeID}/journal [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	logger = logger.With(slog.String("temple_id", templeID))

	resp, err := h.journalService.ListEntries(c.Request.Context(), templeID, params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list entries")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getTrialBalance godoc
// @Summary Trial balance
// @Description Every account's net balance in debit and credit columns as of a date
// @Tags balances
// @Produce  json
// @Param   templeID path string true "Temple ID"
// @Param   asOf query string false "As-of date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 500 {object} map[string]string "Failed to build trial balance"
// @Security BearerAuth
// @Router /temples/{templeID}/trial-balance [get]
func (h *journalHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templeID := c.Param("templeID")

	var params dto.BalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for GetTrialBalance", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	asOf, err := optionalDate(params.AsOf)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf date: " + err.Error()})
		return
	}
	logger = logger.With(slog.String("temple_id", templeID))

	balances, err := h.journalService.GetTrialBalance(c.Request.Context(), templeID, asOf)
	if err != nil {
		respondWithError(c, logger, err, "Failed to build trial balance")
		return
	}

	date := timeutil.Today()
	if asOf != nil {
		date = *asOf
	}
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(date, balances))
}
