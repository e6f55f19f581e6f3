package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/SscSPs/temple_ledger/internal/apperrors"
	"github.com/SscSPs/temple_ledger/internal/middleware"
	"github.com/SscSPs/temple_ledger/internal/timeutil"
	"github.com/gin-gonic/gin"
)

// respondWithError maps a service error onto an HTTP status and writes the JSON body.
// failMsg is the message clients see for unexpected failures.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, failMsg string) {
	var unbalanced *apperrors.UnbalancedEntryError
	var tamper *apperrors.TamperDetectedError
	switch {
	case errors.As(err, &unbalanced):
		logger.Warn("Unbalanced entry rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       err.Error(),
			"totalDebit":  unbalanced.TotalDebit.StringFixed(2),
			"totalCredit": unbalanced.TotalCredit.StringFixed(2),
			"imbalance":   unbalanced.Imbalance().StringFixed(2),
		})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Conflicting request", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrPeriodLocked):
		logger.Warn("Financial period not open", slog.String("error", err.Error()))
		c.JSON(http.StatusLocked, gin.H{"error": err.Error()})
	case errors.As(err, &tamper):
		logger.Error("Ledger tampering detected", slog.String("temple_id", tamper.TempleID),
			slog.Int("mismatches", len(tamper.Mismatches)), slog.Int("cascading", tamper.Cascading))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		logger.Error(failMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": failMsg})
	}
}

// requireActor returns the authenticated actor or writes 401.
func requireActor(c *gin.Context, logger *slog.Logger) (string, bool) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return actor, true
}

// int64Param parses a numeric path parameter or writes 400.
func int64Param(c *gin.Context, logger *slog.Logger, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		logger.Warn("Invalid path parameter", slog.String("param", name), slog.String("value", raw))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + ": " + raw})
		return 0, false
	}
	return id, true
}

// optionalDate parses an optional YYYY-MM-DD value. Binding tags have already checked the layout.
func optionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := timeutil.ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
