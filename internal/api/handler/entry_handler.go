package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rcmalta/laytrack/internal/api/middleware"
	"github.com/rcmalta/laytrack/internal/domain"
	"github.com/rcmalta/laytrack/internal/service"
)

// EntryHandler serves the LAY entry ledger endpoints.
type EntryHandler struct {
	entrySvc *service.EntryService
}

// NewEntryHandler creates an EntryHandler.
func NewEntryHandler(entrySvc *service.EntryService) *EntryHandler {
	return &EntryHandler{entrySvc: entrySvc}
}

// List godoc
// GET /api/entries?month=8&year=2026 [JWT]
// Returns the month's entries (most recent first) plus their statistics.
// The meta block echoes the requested window so a client that navigated
// to another month meanwhile can discard this response.
func (h *EntryHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	month, year := parseMonthYear(c)

	view, err := h.entrySvc.ListMonth(c.Request.Context(), userID, month, year)
	if err != nil {
		if domain.IsValidation(err) {
			respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch entries")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    view.Entries,
		"meta": gin.H{
			"month": view.Month,
			"year":  view.Year,
			"stats": view.Stats,
		},
	})
}

// Add godoc
// POST /api/entries [JWT]
// Body: {"kind":"horse","original_odds":"25.00","stake_to_win":"5.00","note":"…"}
func (h *EntryHandler) Add(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req service.AddEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	entry, err := h.entrySvc.AddEntry(c.Request.Context(), userID, req)
	if err != nil {
		switch err {
		case domain.ErrInvalidOdds:
			respondError(c, http.StatusBadRequest, "ERR_INVALID_ODDS", err.Error())
		case domain.ErrInvalidKind:
			respondError(c, http.StatusBadRequest, "ERR_INVALID_KIND", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not add entry")
		}
		return
	}
	respondSuccess(c, http.StatusCreated, entry)
}

// Resolve godoc
// POST /api/entries/:id/resolve [JWT]
// Body: {"outcome":"green"} or {"outcome":"red"}
// Resolving an id that no longer exists succeeds with a null payload:
// the client was acting on stale state and there is nothing to report.
func (h *EntryHandler) Resolve(c *gin.Context) {
	userID := middleware.GetUserID(c)

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ENTRY_ID", "invalid entry id")
		return
	}

	var body struct {
		Outcome domain.Outcome `json:"outcome" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	entry, err := h.entrySvc.ResolveEntry(c.Request.Context(), userID, entryID, body.Outcome)
	if err != nil {
		switch err {
		case domain.ErrInvalidOutcome:
			respondError(c, http.StatusBadRequest, "ERR_INVALID_OUTCOME", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not resolve entry")
		}
		return
	}
	respondSuccess(c, http.StatusOK, entry)
}

// Delete godoc
// DELETE /api/entries/:id [JWT]
// Idempotent: deleting an absent id returns 204 like a successful delete.
func (h *EntryHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ENTRY_ID", "invalid entry id")
		return
	}

	if err := h.entrySvc.DeleteEntry(c.Request.Context(), userID, entryID); err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not delete entry")
		return
	}
	c.Status(http.StatusNoContent)
}
